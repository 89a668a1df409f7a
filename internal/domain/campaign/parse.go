package campaign

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Parsing defaults.
const (
	defaultDelimiter   = ';'
	defaultMaxWarnings = 100
)

// Sentinel error kinds for this package.
var (
	ErrEmptyDataset  = errors.New("dataset has no valid rows")
	ErrMissingColumn = errors.New("missing required column")
	ErrInvalidRow    = errors.New("invalid row")
)

// Option applies a parsing option.
type Option func(*parser)

// WithDelimiter sets the field delimiter. Zero keeps the default ';'.
func WithDelimiter(d rune) Option {
	return func(p *parser) {
		if d != 0 {
			p.delimiter = d
		}
	}
}

// WithMaxWarnings caps how many skipped-row messages are kept.
func WithMaxWarnings(n int) Option {
	return func(p *parser) {
		if n >= 0 {
			p.maxWarnings = n
		}
	}
}

type parser struct {
	cols        Columns
	delimiter   rune
	maxWarnings int
	index       map[string]int
}

// Parse reads a delimited export. Rows that cannot be typed are kept in the
// raw table, skipped from Contacts and reported in Warnings.
func Parse(r io.Reader, cols Columns, opts ...Option) (*Dataset, error) {
	p := &parser{cols: cols, delimiter: defaultDelimiter, maxWarnings: defaultMaxWarnings}
	for _, opt := range opts {
		opt(p)
	}

	reader := csv.NewReader(r)
	reader.Comma = p.delimiter
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyDataset
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	p.index = make(map[string]int, len(header))
	for i, name := range header {
		p.index[strings.TrimSpace(name)] = i
	}
	var missing []string
	for _, name := range cols.required() {
		if _, ok := p.index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	ds := &Dataset{Header: header}
	line := 1
	for {
		line++
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			p.warn(ds, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		ds.Rows = append(ds.Rows, record)
		c, err := p.contact(record)
		if err != nil {
			p.warn(ds, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		ds.Contacts = append(ds.Contacts, c)
	}

	if len(ds.Contacts) == 0 {
		return nil, ErrEmptyDataset
	}
	return ds, nil
}

func (p *parser) warn(ds *Dataset, msg string) {
	if len(ds.Warnings) < p.maxWarnings {
		ds.Warnings = append(ds.Warnings, msg)
	}
}

func (p *parser) field(record []string, name string) string {
	i, ok := p.index[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func (p *parser) contact(record []string) (Contact, error) {
	age, err := p.integer(record, p.cols.Age)
	if err != nil {
		return Contact{}, err
	}
	campaignCount, err := p.integer(record, p.cols.Campaign)
	if err != nil {
		return Contact{}, err
	}
	job := p.field(record, p.cols.Job)
	if job == "" {
		return Contact{}, fmt.Errorf("%w: empty %s", ErrInvalidRow, p.cols.Job)
	}
	return Contact{
		Age:        age,
		Job:        job,
		Marital:    p.field(record, p.cols.Marital),
		Education:  p.field(record, p.cols.Education),
		Month:      NormalizeMonth(p.field(record, p.cols.Month)),
		Campaign:   campaignCount,
		Subscribed: p.positive(p.field(record, p.cols.Target)),
	}, nil
}

func (p *parser) integer(record []string, name string) (int, error) {
	raw := p.field(record, name)
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %s=%q is not a number", ErrInvalidRow, name, raw)
	}
	return int(math.Round(f)), nil
}

func (p *parser) positive(v string) bool {
	switch strings.ToLower(v) {
	case strings.ToLower(p.cols.Positive), "1", "true":
		return true
	}
	return false
}

// NormalizeMonth maps month names to lowercase three-letter abbreviations.
func NormalizeMonth(m string) string {
	m = strings.ToLower(strings.TrimSpace(m))
	if len(m) > 3 {
		m = m[:3]
	}
	return m
}
