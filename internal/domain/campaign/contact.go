// Package campaign parses the cleaned term-deposit campaign export.
package campaign

// Contact is one past campaign contact.
type Contact struct {
	Age        int
	Job        string
	Marital    string
	Education  string
	Month      string
	Campaign   int
	Subscribed bool
}

// Columns maps contact fields to CSV header names.
type Columns struct {
	Age       string `koanf:"age"`
	Job       string `koanf:"job"`
	Marital   string `koanf:"marital"`
	Education string `koanf:"education"`
	Month     string `koanf:"month"`
	Campaign  string `koanf:"campaign"`
	Target    string `koanf:"target"`
	// Positive is the target label meaning the client subscribed.
	Positive string `koanf:"positive"`
}

// DefaultColumns matches the cleaned export the model was trained on.
func DefaultColumns() Columns {
	return Columns{
		Age:       "age",
		Job:       "metier",
		Marital:   "statut_matrimonial",
		Education: "niveau_etudes",
		Month:     "mois",
		Campaign:  "campaign",
		Target:    "y",
		Positive:  "yes",
	}
}

// required lists the headers that must be present. Education is optional.
func (c Columns) required() []string {
	return []string{c.Age, c.Job, c.Marital, c.Month, c.Campaign, c.Target}
}

// Preview is the first rows of the raw table.
type Preview struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
	Total  int        `json:"total"`
}

// Dataset is the parsed table: raw rows for preview and typed contacts for
// reporting.
type Dataset struct {
	Header   []string
	Rows     [][]string
	Contacts []Contact
	// Warnings lists rows skipped during parsing.
	Warnings []string
}

// Preview limits.
const (
	DefaultPreviewRows = 5
	MaxPreviewRows     = 50
)

// Head returns the first n raw rows, n clamped to [1, MaxPreviewRows].
func (d *Dataset) Head(n int) Preview {
	if n < 1 {
		n = DefaultPreviewRows
	}
	if n > MaxPreviewRows {
		n = MaxPreviewRows
	}
	if n > len(d.Rows) {
		n = len(d.Rows)
	}
	rows := make([][]string, n)
	for i := 0; i < n; i++ {
		rows[i] = append([]string(nil), d.Rows[i]...)
	}
	return Preview{
		Header: append([]string(nil), d.Header...),
		Rows:   rows,
		Total:  len(d.Rows),
	}
}
