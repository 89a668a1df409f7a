// Package report aggregates past campaign contacts into conversion statistics
// for the dashboard.
package report

import (
	"sort"
	"strconv"

	"github.com/okian/propensity/internal/domain/campaign"
)

// Contact-count buckets above this value are folded into one "10+" group.
const maxContactBucket = 10

// ageBin is a closed-open age range.
type ageBin struct {
	label  string
	lo, hi int
}

var ageBins = []ageBin{
	{"18-24", 0, 25},
	{"25-34", 25, 35},
	{"35-44", 35, 45},
	{"45-54", 45, 55},
	{"55-64", 55, 65},
	{"65+", 65, 1 << 30},
}

var monthOrder = []string{"jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec"}

// Group is the conversion of one slice of contacts.
type Group struct {
	Key        string  `json:"key"`
	Contacts   int     `json:"contacts"`
	Subscribed int     `json:"subscribed"`
	Rate       float64 `json:"rate"`
}

// Overview summarizes the whole dataset.
type Overview struct {
	Contacts        int     `json:"contacts"`
	Subscribed      int     `json:"subscribed"`
	Rate            float64 `json:"rate"`
	MeanAge         float64 `json:"mean_age"`
	MeanCallsPerRow float64 `json:"mean_calls"`
}

// Pivot is a conversion-rate matrix: Rates[i][j] belongs to Rows[i] × Cols[j].
// Cells without contacts are nil.
type Pivot struct {
	Rows  []string     `json:"rows"`
	Cols  []string     `json:"cols"`
	Rates [][]*float64 `json:"rates"`
}

// Report is everything the dashboard renders.
type Report struct {
	Overview       Overview `json:"overview"`
	ByJob          []Group  `json:"by_job"`
	ByAgeGroup     []Group  `json:"by_age_group"`
	ByMarital      []Group  `json:"by_marital"`
	ByMonth        []Group  `json:"by_month"`
	ByContactCount []Group  `json:"by_contact_count"`
	AgeByMarital   Pivot    `json:"age_by_marital"`
	Insights       []string `json:"insights"`
}

// Build computes the report. An empty slice gives a zero report.
func Build(contacts []campaign.Contact) Report {
	r := Report{
		Overview:       overview(contacts),
		ByJob:          byRate(groupBy(contacts, func(c campaign.Contact) string { return c.Job })),
		ByAgeGroup:     ordered(groupBy(contacts, func(c campaign.Contact) string { return AgeGroup(c.Age) }), ageLabels()),
		ByMarital:      byRate(groupBy(contacts, func(c campaign.Contact) string { return c.Marital })),
		ByMonth:        ordered(groupBy(contacts, func(c campaign.Contact) string { return c.Month }), monthOrder),
		ByContactCount: ordered(groupBy(contacts, func(c campaign.Contact) string { return ContactBucket(c.Campaign) }), contactLabels()),
		AgeByMarital:   pivot(contacts),
	}
	r.Insights = Insights(r)
	return r
}

// AgeGroup returns the label of the bin holding age.
func AgeGroup(age int) string {
	for _, b := range ageBins {
		if age >= b.lo && age < b.hi {
			return b.label
		}
	}
	return ageBins[0].label
}

// ContactBucket returns the contact-count group for n calls.
func ContactBucket(n int) string {
	if n >= maxContactBucket {
		return strconv.Itoa(maxContactBucket) + "+"
	}
	if n < 1 {
		n = 1
	}
	return strconv.Itoa(n)
}

func ageLabels() []string {
	out := make([]string, len(ageBins))
	for i, b := range ageBins {
		out[i] = b.label
	}
	return out
}

func contactLabels() []string {
	out := make([]string, 0, maxContactBucket)
	for i := 1; i <= maxContactBucket; i++ {
		out = append(out, ContactBucket(i))
	}
	return out
}

func rate(subscribed, contacts int) float64 {
	if contacts == 0 {
		return 0
	}
	return float64(subscribed) / float64(contacts)
}

func overview(contacts []campaign.Contact) Overview {
	var o Overview
	var ages, calls int
	for _, c := range contacts {
		o.Contacts++
		if c.Subscribed {
			o.Subscribed++
		}
		ages += c.Age
		calls += c.Campaign
	}
	o.Rate = rate(o.Subscribed, o.Contacts)
	if o.Contacts > 0 {
		o.MeanAge = float64(ages) / float64(o.Contacts)
		o.MeanCallsPerRow = float64(calls) / float64(o.Contacts)
	}
	return o
}

func groupBy(contacts []campaign.Contact, key func(campaign.Contact) string) map[string]*Group {
	groups := make(map[string]*Group)
	for _, c := range contacts {
		k := key(c)
		if k == "" {
			k = "unknown"
		}
		g, ok := groups[k]
		if !ok {
			g = &Group{Key: k}
			groups[k] = g
		}
		g.Contacts++
		if c.Subscribed {
			g.Subscribed++
		}
	}
	for _, g := range groups {
		g.Rate = rate(g.Subscribed, g.Contacts)
	}
	return groups
}

// byRate orders groups by conversion rate, highest first, ties by key.
func byRate(groups map[string]*Group) []Group {
	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rate != out[j].Rate {
			return out[i].Rate > out[j].Rate
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// ordered emits groups in the given key order, skipping absent keys.
// Keys outside order are appended lexically.
func ordered(groups map[string]*Group, order []string) []Group {
	out := make([]Group, 0, len(groups))
	known := make(map[string]struct{}, len(order))
	for _, k := range order {
		known[k] = struct{}{}
		if g, ok := groups[k]; ok {
			out = append(out, *g)
		}
	}
	var rest []string
	for k := range groups {
		if _, ok := known[k]; !ok {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		out = append(out, *groups[k])
	}
	return out
}

func pivot(contacts []campaign.Contact) Pivot {
	type cell struct{ n, yes int }
	cells := make(map[[2]string]*cell)
	maritals := make(map[string]struct{})
	ages := make(map[string]struct{})
	for _, c := range contacts {
		m := c.Marital
		if m == "" {
			m = "unknown"
		}
		a := AgeGroup(c.Age)
		maritals[m] = struct{}{}
		ages[a] = struct{}{}
		k := [2]string{a, m}
		if cells[k] == nil {
			cells[k] = &cell{}
		}
		cells[k].n++
		if c.Subscribed {
			cells[k].yes++
		}
	}

	p := Pivot{}
	for _, label := range ageLabels() {
		if _, ok := ages[label]; ok {
			p.Rows = append(p.Rows, label)
		}
	}
	for m := range maritals {
		p.Cols = append(p.Cols, m)
	}
	sort.Strings(p.Cols)
	p.Rates = make([][]*float64, len(p.Rows))
	for i, a := range p.Rows {
		p.Rates[i] = make([]*float64, len(p.Cols))
		for j, m := range p.Cols {
			if c := cells[[2]string{a, m}]; c != nil {
				v := rate(c.yes, c.n)
				p.Rates[i][j] = &v
			}
		}
	}
	return p
}
