package features

// Choice is a select input for one categorical attribute.
type Choice struct {
	Attribute string   `json:"attribute"`
	Label     string   `json:"label"`
	Options   []string `json:"options"`
	Default   string   `json:"default"`
	Advanced  bool     `json:"advanced"`
}

// NumericField is a bounded number input.
type NumericField struct {
	Attribute string  `json:"attribute"`
	Label     string  `json:"label"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Step      float64 `json:"step"`
	Default   float64 `json:"default"`
	Advanced  bool    `json:"advanced"`
}

// Form describes the simulator inputs for one model version.
type Form struct {
	Version string         `json:"version"`
	Choices []Choice       `json:"choices"`
	Numeric []NumericField `json:"numeric"`
	// Fixed holds attributes the form never exposes.
	Fixed map[string]any `json:"fixed"`
}

var bankMarketingV1Form = Form{
	Version: "bank_marketing_v1",
	Choices: []Choice{
		{Attribute: "resultat_precedent", Label: "Previous campaign outcome", Options: []string{"no existant", "failure", "success"}, Default: "no existant"},
		{Attribute: "pret_immo", Label: "Has a housing loan", Options: []string{"no", "yes"}, Default: "no"},
		{Attribute: "segment_contact", Label: "Contact recency segment", Options: []string{"Jamais contacte", "Ancien (>90j)", "Intermediaire (31-90j)", "Recent (0-30j)"}, Default: "Jamais contacte", Advanced: true},
		{Attribute: "metier", Label: "Job", Options: []string{"management", "technician", "entrepreneur", "blue-collar", "unknown", "retired", "admin.", "services", "self-employed", "unemployed", "housemaid", "student"}, Default: "management", Advanced: true},
		{Attribute: "statut_matrimonial", Label: "Marital status", Options: []string{"married", "single", "divorced"}, Default: "married", Advanced: true},
		{Attribute: "niveau_etudes", Label: "Education", Options: []string{"tertiary", "secondary", "unknown", "primary"}, Default: "tertiary", Advanced: true},
		{Attribute: "mois", Label: "Call month", Options: []string{"jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec"}, Default: "may", Advanced: true},
		{Attribute: "defaut_credit", Label: "Credit in default", Options: []string{"no", "yes"}, Default: "no", Advanced: true},
		{Attribute: "pret_conso", Label: "Has a personal loan", Options: []string{"no", "yes"}, Default: "no", Advanced: true},
	},
	Numeric: []NumericField{
		{Attribute: "age", Label: "Client age", Min: 18, Max: 95, Step: 1, Default: 35},
		{Attribute: "solde_bancaire", Label: "Account balance (EUR)", Min: -5000, Max: 100000, Step: 1, Default: 1500},
		{Attribute: "previous", Label: "Past interactions", Min: 0, Max: 30, Step: 1, Default: 0},
		{Attribute: "day", Label: "Day of month", Min: 1, Max: 31, Step: 1, Default: 15, Advanced: true},
		{Attribute: "campaign", Label: "Calls this campaign", Min: 1, Max: 10, Step: 1, Default: 1, Advanced: true},
	},
	Fixed: map[string]any{
		"pdays": -1,
	},
}
