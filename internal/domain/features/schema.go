package features

import (
	"fmt"
	"sort"
	"strings"
)

// Schema is the ordered list of columns a trained model was fit against.
type Schema []string

// Validate checks the schema against the categorical attributes it is
// expanded from.
func (s Schema) Validate(categorical []string) error {
	if len(s) == 0 {
		return fmt.Errorf("%w: no columns", ErrInvalidSchema)
	}
	seen := make(map[string]struct{}, len(s))
	for i, col := range s {
		if strings.TrimSpace(col) == "" {
			return fmt.Errorf("%w: empty column name at position %d", ErrInvalidSchema, i)
		}
		if _, dup := seen[col]; dup {
			return fmt.Errorf("%w: duplicate column %q", ErrInvalidSchema, col)
		}
		seen[col] = struct{}{}
	}
	for _, attr := range categorical {
		if _, clash := seen[attr]; clash {
			return fmt.Errorf("%w: categorical attribute %q also used as a numeric column", ErrInvalidSchema, attr)
		}
	}
	return nil
}

// NumericAttributes returns the columns that are passed through unchanged.
func (s Schema) NumericAttributes(categorical []string) []string {
	var out []string
	for _, col := range s {
		if _, ok := expansionOf(col, categorical); !ok {
			out = append(out, col)
		}
	}
	return out
}

// Categories returns the categories of attr that own a column, in schema order.
func (s Schema) Categories(attr string, categorical []string) []string {
	var out []string
	for _, col := range s {
		if owner, ok := expansionOf(col, categorical); ok && owner == attr {
			out = append(out, strings.TrimPrefix(col, attr+"_"))
		}
	}
	return out
}

// ModelSchema binds a target schema to one trained model version.
type ModelSchema struct {
	// Version identifies the trained model the columns belong to.
	Version string `json:"version"`
	// ArtifactKey is the object-storage key of the serialized model.
	ArtifactKey string `json:"artifact_key"`
	Columns     Schema `json:"columns"`
	// Numeric lists the columns passed through from numeric attributes.
	// Every other column is a one-hot indicator.
	Numeric []string `json:"numeric"`
	// Categorical lists the attributes expanded by one-hot encoding.
	Categorical []string `json:"categorical"`
	// Baseline records the category dropped per attribute at training time.
	// A record carrying a baseline category yields all zeros for that attribute.
	Baseline map[string]string `json:"baseline"`
	Form     Form              `json:"-"`
}

// Validate checks the column invariants and that every documented baseline
// category is really absent from the columns.
func (m ModelSchema) Validate() error {
	if strings.TrimSpace(m.Version) == "" {
		return fmt.Errorf("%w: missing version", ErrInvalidSchema)
	}
	if err := m.Columns.Validate(m.Categorical); err != nil {
		return err
	}
	if err := m.validateNumeric(); err != nil {
		return err
	}
	attrs := make(map[string]struct{}, len(m.Categorical))
	for _, a := range m.Categorical {
		attrs[a] = struct{}{}
	}
	keys := make([]string, 0, len(m.Baseline))
	for k := range m.Baseline {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, attr := range keys {
		if _, ok := attrs[attr]; !ok {
			return fmt.Errorf("%w: baseline for non-categorical attribute %q", ErrInvalidSchema, attr)
		}
		col := OneHotColumn(attr, m.Baseline[attr])
		for _, c := range m.Columns {
			if c == col {
				return fmt.Errorf("%w: baseline column %q must be dropped", ErrInvalidSchema, col)
			}
		}
	}
	return nil
}

// validateNumeric checks that Numeric and the categorical expansions
// partition Columns.
func (m ModelSchema) validateNumeric() error {
	inColumns := make(map[string]struct{}, len(m.Columns))
	for _, c := range m.Columns {
		inColumns[c] = struct{}{}
	}
	declared := make(map[string]struct{}, len(m.Numeric))
	for _, n := range m.Numeric {
		if _, ok := inColumns[n]; !ok {
			return fmt.Errorf("%w: numeric attribute %q has no column", ErrInvalidSchema, n)
		}
		if _, dup := declared[n]; dup {
			return fmt.Errorf("%w: numeric attribute %q declared twice", ErrInvalidSchema, n)
		}
		declared[n] = struct{}{}
	}
	for _, c := range m.Columns {
		if _, ok := declared[c]; ok {
			continue
		}
		if _, ok := expansionOf(c, m.Categorical); !ok {
			return fmt.Errorf("%w: column %q is neither numeric nor a categorical expansion", ErrInvalidSchema, c)
		}
	}
	return nil
}

// Align aligns rec to this model's columns. Only the declared Numeric
// columns are required from the record.
func (m ModelSchema) Align(rec Record) (Vector, error) {
	return AlignColumns(rec, m.Categorical, m.Numeric, m.Columns)
}

// ApplyFormDefaults returns a copy of values completed with the fixed
// attributes the simulator form never asks for.
func (m ModelSchema) ApplyFormDefaults(values map[string]any) map[string]any {
	out := make(map[string]any, len(values)+len(m.Form.Fixed))
	for k, v := range values {
		out[k] = v
	}
	for k, v := range m.Form.Fixed {
		if _, ok := out[k]; !ok {
			out[k] = v
		}
	}
	return out
}

// BankMarketingV1 is the schema of model_bank_marketing_v1. Categorical
// attributes were encoded drop-first: the lexically smallest category of each
// attribute has no column.
var BankMarketingV1 = ModelSchema{
	Version:     "bank_marketing_v1",
	ArtifactKey: "model_bank_marketing_v1.json",
	Numeric: []string{"age", "solde_bancaire", "day", "campaign", "pdays", "previous"},
	Columns: Schema{
		"age", "solde_bancaire", "day", "campaign", "pdays", "previous",
		"defaut_credit_yes", "pret_immo_yes", "pret_conso_yes",
		"metier_blue-collar", "metier_entrepreneur", "metier_housemaid", "metier_management", "metier_retired",
		"metier_self-employed", "metier_services", "metier_student", "metier_technician", "metier_unemployed", "metier_unknown",
		"statut_matrimonial_married", "statut_matrimonial_single",
		"niveau_etudes_secondary", "niveau_etudes_tertiary", "niveau_etudes_unknown",
		"mois_aug", "mois_dec", "mois_feb", "mois_jan", "mois_jul", "mois_jun", "mois_mar", "mois_may", "mois_nov", "mois_oct", "mois_sep",
		"resultat_precedent_no existant", "resultat_precedent_success",
		"segment_contact_Intermediaire (31-90j)", "segment_contact_Jamais contacte", "segment_contact_Recent (0-30j)",
	},
	Categorical: []string{
		"metier", "statut_matrimonial", "niveau_etudes", "defaut_credit",
		"pret_immo", "pret_conso", "mois", "resultat_precedent", "segment_contact",
	},
	Baseline: map[string]string{
		"metier":             "admin.",
		"statut_matrimonial": "divorced",
		"niveau_etudes":      "primary",
		"defaut_credit":      "no",
		"pret_immo":          "no",
		"pret_conso":         "no",
		"mois":               "apr",
		"resultat_precedent": "failure",
		"segment_contact":    "Ancien (>90j)",
	},
	Form: bankMarketingV1Form,
}
