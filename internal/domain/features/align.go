package features

import (
	"fmt"
	"strings"
)

// OneHotColumn names the indicator column for one category of an attribute.
func OneHotColumn(attribute, category string) string {
	return attribute + "_" + category
}

// Align builds the vector for schema from rec.
//
// Each attribute listed in categorical contributes a single indicator column
// "<attribute>_<value>" set to 1. Every other attribute passes through under
// its own name and must be numeric. The output follows schema order; schema
// columns that were not produced are 0 when they belong to a categorical
// attribute, and columns produced but absent from schema are dropped.
// A schema column that is not a categorical expansion is a required numeric
// attribute and its absence fails with ErrSchemaMismatch.
func Align(rec Record, categorical []string, schema Schema) (Vector, error) {
	return AlignColumns(rec, categorical, schema.NumericAttributes(categorical), schema)
}

// AlignColumns is Align with the numeric columns named explicitly. Every
// schema column must be either listed in numeric or expanded from a
// categorical attribute. The "<categorical>_" namespace belongs to indicator
// columns, so a record attribute inside it is rejected unless it is a
// declared numeric.
func AlignColumns(rec Record, categorical, numericCols []string, schema Schema) (Vector, error) {
	isCategorical := make(map[string]struct{}, len(categorical))
	isNumeric := make(map[string]struct{}, len(numericCols))
	for _, col := range numericCols {
		isNumeric[col] = struct{}{}
	}
	produced := make(map[string]float64, rec.Len())

	for _, attr := range categorical {
		isCategorical[attr] = struct{}{}
		v, ok := rec.Get(attr)
		if !ok {
			return nil, newAlignError(ErrUnknownCategoricalAttribute, attr, "attribute not present in record")
		}
		label, ok := v.(string)
		if !ok {
			return nil, newAlignError(ErrSchemaMismatch, attr, fmt.Sprintf("categorical value must be a label, got %T", v))
		}
		col := OneHotColumn(attr, label)
		if _, clash := isNumeric[col]; clash {
			return nil, newAlignError(ErrSchemaMismatch, attr, fmt.Sprintf("category %q collides with numeric column %q", label, col))
		}
		produced[col] = 1
	}

	for _, name := range rec.Names() {
		if _, ok := isCategorical[name]; ok {
			continue
		}
		_, declared := isNumeric[name]
		if owner, ok := expansionOf(name, categorical); ok && !declared {
			return nil, newAlignError(ErrSchemaMismatch, name,
				fmt.Sprintf("name is reserved for indicators of %q", owner))
		}
		v, _ := rec.Get(name)
		f, ok := numeric(v)
		if !ok {
			return nil, newAlignError(ErrSchemaMismatch, name, fmt.Sprintf("value %v (%T) is not numeric", v, v))
		}
		produced[name] = f
	}

	out := make(Vector, len(schema))
	for i, col := range schema {
		if _, ok := isNumeric[col]; ok {
			v, ok := produced[col]
			if !ok {
				return nil, newAlignError(ErrSchemaMismatch, col, "required numeric attribute is missing")
			}
			out[i] = v
			continue
		}
		if _, ok := expansionOf(col, categorical); !ok {
			return nil, newAlignError(ErrSchemaMismatch, col, "column is neither numeric nor a categorical expansion")
		}
		out[i] = produced[col]
	}
	return out, nil
}

// expansionOf returns the categorical attribute col was expanded from.
// The longest matching attribute wins so "pret" never shadows "pret_immo".
func expansionOf(col string, categorical []string) (string, bool) {
	best := ""
	for _, attr := range categorical {
		if strings.HasPrefix(col, attr+"_") && len(attr) > len(best) {
			best = attr
		}
	}
	return best, best != ""
}
