package api

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/okian/propensity/internal/domain/features"
)

// formValidator checks predict bodies against the simulator form. It
// constrains types and numeric ranges and rejects attributes the form does
// not know; unknown category labels and missing attributes are left to
// alignment.
type formValidator struct {
	schema *gojsonschema.Schema
}

// formJSONSchema describes the body accepted for form.
func formJSONSchema(form features.Form) map[string]any {
	props := make(map[string]any, len(form.Choices)+len(form.Numeric)+len(form.Fixed))
	for _, c := range form.Choices {
		props[c.Attribute] = map[string]any{"type": "string", "minLength": 1}
	}
	for _, n := range form.Numeric {
		props[n.Attribute] = map[string]any{
			"type":    "number",
			"minimum": n.Min,
			"maximum": n.Max,
		}
	}
	for attr := range form.Fixed {
		if _, ok := props[attr]; !ok {
			props[attr] = map[string]any{"type": "number"}
		}
	}
	return map[string]any{
		"$schema":              "http://json-schema.org/draft-07/schema#",
		"title":                "prospect " + form.Version,
		"type":                 "object",
		"properties":           props,
		"additionalProperties": false,
	}
}

func newFormValidator(form features.Form) (*formValidator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(formJSONSchema(form)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidForm, err)
	}
	return &formValidator{schema: schema}, nil
}

// validate checks a raw JSON body.
func (v *formValidator) validate(body []byte) error {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("malformed body: %w", err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.Field()+": "+e.Description())
	}
	return fmt.Errorf("invalid prospect: %s", strings.Join(msgs, "; "))
}
