// internal/common/validation/founder.go
package validation

import "phalanx-matcher/internal/models"

// FounderProfileSchema describes the ingest payload for a founder profile.
// Amounts are in thousands and may be null.
func FounderProfileSchema() JSONSchema {
	return JSONSchema{
		Type:     "object",
		Required: []string{"name", "email", "industry", "stage"},
		Properties: map[string]Property{
			"name": {
				Type:      "string",
				MinLength: intPtr(1),
				MaxLength: intPtr(255),
			},
			"email": {
				Type:      "string",
				Format:    "email",
				MaxLength: intPtr(255),
			},
			"company_name": {
				Type:      []string{"string", "null"},
				MaxLength: intPtr(255),
			},
			"company_description": {
				Type:        []string{"string", "null"},
				Description: "Free text used for the profile embedding",
				MaxLength:   intPtr(10000),
			},
			"industry": {
				Type: "string",
				Enum: toStrings(models.Industries()),
			},
			"stage": {
				Type: "string",
				Enum: toStrings(models.Stages()),
			},
			"seeking_amount_min": {
				Type:    []string{"number", "null"},
				Minimum: floatPtr(0),
			},
			"seeking_amount_max": {
				Type:    []string{"number", "null"},
				Minimum: floatPtr(0),
			},
			"geography": {
				Type: "string",
				Enum: append(toStrings(models.Geographies()), ""),
			},
		},
		AdditionalProperties: false,
	}
}

func toStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
