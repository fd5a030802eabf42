// internal/models/founder.go
package models

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidFounder = errors.New("invalid founder")

// Founder is a company raising capital. Seeking amounts are in thousands.
type Founder struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name               string   `json:"name"`
	Email              string   `json:"email"`
	CompanyName        string   `json:"company_name,omitempty"`
	CompanyDescription string   `json:"company_description,omitempty"`
	Industry           Industry `json:"industry"`
	Stage              Stage    `json:"stage"`

	SeekingAmountMin *float64  `json:"seeking_amount_min,omitempty"`
	SeekingAmountMax *float64  `json:"seeking_amount_max,omitempty"`
	Geography        Geography `json:"geography,omitempty"`

	Embedding     []float64 `json:"embedding,omitempty"`
	EmbeddingText string    `json:"embedding_text,omitempty"`

	ProfileCompleteness float64 `json:"profile_completeness"`
	IsActive            bool    `json:"is_active"`
}

// HasEmbedding reports whether a vector is attached.
func (f *Founder) HasEmbedding() bool {
	return f != nil && len(f.Embedding) > 0
}

// Validate checks the enum and range invariants of a founder record.
func (f *Founder) Validate() error {
	if f == nil {
		return fmt.Errorf("%w: nil founder", ErrInvalidFounder)
	}
	if !IsValidIndustry(string(f.Industry)) {
		return fmt.Errorf("%w: unknown industry %q", ErrInvalidFounder, f.Industry)
	}
	if !IsValidStage(string(f.Stage)) {
		return fmt.Errorf("%w: unknown stage %q", ErrInvalidFounder, f.Stage)
	}
	if f.Geography != "" && !IsValidGeography(string(f.Geography)) {
		return fmt.Errorf("%w: unknown geography %q", ErrInvalidFounder, f.Geography)
	}
	if f.SeekingAmountMin != nil && *f.SeekingAmountMin < 0 {
		return fmt.Errorf("%w: seeking_amount_min is negative", ErrInvalidFounder)
	}
	if f.SeekingAmountMax != nil && *f.SeekingAmountMax < 0 {
		return fmt.Errorf("%w: seeking_amount_max is negative", ErrInvalidFounder)
	}
	if f.SeekingAmountMin != nil && f.SeekingAmountMax != nil && *f.SeekingAmountMin > *f.SeekingAmountMax {
		return fmt.Errorf("%w: seeking_amount_min exceeds seeking_amount_max", ErrInvalidFounder)
	}
	return nil
}

// FounderProfileInput is the ingest payload for a new founder.
type FounderProfileInput struct {
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	CompanyName        string    `json:"company_name,omitempty"`
	CompanyDescription string    `json:"company_description,omitempty"`
	Industry           Industry  `json:"industry"`
	Stage              Stage     `json:"stage"`
	SeekingAmountMin   *float64  `json:"seeking_amount_min,omitempty"`
	SeekingAmountMax   *float64  `json:"seeking_amount_max,omitempty"`
	Geography          Geography `json:"geography,omitempty"`
}

// ToFounder builds an active founder record from the ingest payload.
func (in FounderProfileInput) ToFounder() *Founder {
	return &Founder{
		Name:               in.Name,
		Email:              in.Email,
		CompanyName:        in.CompanyName,
		CompanyDescription: in.CompanyDescription,
		Industry:           in.Industry,
		Stage:              in.Stage,
		SeekingAmountMin:   in.SeekingAmountMin,
		SeekingAmountMax:   in.SeekingAmountMax,
		Geography:          in.Geography,
		IsActive:           true,
	}
}

// Float returns a pointer to v, handy for optional amounts.
func Float(v float64) *float64 {
	return &v
}
