// internal/repository/repository.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// uniqueViolation is the Postgres SQLSTATE for a unique constraint.
const uniqueViolation = "23505"

// HealthCheck verifies the database answers a trivial query.
func HealthCheck(ctx context.Context, db *sql.DB) error {
	var one int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// formatVector renders v as a pgvector literal: [v1,v2,...].
func formatVector(v []float64) interface{} {
	if len(v) == 0 {
		return nil
	}
	var b strings.Builder
	b.Grow(len(v) * 10)
	b.WriteByte('[')
	for i, x := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
	}
	b.WriteByte(']')
	return b.String()
}

// parseVector reads a pgvector text value. NULL yields nil.
func parseVector(s sql.NullString) ([]float64, error) {
	if !s.Valid {
		return nil, nil
	}
	body := strings.TrimSpace(s.String)
	body = strings.TrimPrefix(body, "[")
	body = strings.TrimSuffix(body, "]")
	if body == "" {
		return nil, nil
	}

	parts := strings.Split(body, ",")
	out := make([]float64, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("parse vector element %d: %w", i, err)
		}
		out[i] = f
	}
	return out, nil
}

func nullFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
