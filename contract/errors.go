package contract

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================
//
// These tag the reason a property is skipped for a run. A skipped property
// never aborts the batch; the reason travels with the per-property warning.

var (
	// ErrMissingField is returned when a required master-data field is blank.
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidDate is returned when a date cell cannot be parsed.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidNumber is returned when a numeric or percent cell cannot
	// be parsed.
	ErrInvalidNumber = errors.New("invalid number")

	// ErrExpiredContract is returned when the reference month falls on or
	// after the contract's end.
	ErrExpiredContract = errors.New("contract expired")

	// ErrNotInForce is returned when the contract starts after the
	// reference month. Such records are rejected, never processed with
	// negative cycle counts.
	ErrNotInForce = errors.New("contract not yet in force")
)

// FieldError reports which master-data field was missing or malformed.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// Validate checks the record invariants: identity fields present,
// duration and original price positive, start date set.
func (r Record) Validate() error {
	required := []struct {
		name  string
		blank bool
	}{
		{"nombre_inmueble", r.Property == ""},
		{"inquilino", r.Tenant == ""},
		{"propietario", r.Owner == ""},
		{"actualizacion", r.Frequency == ""},
		{"indice", r.Index == ""},
		{"comision_inmo", r.CommissionPct == ""},
	}
	for _, f := range required {
		if f.blank {
			return &FieldError{Field: f.name, Err: ErrMissingField}
		}
	}
	if r.StartDate.IsZero() {
		return &FieldError{Field: "fecha_inicio_contrato", Err: ErrInvalidDate}
	}
	if r.DurationMonths <= 0 {
		return &FieldError{Field: "duracion_meses", Err: ErrInvalidNumber}
	}
	if !r.OriginalPrice.IsPositive() {
		return &FieldError{Field: "precio_original", Err: ErrInvalidNumber}
	}
	if _, err := ParsePercent(r.CommissionPct); err != nil {
		return &FieldError{Field: "comision_inmo", Err: err}
	}
	if r.IndexKind() == IndexFixed {
		if _, err := ParsePercent(r.Index); err != nil {
			return &FieldError{Field: "indice", Err: err}
		}
	}
	return nil
}
