package entity

import (
	"errors"
	"strings"
)

var (
	// ErrArtistNotFound is returned when no artist matches the given id or slug.
	ErrArtistNotFound = errors.New("artist not found")
	// ErrArtistNameExists is returned when another artist already uses the requested name.
	ErrArtistNameExists = errors.New("artist name exists")
	// ErrArtistHasSmartLinks is returned when deleting an artist that still owns smartlinks.
	ErrArtistHasSmartLinks = errors.New("artist has smartlinks")
	// ErrSmartLinkNotFound is returned when no smartlink matches, including unpublished ones on public paths.
	ErrSmartLinkNotFound = errors.New("smartlink not found")
	// ErrSlugExists is returned by the store when a write hits the (scope, slug) unique constraint.
	ErrSlugExists = errors.New("slug exists")
	// ErrSlugConflict is returned when a slug collision survives the regeneration retry.
	ErrSlugConflict = errors.New("slug conflict")
	// ErrSlugExhausted is returned when slug probing runs out of attempts.
	ErrSlugExhausted = errors.New("slug attempts exhausted")
	// ErrStoreUnavailable wraps datastore failures surfaced by the use cases.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// FieldError describes a single invalid field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError carries field-level validation failures.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation error"
	}

	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}

	return "validation error: " + strings.Join(parts, "; ")
}

// Add records a failure for field.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// OrNil returns e when it holds failures and nil otherwise.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
