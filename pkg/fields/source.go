package fields

import (
	"context"
	"errors"
)

// ObjectTypes lists the object types whose fields can be reported on.
var ObjectTypes = []string{"incident", "task", "artifact", "milestone", "attachment", "note", "actioninvocation"}

var (
	// ErrSourceUnavailable is returned when the field source cannot be reached or rejects
	// the credentials.
	ErrSourceUnavailable = errors.New("field source unavailable")
	ErrFieldNotFound     = errors.New("field not found")
)

// Source supplies the ordered field definitions of an object type.
type Source interface {
	GetFields(ctx context.Context, objectType string) ([]FieldDefinition, error)
}

// Lookup fetches the fields of objectType and resolves raw against them.
func Lookup(ctx context.Context, src Source, objectType, raw string) (FieldDefinition, error) {
	fields, err := src.GetFields(ctx, objectType)
	if err != nil {
		return FieldDefinition{}, err
	}

	f, ok := FindField(fields, raw)
	if !ok {
		return FieldDefinition{}, ErrFieldNotFound
	}
	return f, nil
}
