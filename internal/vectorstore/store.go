package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_store.go -package=mocks bookbot/internal/vectorstore Store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Kind names a class of records in the store.
type Kind string

const (
	KindBook  Kind = "Book"
	KindChunk Kind = "BookChunk"
	KindUser  Kind = "User"
)

// Kinds lists every kind the schema declares.
var Kinds = []Kind{KindBook, KindChunk, KindUser}

// Vectorized reports whether records of this kind take part in semantic search.
func (k Kind) Vectorized() bool {
	return k == KindBook || k == KindChunk
}

// IDPath is the reserved filter path that matches the record id.
const IDPath = "id"

var (
	// ErrUniqueViolation is returned when a write would duplicate a unique field.
	ErrUniqueViolation = errors.New("unique constraint violated")
	// ErrRecordNotFound is returned when a write targets a missing record.
	ErrRecordNotFound = errors.New("record not found")
)

// Fields holds the scalar properties of a record.
type Fields map[string]any

// Object is a record to be created.
type Object struct {
	ID     string
	Fields Fields
}

// Record is a record read back from the store.
type Record struct {
	ID     string
	Kind   Kind
	Fields Fields
	// Refs maps a reference property to the id of the record it points at.
	Refs  map[string]string
	Score float32
}

// String returns the field as a string, or "" when absent.
func (r Record) String(field string) string {
	s, _ := r.Fields[field].(string)
	return s
}

// Int returns the field as an int. Stores may hand integers back as int or int64.
func (r Record) Int(field string) int {
	switch v := r.Fields[field].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// Bool returns the field as a bool, or false when absent.
func (r Record) Bool(field string) bool {
	b, _ := r.Fields[field].(bool)
	return b
}

// Operator combines filter clauses.
type Operator string

const (
	OpEqual Operator = "Equal"
	OpAnd   Operator = "And"
	OpOr    Operator = "Or"
)

// Filter is a boolean expression over record fields.
type Filter struct {
	Operator Operator
	Path     string
	Value    any
	Operands []Filter
}

// Equal matches records whose field at path equals value.
func Equal(path string, value any) Filter {
	return Filter{Operator: OpEqual, Path: path, Value: value}
}

// And matches records that satisfy every operand.
func And(operands ...Filter) Filter {
	return Filter{Operator: OpAnd, Operands: operands}
}

// Or matches records that satisfy at least one operand.
func Or(operands ...Filter) Filter {
	return Filter{Operator: OpOr, Operands: operands}
}

// RefPath is the filter path of a reference property.
func RefPath(property string) string {
	return refPrefix + property
}

const (
	refsKey   = "_refs"
	refPrefix = refsKey + "."
)

func (f Filter) String() string {
	switch f.Operator {
	case OpEqual:
		return fmt.Sprintf("%s=%v", f.Path, f.Value)
	case OpAnd, OpOr:
		parts := make([]string, len(f.Operands))
		for i, op := range f.Operands {
			parts[i] = op.String()
		}
		return "(" + strings.Join(parts, " "+string(f.Operator)+" ") + ")"
	default:
		return "<invalid filter>"
	}
}

// BatchError reports the objects of a batch that were not written.
type BatchError struct {
	Failed map[string]error
}

func (e *BatchError) Error() string {
	for id, err := range e.Failed {
		return fmt.Sprintf("%d objects failed, first %s: %v", len(e.Failed), id, err)
	}
	return "batch failed"
}

// FailedIDs returns the ids of every failed object.
func (e *BatchError) FailedIDs() []string {
	ids := make([]string, 0, len(e.Failed))
	for id := range e.Failed {
		ids = append(ids, id)
	}
	return ids
}

// Store is the narrow contract the application needs from the vector object store.
type Store interface {
	// Create stores a single record under id.
	Create(ctx context.Context, kind Kind, id string, fields Fields) error

	// CreateBatch stores several records. A partial failure returns a *BatchError
	// while the remaining objects stay written.
	CreateBatch(ctx context.Context, kind Kind, objects []Object) error

	// Get returns records matching filter, in store order. A nil filter matches all.
	Get(ctx context.Context, kind Kind, fields []string, filter *Filter, limit int) ([]Record, error)

	// SemanticQuery ranks records of a vectorized kind by closeness to the concepts.
	SemanticQuery(ctx context.Context, kind Kind, fields []string, concepts []string, limit int) ([]Record, error)

	// Update sets fields on an existing record.
	Update(ctx context.Context, kind Kind, id string, fields Fields) error

	// Delete removes a record. Deleting a missing record is not an error.
	Delete(ctx context.Context, kind Kind, id string) error

	// Link points the reference property of one record at another record.
	Link(ctx context.Context, fromKind Kind, fromID, property string, toKind Kind, toID string) error
}

// project keeps only the requested fields. An empty selection keeps everything.
func project(fields Fields, selection []string) Fields {
	out := make(Fields, len(fields))
	if len(selection) == 0 {
		for k, v := range fields {
			out[k] = v
		}
		return out
	}
	for _, name := range selection {
		if v, ok := fields[name]; ok {
			out[name] = v
		}
	}
	return out
}
