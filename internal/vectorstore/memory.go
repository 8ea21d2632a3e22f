package vectorstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"
)

type memRecord struct {
	fields Fields
	refs   map[string]string
}

type memCollection struct {
	records map[string]*memRecord
	order   []string
	unique  []string
}

// MemoryStore keeps records in-process. It backs the CLI dry runs and the tests.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[Kind]*memCollection
}

// NewMemoryStore initializes an empty store with one collection per known kind.
func NewMemoryStore() *MemoryStore {
	m := &MemoryStore{collections: make(map[Kind]*memCollection)}
	for _, kind := range Kinds {
		m.collections[kind] = &memCollection{records: make(map[string]*memRecord)}
	}
	return m
}

// WithUnique declares fields whose values must be distinct across records of kind.
func (m *MemoryStore) WithUnique(kind Kind, fields ...string) *MemoryStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.collection(kind)
	c.unique = append(c.unique, fields...)
	return m
}

// Len returns the number of records of kind.
func (m *MemoryStore) Len(kind Kind) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.collection(kind).records)
}

func (m *MemoryStore) collection(kind Kind) *memCollection {
	c, ok := m.collections[kind]
	if !ok {
		c = &memCollection{records: make(map[string]*memRecord)}
		m.collections[kind] = c
	}
	return c
}

// Create stores a single record.
func (m *MemoryStore) Create(ctx context.Context, kind Kind, id string, fields Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insert(m.collection(kind), id, fields)
}

// CreateBatch stores each object independently and reports the ones that failed.
func (m *MemoryStore) CreateBatch(ctx context.Context, kind Kind, objects []Object) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.collection(kind)
	failed := make(map[string]error)
	for _, obj := range objects {
		if err := m.insert(c, obj.ID, obj.Fields); err != nil {
			failed[obj.ID] = err
		}
	}
	if len(failed) > 0 {
		return &BatchError{Failed: failed}
	}
	return nil
}

func (m *MemoryStore) insert(c *memCollection, id string, fields Fields) error {
	if id == "" {
		return fmt.Errorf("empty record id")
	}
	if _, exists := c.records[id]; exists {
		return fmt.Errorf("record %s: %w", id, ErrUniqueViolation)
	}
	for _, name := range c.unique {
		value, ok := fields[name]
		if !ok {
			continue
		}
		for _, other := range c.records {
			if equalValues(other.fields[name], value) {
				return fmt.Errorf("field %s: %w", name, ErrUniqueViolation)
			}
		}
	}
	c.records[id] = &memRecord{fields: project(fields, nil), refs: make(map[string]string)}
	c.order = append(c.order, id)
	return nil
}

// Get returns matching records in insertion order.
func (m *MemoryStore) Get(ctx context.Context, kind Kind, fields []string, filter *Filter, limit int) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	c := m.collection(kind)
	var out []Record
	for _, id := range c.order {
		rec := c.records[id]
		if filter != nil && !matches(*filter, id, rec) {
			continue
		}
		out = append(out, toRecord(kind, id, rec, fields))
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// SemanticQuery ranks records by how many query terms their text fields share.
// Ties keep insertion order.
func (m *MemoryStore) SemanticQuery(ctx context.Context, kind Kind, fields []string, concepts []string, limit int) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	query := make(map[string]struct{})
	for _, concept := range concepts {
		for _, term := range terms(concept) {
			query[term] = struct{}{}
		}
	}

	c := m.collection(kind)
	out := make([]Record, 0, len(c.order))
	for _, id := range c.order {
		rec := c.records[id]
		r := toRecord(kind, id, rec, fields)
		r.Score = overlap(query, rec.fields)
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Update merges fields into an existing record.
func (m *MemoryStore) Update(ctx context.Context, kind Kind, id string, fields Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.collection(kind).records[id]
	if !ok {
		return fmt.Errorf("%s %s: %w", kind, id, ErrRecordNotFound)
	}
	for k, v := range fields {
		rec.fields[k] = v
	}
	return nil
}

// Delete removes a record if present.
func (m *MemoryStore) Delete(ctx context.Context, kind Kind, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.collection(kind)
	if _, ok := c.records[id]; !ok {
		return nil
	}
	delete(c.records, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

// Link sets a reference from one record to another. Both must exist.
func (m *MemoryStore) Link(ctx context.Context, fromKind Kind, fromID, property string, toKind Kind, toID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	from, ok := m.collection(fromKind).records[fromID]
	if !ok {
		return fmt.Errorf("%s %s: %w", fromKind, fromID, ErrRecordNotFound)
	}
	if _, ok := m.collection(toKind).records[toID]; !ok {
		return fmt.Errorf("%s %s: %w", toKind, toID, ErrRecordNotFound)
	}
	from.refs[property] = toID
	return nil
}

func toRecord(kind Kind, id string, rec *memRecord, fields []string) Record {
	refs := make(map[string]string, len(rec.refs))
	for k, v := range rec.refs {
		refs[k] = v
	}
	return Record{ID: id, Kind: kind, Fields: project(rec.fields, fields), Refs: refs}
}

func matches(f Filter, id string, rec *memRecord) bool {
	switch f.Operator {
	case OpEqual:
		if f.Path == IDPath {
			return equalValues(id, f.Value)
		}
		if prop, ok := strings.CutPrefix(f.Path, refPrefix); ok {
			return equalValues(rec.refs[prop], f.Value)
		}
		v, ok := rec.fields[f.Path]
		return ok && equalValues(v, f.Value)
	case OpAnd:
		for _, op := range f.Operands {
			if !matches(op, id, rec) {
				return false
			}
		}
		return true
	case OpOr:
		for _, op := range f.Operands {
			if matches(op, id, rec) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func equalValues(a, b any) bool {
	if ai, ok := asInt(a); ok {
		bi, ok := asInt(b)
		return ok && ai == bi
	}
	return a == b
}

func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	default:
		return 0, false
	}
}

func terms(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func overlap(query map[string]struct{}, fields Fields) float32 {
	if len(query) == 0 {
		return 0
	}
	seen := make(map[string]struct{})
	for _, v := range fields {
		s, ok := v.(string)
		if !ok {
			continue
		}
		for _, term := range terms(s) {
			if _, hit := query[term]; hit {
				seen[term] = struct{}{}
			}
		}
	}
	return float32(len(seen)) / float32(len(query))
}
