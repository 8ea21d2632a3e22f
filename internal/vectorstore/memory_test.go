package vectorstore

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStore_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	books := []Object{
		{ID: "b1", Fields: Fields{"title": "Moby Dick", "author": "Herman Melville", "publication_year": 1851}},
		{ID: "b2", Fields: Fields{"title": "Emma", "author": "Jane Austen", "publication_year": 1815}},
		{ID: "b3", Fields: Fields{"title": "Persuasion", "author": "Jane Austen", "publication_year": 1817}},
	}
	if err := store.CreateBatch(ctx, KindBook, books); err != nil {
		t.Fatalf("CreateBatch() error = %v", err)
	}

	austen := Equal("author", "Jane Austen")
	emma := And(Equal("title", "Emma"), Equal("author", "Jane Austen"))
	either := Or(Equal("title", "Emma"), Equal("title", "Moby Dick"))
	byID := Equal(IDPath, "b3")
	year := Equal("publication_year", int64(1851))

	tests := []struct {
		name    string
		filter  *Filter
		limit   int
		wantIDs []string
	}{
		{name: "nil filter returns all in insertion order", wantIDs: []string{"b1", "b2", "b3"}},
		{name: "limit", limit: 2, wantIDs: []string{"b1", "b2"}},
		{name: "equal", filter: &austen, wantIDs: []string{"b2", "b3"}},
		{name: "and", filter: &emma, wantIDs: []string{"b2"}},
		{name: "or", filter: &either, wantIDs: []string{"b1", "b2"}},
		{name: "id path", filter: &byID, wantIDs: []string{"b3"}},
		{name: "int and int64 compare equal", filter: &year, wantIDs: []string{"b1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Get(ctx, KindBook, nil, tt.filter, tt.limit)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("Get() returned %d records, want %d", len(got), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Errorf("record %d id = %s, want %s", i, got[i].ID, id)
				}
				if got[i].Kind != KindBook {
					t.Errorf("record %d kind = %s", i, got[i].Kind)
				}
			}
		})
	}
}

func TestMemoryStore_FieldProjection(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_ = store.Create(ctx, KindBook, "b1", Fields{"title": "Emma", "author": "Jane Austen"})

	got, err := store.Get(ctx, KindBook, []string{"title"}, nil, 0)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got[0].String("title") != "Emma" {
		t.Errorf("title = %q", got[0].String("title"))
	}
	if _, ok := got[0].Fields["author"]; ok {
		t.Error("author should not be projected")
	}
}

func TestMemoryStore_Unique(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore().WithUnique(KindUser, "username", "email")

	if err := store.Create(ctx, KindUser, "u1", Fields{"username": "ann", "email": "a@x.io"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	tests := []struct {
		name   string
		id     string
		fields Fields
	}{
		{name: "duplicate id", id: "u1", fields: Fields{"username": "bob", "email": "b@x.io"}},
		{name: "duplicate username", id: "u2", fields: Fields{"username": "ann", "email": "c@x.io"}},
		{name: "duplicate email", id: "u3", fields: Fields{"username": "cat", "email": "a@x.io"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.Create(ctx, KindUser, tt.id, tt.fields)
			if !errors.Is(err, ErrUniqueViolation) {
				t.Errorf("Create() error = %v, want ErrUniqueViolation", err)
			}
		})
	}
	if store.Len(KindUser) != 1 {
		t.Errorf("Len() = %d, want 1", store.Len(KindUser))
	}
}

func TestMemoryStore_CreateBatchPartialFailure(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_ = store.Create(ctx, KindChunk, "c2", Fields{"content": "taken"})

	err := store.CreateBatch(ctx, KindChunk, []Object{
		{ID: "c1", Fields: Fields{"content": "one"}},
		{ID: "c2", Fields: Fields{"content": "two"}},
		{ID: "c3", Fields: Fields{"content": "three"}},
	})

	var batchErr *BatchError
	if !errors.As(err, &batchErr) {
		t.Fatalf("CreateBatch() error = %v, want *BatchError", err)
	}
	if ids := batchErr.FailedIDs(); len(ids) != 1 || ids[0] != "c2" {
		t.Errorf("FailedIDs() = %v, want [c2]", ids)
	}
	if store.Len(KindChunk) != 3 {
		t.Errorf("Len() = %d, want 3", store.Len(KindChunk))
	}
}

func TestMemoryStore_LinkAndRefFilter(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_ = store.Create(ctx, KindBook, "b1", Fields{"title": "Emma"})
	_ = store.Create(ctx, KindBook, "b2", Fields{"title": "Persuasion"})
	for _, id := range []string{"c1", "c2", "c3"} {
		_ = store.Create(ctx, KindChunk, id, Fields{"content": id})
	}
	_ = store.Link(ctx, KindChunk, "c1", "book", KindBook, "b1")
	_ = store.Link(ctx, KindChunk, "c2", "book", KindBook, "b2")
	_ = store.Link(ctx, KindChunk, "c3", "book", KindBook, "b1")

	filter := Equal(RefPath("book"), "b1")
	got, err := store.Get(ctx, KindChunk, nil, &filter, 0)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got) != 2 || got[0].ID != "c1" || got[1].ID != "c3" {
		t.Fatalf("Get() = %+v, want c1 and c3", got)
	}
	if got[0].Refs["book"] != "b1" {
		t.Errorf("Refs[book] = %q, want b1", got[0].Refs["book"])
	}

	err = store.Link(ctx, KindChunk, "c1", "book", KindBook, "missing")
	if !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("Link() to missing target error = %v, want ErrRecordNotFound", err)
	}
}

func TestMemoryStore_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_ = store.Create(ctx, KindUser, "u1", Fields{"username": "ann", "is_active": true})

	if err := store.Update(ctx, KindUser, "u1", Fields{"is_active": false}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	got, _ := store.Get(ctx, KindUser, nil, nil, 0)
	if got[0].Bool("is_active") {
		t.Error("is_active should be false after update")
	}
	if got[0].String("username") != "ann" {
		t.Error("update should keep untouched fields")
	}

	if err := store.Update(ctx, KindUser, "nope", Fields{"x": 1}); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("Update() missing error = %v, want ErrRecordNotFound", err)
	}

	if err := store.Delete(ctx, KindUser, "u1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := store.Delete(ctx, KindUser, "u1"); err != nil {
		t.Errorf("Delete() of missing record error = %v, want nil", err)
	}
	if store.Len(KindUser) != 0 {
		t.Errorf("Len() = %d, want 0", store.Len(KindUser))
	}
}

func TestMemoryStore_SemanticQuery(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_ = store.CreateBatch(ctx, KindChunk, []Object{
		{ID: "c1", Fields: Fields{"content": "The whale surfaced near the ship."}},
		{ID: "c2", Fields: Fields{"content": "A ball at Netherfield."}},
		{ID: "c3", Fields: Fields{"content": "Captain Ahab hunted the white whale."}},
	})

	got, err := store.SemanticQuery(ctx, KindChunk, []string{"content"}, []string{"white whale"}, 2)
	if err != nil {
		t.Fatalf("SemanticQuery() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("SemanticQuery() returned %d, want 2", len(got))
	}
	if got[0].ID != "c3" || got[1].ID != "c1" {
		t.Errorf("order = [%s %s], want [c3 c1]", got[0].ID, got[1].ID)
	}
	if got[0].Score <= got[1].Score {
		t.Errorf("scores not descending: %v, %v", got[0].Score, got[1].Score)
	}
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewMemoryStore()
	if err := store.Create(ctx, KindBook, "b1", Fields{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Create() error = %v, want context.Canceled", err)
	}
}

func TestFilter_String(t *testing.T) {
	f := And(Equal("title", "Emma"), Or(Equal("author", "A"), Equal(RefPath("book"), "b1")))
	want := "(title=Emma And (author=A Or _refs.book=b1))"
	if got := f.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
