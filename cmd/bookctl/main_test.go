package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"bookbot/internal/indexer"
	"bookbot/internal/storage"
	"bookbot/internal/vectorstore"
)

type fakeSchema struct {
	created []vectorstore.Kind
	err     error
}

func (f *fakeSchema) EnsureSchema(context.Context) ([]vectorstore.Kind, error) {
	return f.created, f.err
}

type fakeHistory []*storage.IngestionRecord

func (f fakeHistory) List(context.Context) ([]*storage.IngestionRecord, error) {
	return f, nil
}

const mobyDick = "Title: Moby Dick\nAuthor: Herman Melville\nRelease date: June 1, 2001\n\n" +
	"*** START OF THE PROJECT GUTENBERG EBOOK ***\nCall me Ishmael. The whale was white.\n*** END OF THE PROJECT GUTENBERG EBOOK ***\n"

// run executes bookctl against env and returns its output.
func run(t *testing.T, env *Env, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp(func(context.Context) (*Env, error) { return env, nil })
	app.Writer = &out
	app.ErrWriter = &out
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run(append([]string{"bookctl"}, args...))
	return out.String(), err
}

func newTestEnv(t *testing.T) (*Env, string) {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "moby.txt"), []byte(mobyDick), 0o644); err != nil {
		t.Fatal(err)
	}
	pipeline, err := indexer.NewPipeline(vectorstore.NewMemoryStore(), nil, indexer.DefaultConfig())
	if err != nil {
		t.Fatalf("NewPipeline() error = %v", err)
	}
	return &Env{Library: pipeline, Schema: &fakeSchema{}, BooksDir: dir}, dir
}

func TestIngestCommand(t *testing.T) {
	env, dir := newTestEnv(t)

	out, err := run(t, env, "ingest")
	if err != nil {
		t.Fatalf("ingest error = %v", err)
	}
	if !strings.Contains(out, `uploaded  moby.txt: "Moby Dick" by Herman Melville (1 chunks)`) {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(out, "chunks per book: min 1, max 1, mean 1.00, p95 1") {
		t.Errorf("output missing chunk stats: %q", out)
	}

	out, err = run(t, env, "ingest", filepath.Join(dir, "moby.txt"))
	if err != nil {
		t.Fatalf("second ingest error = %v", err)
	}
	if !strings.Contains(out, "skipped") || !strings.Contains(out, "1 files: 0 uploaded, 1 skipped") {
		t.Errorf("output = %q", out)
	}
	if strings.Contains(out, "chunks per book") {
		t.Errorf("chunk stats printed with nothing uploaded: %q", out)
	}
}

func TestIngestCommand_Errors(t *testing.T) {
	env, dir := newTestEnv(t)
	if err := os.WriteFile(filepath.Join(dir, "empty.txt"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, env, "ingest", "--dir", dir)
	if err == nil {
		t.Fatal("ingest with a failing document should return error")
	}
	if !strings.Contains(out, "error     empty.txt") || !strings.Contains(out, "1 uploaded") {
		t.Errorf("output = %q", out)
	}

	if _, err := run(t, env, "ingest", "--dir", filepath.Join(dir, "missing")); err == nil {
		t.Error("ingest of a missing folder should return error")
	}
}

func TestListAndSearchCommands(t *testing.T) {
	env, _ := newTestEnv(t)
	if _, err := run(t, env, "ingest"); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, env, "list")
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	if !strings.Contains(out, "TITLE") || !strings.Contains(out, "Moby Dick") || !strings.Contains(out, "2001") {
		t.Errorf("list output = %q", out)
	}

	out, err = run(t, env, "search", "white", "whale")
	if err != nil {
		t.Fatalf("search error = %v", err)
	}
	if !strings.Contains(out, "1. Moby Dick by Herman Melville") || !strings.Contains(out, "Call me Ishmael.") {
		t.Errorf("search output = %q", out)
	}

	if _, err := run(t, env, "search"); err == nil {
		t.Error("search without a query should return error")
	}
}

func TestDeleteCommand(t *testing.T) {
	env, _ := newTestEnv(t)
	if _, err := run(t, env, "ingest"); err != nil {
		t.Fatal(err)
	}
	books, err := env.Library.ListBooks(context.Background())
	if err != nil || len(books) != 1 {
		t.Fatalf("ListBooks() = %v, %v", books, err)
	}

	out, err := run(t, env, "delete", books[0].ID)
	if err != nil {
		t.Fatalf("delete error = %v", err)
	}
	if !strings.Contains(out, `deleted "Moby Dick"`) || !strings.Contains(out, "1 chunks") {
		t.Errorf("output = %q", out)
	}

	if _, err := run(t, env, "delete", books[0].ID); err == nil {
		t.Error("deleting a missing book should return error")
	}
	if _, err := run(t, env, "delete"); err == nil {
		t.Error("delete without an id should return error")
	}
}

func TestSchemaCommand(t *testing.T) {
	tests := []struct {
		name    string
		schema  *fakeSchema
		want    string
		wantErr bool
	}{
		{name: "creates", schema: &fakeSchema{created: []vectorstore.Kind{vectorstore.KindBook, vectorstore.KindChunk}}, want: "created Book\ncreated BookChunk\n"},
		{name: "up to date", schema: &fakeSchema{}, want: "schema up to date\n"},
		{name: "failure", schema: &fakeSchema{err: errors.New("unreachable")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, &Env{Schema: tt.schema}, "schema")
			if (err != nil) != tt.wantErr {
				t.Fatalf("schema error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && out != tt.want {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestHistoryCommand(t *testing.T) {
	if _, err := run(t, &Env{}, "history"); err == nil {
		t.Error("history without a ledger should return error")
	}

	env := &Env{History: fakeHistory{{Path: "books/moby.txt", Status: "uploaded", Title: "Moby Dick", Chunks: 1}}}
	out, err := run(t, env, "history")
	if err != nil {
		t.Fatalf("history error = %v", err)
	}
	if !strings.Contains(out, "books/moby.txt") || !strings.Contains(out, "uploaded") {
		t.Errorf("output = %q", out)
	}
}

func TestOpenerFailure(t *testing.T) {
	app := newApp(func(context.Context) (*Env, error) { return nil, errors.New("no config") })
	app.Writer = &bytes.Buffer{}
	app.ExitErrHandler = func(*cli.Context, error) {}
	if err := app.Run([]string{"bookctl", "list"}); err == nil || err.Error() != "no config" {
		t.Errorf("Run() error = %v, want no config", err)
	}
}

func TestSetupLogger_InvalidLevel(t *testing.T) {
	env, _ := newTestEnv(t)
	if _, err := run(t, env, "--log-level", "loud", "list"); err == nil {
		t.Error("invalid log level should return error")
	}
}

func TestPreview(t *testing.T) {
	if got := preview("a  b\nc", 10); got != "a b c" {
		t.Errorf("preview() = %q", got)
	}
	if got := preview("abcdef", 3); got != "abc..." {
		t.Errorf("preview() = %q", got)
	}
}
