package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"bookbot/internal/indexer"
	"bookbot/internal/storage"
	"bookbot/internal/vectorstore"
)

// Library is the part of the ingestion pipeline the CLI drives.
type Library interface {
	IngestFile(ctx context.Context, path string) indexer.IngestResult
	IngestAll(ctx context.Context, dir string) ([]indexer.IngestResult, error)
	ListBooks(ctx context.Context) ([]indexer.Book, error)
	Search(ctx context.Context, question string, limit int) ([]indexer.SearchHit, error)
	DeleteBook(ctx context.Context, bookID string) (*indexer.DeleteResult, error)
}

// SchemaManager creates the vector store collections.
type SchemaManager interface {
	EnsureSchema(ctx context.Context) ([]vectorstore.Kind, error)
}

// HistoryLister lists recorded file ingestions.
type HistoryLister interface {
	List(ctx context.Context) ([]*storage.IngestionRecord, error)
}

// Env is everything a command needs. History is nil when the ledger is disabled.
type Env struct {
	Library  Library
	Schema   SchemaManager
	History  HistoryLister
	BooksDir string
	Close    func()
}

// Opener builds the Env for one command invocation.
type Opener func(ctx context.Context) (*Env, error)

func main() {
	if err := newApp(openEnv).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(open Opener) *cli.App {
	withEnv := func(action func(c *cli.Context, env *Env) error) cli.ActionFunc {
		return func(c *cli.Context) error {
			env, err := open(c.Context)
			if err != nil {
				return err
			}
			if env.Close != nil {
				defer env.Close()
			}
			return action(c, env)
		}
	}

	return &cli.App{
		Name:  "bookctl",
		Usage: "Manage the bookbot library",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "schema",
				Usage:  "Create the vector store collections if missing",
				Action: withEnv(schemaCommand),
			},
			{
				Name:      "ingest",
				Usage:     "Ingest documents, or every document in a folder when no files are given",
				ArgsUsage: "[FILE...]",
				Action:    withEnv(ingestCommand),
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "dir",
						Aliases: []string{"d"},
						Usage:   "Folder to ingest (defaults to BOOKS_DIR)",
					},
				},
			},
			{
				Name:   "list",
				Usage:  "List stored books",
				Action: withEnv(listCommand),
			},
			{
				Name:      "search",
				Usage:     "Find passages related to a question",
				ArgsUsage: "QUERY",
				Action:    withEnv(searchCommand),
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of passages",
						Value:   indexer.DefaultSearchLimit,
					},
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a book and its chunks",
				ArgsUsage: "BOOK_ID",
				Action:    withEnv(deleteCommand),
			},
			{
				Name:   "history",
				Usage:  "Show the recorded outcome of every ingested file",
				Action: withEnv(historyCommand),
			},
		},
	}
}

func schemaCommand(c *cli.Context, env *Env) error {
	created, err := env.Schema.EnsureSchema(c.Context)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	if len(created) == 0 {
		fmt.Fprintln(c.App.Writer, "schema up to date")
		return nil
	}
	for _, kind := range created {
		fmt.Fprintf(c.App.Writer, "created %s\n", kind)
	}
	return nil
}

func ingestCommand(c *cli.Context, env *Env) error {
	var results []indexer.IngestResult
	if c.NArg() > 0 {
		for _, path := range c.Args().Slice() {
			results = append(results, env.Library.IngestFile(c.Context, path))
		}
	} else {
		dir := c.String("dir")
		if dir == "" {
			dir = env.BooksDir
		}
		var err error
		if results, err = env.Library.IngestAll(c.Context, dir); err != nil {
			return err
		}
	}

	for _, res := range results {
		switch res.Status {
		case indexer.StatusUploaded:
			fmt.Fprintf(c.App.Writer, "uploaded  %s: %q by %s (%d chunks)\n", res.File, res.Title, res.Author, res.TotalChunks)
		case indexer.StatusSkipped:
			fmt.Fprintf(c.App.Writer, "skipped   %s: %s\n", res.File, res.Reason)
		default:
			fmt.Fprintf(c.App.Writer, "error     %s: %s\n", res.File, res.Error)
		}
	}

	summary := indexer.Summarize(results)
	fmt.Fprintf(c.App.Writer, "%d files: %d uploaded, %d skipped, %d errors, %d chunks\n",
		summary.Files, summary.Uploaded, summary.Skipped, summary.Errors, summary.TotalChunks)
	if summary.Uploaded > 0 {
		stats := summary.ChunkStats
		fmt.Fprintf(c.App.Writer, "chunks per book: min %d, max %d, mean %.2f, p95 %d\n", stats.Min, stats.Max, stats.Mean, stats.P95)
	}
	if summary.Errors > 0 {
		return cli.Exit(fmt.Sprintf("%d documents failed", summary.Errors), 1)
	}
	return nil
}

func listCommand(c *cli.Context, env *Env) error {
	books, err := env.Library.ListBooks(c.Context)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tYEAR\tLANGUAGE")
	for _, b := range books {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", b.ID, b.Title, b.Author, b.Year, b.Language)
	}
	return tw.Flush()
}

func searchCommand(c *cli.Context, env *Env) error {
	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return cli.Exit("search requires a QUERY", 2)
	}
	hits, err := env.Library.Search(c.Context, query, c.Int("limit"))
	if err != nil {
		return err
	}
	if len(hits) == 0 {
		fmt.Fprintln(c.App.Writer, "no matches")
		return nil
	}
	for i, hit := range hits {
		fmt.Fprintf(c.App.Writer, "%d. %s by %s (chunk %d, score %.3f)\n   %s\n",
			i+1, hit.Title, hit.Author, hit.ChunkIndex, hit.Score, preview(hit.Content, 200))
	}
	return nil
}

func deleteCommand(c *cli.Context, env *Env) error {
	if c.NArg() != 1 {
		return cli.Exit("delete requires exactly one BOOK_ID", 2)
	}
	res, err := env.Library.DeleteBook(c.Context, c.Args().First())
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "deleted %q (%s) and %d chunks\n", res.Title, res.BookID, res.ChunksDeleted)
	return nil
}

func historyCommand(c *cli.Context, env *Env) error {
	if env.History == nil {
		return cli.Exit("history requires LEDGER_DB_PATH", 1)
	}
	records, err := env.History.List(c.Context)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tSTATUS\tTITLE\tCHUNKS\tUPDATED\tREASON")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			r.Path, r.Status, r.Title, r.Chunks, r.UpdatedAt.Format("2006-01-02 15:04:05"), r.Reason)
	}
	return tw.Flush()
}

// preview shortens s to at most n runes on one line.
func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

func setupLogger(c *cli.Context) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.String("log-level"))); err != nil {
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", c.String("log-level"))
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
