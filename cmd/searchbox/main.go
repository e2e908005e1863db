package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/usestring/searchbox/internal/config"
	"github.com/usestring/searchbox/internal/dataset"
	"github.com/usestring/searchbox/internal/highlight"
	"github.com/usestring/searchbox/internal/indexer"
	"github.com/usestring/searchbox/internal/logging"
	"github.com/usestring/searchbox/internal/search"
	"github.com/usestring/searchbox/internal/session"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Configuration is loaded from environment variables:
	// - SEARCHBOX_DATASET: comma-separated JSON dataset files (required)
	// - QUERY_CACHE_CAPACITY, DEFAULT_RESULT_LIMIT, DEBOUNCE_MS
	// - LOG_LEVEL, LOG_FILE, etc. (see internal/config for all options)
	cfg := config.Load()

	cleanup, err := logging.Setup(logging.Config{
		Level:      cfg.LogLevel,
		FilePath:   cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
		Compress:   cfg.LogCompress,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to set up logging:", err)
		os.Exit(1)
	}
	defer cleanup()

	if len(cfg.DatasetPaths) == 0 {
		slog.Error("no dataset configured, set SEARCHBOX_DATASET")
		os.Exit(1)
	}

	records, err := dataset.LoadAll(ctx, cfg.DatasetPaths, cfg.LoadWorkers)
	if err != nil {
		slog.Error("failed to load dataset", "error", err)
		os.Exit(1)
	}

	idx := indexer.New()
	for _, r := range records {
		idx.Add(r)
	}
	slog.Info("index built", "records", idx.Len())

	engine := search.New(idx)
	sess, err := session.New(engine, session.Config{
		CacheCapacity: cfg.CacheCapacity,
		Debounce:      cfg.Debounce,
	}, func(query string, results []search.Result, err error) {
		if err != nil {
			slog.Error("search failed", "query", query, "error", err)
			return
		}
		printResults(query, results, cfg.ClampLimit(0))
	})
	if err != nil {
		slog.Error("failed to create session", "error", err)
		os.Exit(1)
	}
	defer sess.Close()

	if err := repl(ctx, sess); err != nil {
		slog.Error("input error", "error", err)
		os.Exit(1)
	}
}

// repl reads queries and selection commands from stdin until EOF or
// cancellation. Plain lines are debounced queries; /up, /down and /open
// drive the selection; /cache shows the session's cached queries.
func repl(ctx context.Context, sess *session.Session) error {
	lines := make(chan string)
	errc := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- scanner.Err()
	}()

	fmt.Println("type to search; /up /down /open /cache /quit")
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-errc:
					return err
				default:
					return nil
				}
			}
			switch strings.TrimSpace(line) {
			case "/quit":
				return nil
			case "/up":
				sess.MoveUp()
				printSelection(sess)
			case "/down":
				sess.MoveDown()
				printSelection(sess)
			case "/open":
				if cur, ok := sess.Current(); ok {
					fmt.Printf("open %s (%s)\n", cur.Record.ID, cur.Record.Name)
				} else {
					fmt.Println("nothing selected")
				}
			case "/cache":
				fmt.Println("cached queries (oldest first):", sess.CachedQueries())
			default:
				sess.SetQuery(line)
			}
		}
	}
}

func printResults(query string, results []search.Result, limit int) {
	if len(results) == 0 {
		fmt.Printf("%q: no matches\n", query)
		return
	}
	if limit > 0 && limit < len(results) {
		results = results[:limit]
	}
	fmt.Printf("%q: %d match(es)\n", query, len(results))
	for i, r := range results {
		marked := highlight.Mark(r.Record.Name, r.Spans, "[", "]")
		fmt.Printf("  %2d. %s\n", i+1, marked)
	}
}

func printSelection(sess *session.Session) {
	if cur, ok := sess.Current(); ok {
		fmt.Printf("> %s\n", cur.Record.Name)
	}
}
