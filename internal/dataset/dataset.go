// Package dataset loads the searchable candidate records.
package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Record is one searchable candidate. ID is unique across the dataset,
// Name is what the search box displays and matches against, Keywords are
// extra searchable terms that are never displayed.
type Record struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Keywords []string `json:"keywords,omitempty"`
}

// Load reads a JSON array of records from path and validates it.
func Load(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", path, err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("dataset %s: %w", path, err)
	}

	seen := make(map[string]struct{}, len(records))
	for i, r := range records {
		if r.ID == "" {
			return nil, fmt.Errorf("dataset %s: record %d has empty id", path, i)
		}
		if r.Name == "" {
			return nil, fmt.Errorf("dataset %s: record %q has empty name", path, r.ID)
		}
		if _, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("dataset %s: duplicate id %q", path, r.ID)
		}
		seen[r.ID] = struct{}{}
	}

	return records, nil
}

// LoadAll loads several dataset files concurrently and concatenates them
// in path order. IDs must be unique across all files. Cancelling ctx
// aborts files not yet started; the first error cancels the rest.
func LoadAll(ctx context.Context, paths []string, workers int) ([]Record, error) {
	if workers < 1 {
		workers = 1
	}

	var (
		mu     sync.Mutex
		byPath = make(map[string][]Record, len(paths))
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			records, err := Load(path)
			if err != nil {
				return err
			}
			mu.Lock()
			byPath[path] = records
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var merged []Record
	seen := make(map[string]string) // id -> first path that defined it
	for _, path := range paths {
		for _, r := range byPath[path] {
			if first, dup := seen[r.ID]; dup {
				return nil, fmt.Errorf("dataset %s: id %q already defined in %s", path, r.ID, first)
			}
			seen[r.ID] = path
			merged = append(merged, r)
		}
	}

	return merged, nil
}
