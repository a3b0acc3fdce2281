package huggingface

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

const defaultParallelism = 4

// SnapshotResult describes a completed snapshot download.
type SnapshotResult struct {
	RepoID    string
	Revision  string
	Path      string
	Files     []DownloadedFile
	TotalSize int64
	Duration  time.Duration
}

// DownloadedFile is one file of a snapshot.
type DownloadedFile struct {
	Filename  string
	LocalPath string
	Size      int64
	FromCache bool
}

// ProgressFunc receives cumulative downloaded bytes against the total.
type ProgressFunc func(downloaded, total int64)

type downloadConfig struct {
	revision    string
	patterns    []string
	progressFn  ProgressFunc
	parallelism int
}

type DownloadOption func(*downloadConfig)

// WithRevision selects a git revision (default "main").
func WithRevision(revision string) DownloadOption {
	return func(cfg *downloadConfig) {
		if revision != "" {
			cfg.revision = revision
		}
	}
}

// WithPatterns limits the snapshot to files matching any glob pattern.
func WithPatterns(patterns ...string) DownloadOption {
	return func(cfg *downloadConfig) { cfg.patterns = patterns }
}

// WithProgress installs a progress callback.
func WithProgress(fn ProgressFunc) DownloadOption {
	return func(cfg *downloadConfig) { cfg.progressFn = fn }
}

// WithParallelism bounds concurrent file downloads (default 4).
func WithParallelism(n int) DownloadOption {
	return func(cfg *downloadConfig) {
		if n > 0 {
			cfg.parallelism = n
		}
	}
}

// DownloadSnapshot fetches a model's files into the cache and returns the
// snapshot directory. Files already cached are skipped.
func (c *Client) DownloadSnapshot(ctx context.Context, repoID string, opts ...DownloadOption) (*SnapshotResult, error) {
	started := time.Now()

	cfg := &downloadConfig{revision: "main", parallelism: defaultParallelism}
	for _, opt := range opts {
		opt(cfg)
	}

	info, err := c.GetModelInfo(ctx, repoID)
	if err != nil {
		return nil, fmt.Errorf("fetching model info: %w", err)
	}

	siblings := filterSiblings(info.Siblings, cfg.patterns)
	if len(siblings) == 0 {
		return nil, fmt.Errorf("%w: no files matched", ErrFileNotFound)
	}

	var total int64
	for _, s := range siblings {
		total += s.Size
	}

	var downloaded atomic.Int64
	var mu sync.Mutex
	files := make([]DownloadedFile, 0, len(siblings))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.parallelism)
	for _, s := range siblings {
		s := s
		g.Go(func() error {
			_, statErr := os.Stat(filepath.Join(snapshotDir(repoID, cfg.revision), s.Filename))
			cached := statErr == nil

			path, err := c.DownloadFile(gctx, repoID, s.Filename, cfg.revision)
			if err != nil {
				return fmt.Errorf("downloading %s: %w", s.Filename, err)
			}

			if cfg.progressFn != nil {
				cfg.progressFn(downloaded.Add(s.Size), total)
			}

			mu.Lock()
			files = append(files, DownloadedFile{
				Filename:  s.Filename,
				LocalPath: path,
				Size:      s.Size,
				FromCache: cached,
			})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &SnapshotResult{
		RepoID:    repoID,
		Revision:  cfg.revision,
		Path:      snapshotDir(repoID, cfg.revision),
		Files:     files,
		TotalSize: total,
		Duration:  time.Since(started),
	}, nil
}

func filterSiblings(siblings []Sibling, patterns []string) []Sibling {
	if len(patterns) == 0 {
		return siblings
	}

	var out []Sibling
	for _, s := range siblings {
		for _, pattern := range patterns {
			if ok, _ := filepath.Match(pattern, filepath.Base(s.Filename)); ok {
				out = append(out, s)
				break
			}
		}
	}
	return out
}
