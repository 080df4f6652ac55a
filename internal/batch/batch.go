package batch

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/schollz/progressbar/v3"

	"github.com/dgallion1/sectionize/internal/config"
	"github.com/dgallion1/sectionize/internal/record"
	"github.com/dgallion1/sectionize/internal/source"
)

// Summary reports what a batch run did.
type Summary struct {
	Files     int // documents attempted
	Converted int // documents that produced at least one record
	Skipped   int // documents skipped (unreadable, unsupported, no outline)
	Records   int // records appended to the sink
}

// Runner converts a set of documents and appends their records to a
// single sink. Conversion runs on cfg.WorkerCount goroutines; writes to
// the sink stay serialized on the collecting goroutine.
type Runner struct {
	cfg  config.Config
	sink *record.Sink
	log  *slog.Logger

	// Progress, when non-nil, receives a progress bar during Run.
	Progress io.Writer
}

func NewRunner(cfg config.Config, sink *record.Sink, log *slog.Logger) *Runner {
	return &Runner{cfg: cfg, sink: sink, log: log}
}

// Run discovers documents under paths (directories are walked
// recursively), converts them and appends each document's records as one
// line on the sink. Per-document failures are logged and skipped; only a
// sink write failure aborts the run.
func (r *Runner) Run(ctx context.Context, paths []string) (Summary, error) {
	files, err := discover(paths, r.log)
	if err != nil {
		return Summary{}, err
	}

	var bar *progressbar.ProgressBar
	if r.Progress != nil {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetWriter(r.Progress),
			progressbar.OptionSetDescription("converting"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	sum := Summary{Files: len(files)}

	type result struct {
		path string
		recs []record.Record
		err  error
	}

	workers := r.cfg.WorkerCount
	if workers < 1 {
		workers = 1
	}
	jobs := make(chan string)
	results := make(chan result)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				recs, err := ConvertFile(path, r.cfg, r.log)
				select {
				case results <- result{path: path, recs: recs, err: err}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, f := range files {
			select {
			case jobs <- f:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var writeErr error
	for res := range results {
		if bar != nil {
			bar.Add(1)
		}
		if res.err != nil {
			r.log.Warn("skipping document", "path", res.path, "error", res.err)
			sum.Skipped++
			continue
		}
		if len(res.recs) == 0 {
			sum.Skipped++
			continue
		}
		if writeErr == nil {
			if err := r.sink.Append(res.recs); err != nil {
				writeErr = fmt.Errorf("append records for %s: %w", res.path, err)
				continue
			}
			sum.Converted++
			sum.Records += len(res.recs)
			r.log.Info("converted document",
				"path", res.path, "records", len(res.recs))
		}
	}
	if bar != nil {
		bar.Finish()
	}

	if writeErr != nil {
		return sum, writeErr
	}
	return sum, ctx.Err()
}

// discover expands paths into the list of convertible files. Directory
// arguments are walked recursively and filtered to supported extensions;
// file arguments are taken as given so an unsupported one surfaces as a
// per-document error instead of vanishing silently.
func discover(paths []string, log *slog.Logger) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				log.Warn("skipping unreadable entry", "path", path, "error", err)
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if source.IsSupported(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", p, err)
		}
	}
	return files, nil
}
