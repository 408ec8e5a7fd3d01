package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/KaramelBytes/cmpds-cli/internal/dataset"
	"github.com/KaramelBytes/cmpds-cli/internal/logging"
	"github.com/KaramelBytes/cmpds-cli/internal/stats"
)

// DefaultWorkers bounds concurrent comparisons when Runner.Workers is unset.
const DefaultWorkers = 4

// Item is the outcome of one manifest entry.
type Item struct {
	Comparison Comparison
	A, B       *dataset.Dataset
	Result     *stats.Result
}

// Runner executes manifests. Datasets read by several comparisons are loaded
// once; concurrent requests for the same file and column share one read.
type Runner struct {
	Options stats.Options
	Dataset dataset.Options
	Workers int
	Logger  *slog.Logger

	flight singleflight.Group
	mu     sync.Mutex
	cache  map[string]*dataset.Dataset
	reads  int
}

// NewRunner returns a runner using opt for every comparison unless an entry
// overrides the confidence level.
func NewRunner(opt stats.Options, dopt dataset.Options, workers int, log *slog.Logger) *Runner {
	if log == nil {
		log = logging.Discard()
	}
	return &Runner{Options: opt, Dataset: dopt, Workers: workers, Logger: log}
}

// Run compares every entry of m. Results keep manifest order. The first
// failure cancels the remaining work and is returned prefixed with the entry name.
func (r *Runner) Run(ctx context.Context, m *Manifest) ([]Item, error) {
	if err := r.Options.Validate(); err != nil {
		return nil, err
	}
	workers := r.Workers
	if workers < 1 {
		workers = DefaultWorkers
	}
	items := make([]Item, len(m.Comparisons))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, c := range m.Comparisons {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			item, err := r.compare(c)
			if err != nil {
				return fmt.Errorf("%s: %w", c.Name, err)
			}
			items[i] = item
			r.Logger.Info("comparison done", "name", c.Name, "outcome", item.Result.Outcome.Kind.String())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *Runner) compare(c Comparison) (Item, error) {
	colA, colB := c.Columns()
	a, err := r.load(c.Dataset1, colA, c.Sheet)
	if err != nil {
		return Item{}, err
	}
	b, err := r.load(c.Dataset2, colB, c.Sheet)
	if err != nil {
		return Item{}, err
	}
	opt := r.Options
	if c.Confidence != 0 {
		opt.Confidence = c.Confidence
	}
	res, err := stats.Compare(a.Values, b.Values, opt)
	if err != nil {
		return Item{}, err
	}
	return Item{Comparison: c, A: a, B: b, Result: res}, nil
}

func (r *Runner) load(path string, col int, sheet string) (*dataset.Dataset, error) {
	key := fmt.Sprintf("%s#%d#%s", path, col, sheet)
	if ds, ok := r.cached(key); ok {
		return ds, nil
	}

	v, err, _ := r.flight.Do(key, func() (any, error) {
		// A flight for key may have completed between the lookup and Do.
		if ds, ok := r.cached(key); ok {
			return ds, nil
		}
		opt := r.Dataset
		opt.Column = col
		if sheet != "" {
			opt.Sheet = sheet
		}
		ds, err := dataset.ReadFile(path, opt)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		if r.cache == nil {
			r.cache = make(map[string]*dataset.Dataset)
		}
		r.cache[key] = ds
		r.reads++
		r.mu.Unlock()
		r.Logger.Debug("dataset loaded", "file", path, "column", col, "values", len(ds.Values), "skipped", len(ds.Skipped))
		return ds, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*dataset.Dataset), nil
}

func (r *Runner) cached(key string) (*dataset.Dataset, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ds, ok := r.cache[key]
	return ds, ok
}

// Reads returns how many datasets were read from disk.
func (r *Runner) Reads() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reads
}
