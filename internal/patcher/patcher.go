// Package patcher runs the configured categories over grass records.
//
// For every record the global filters are consulted first. Each category
// whose filter matches is then applied, in configuration order, to one working
// copy of the record so later categories see the values left by earlier ones.
// The original record is never modified.
package patcher

import (
	"context"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/grassfps/grassfps/internal/category"
	"github.com/grassfps/grassfps/internal/filter"
	"github.com/grassfps/grassfps/internal/logging"
	"github.com/grassfps/grassfps/internal/metrics"
	"github.com/grassfps/grassfps/internal/numeric"
	"github.com/grassfps/grassfps/internal/record"
)

type Patcher struct {
	categories []*category.Category
	gate       filter.Global
	matcher    filter.Matcher
	overflow   numeric.Overflow
	workers    int
	log        *logging.Logger
}

// Result is the outcome of patching one record. Patched is the same pointer as
// Original unless Changed is set.
type Result struct {
	Original   *record.Grass
	Patched    *record.Grass
	Changed    bool
	Categories []string
}

func New(categories []*category.Category, gate filter.Global, matcher filter.Matcher) *Patcher {
	return &Patcher{
		categories: categories,
		gate:       gate,
		matcher:    matcher,
		workers:    runtime.GOMAXPROCS(0),
	}
}

func (p *Patcher) WithLogger(log *logging.Logger) *Patcher {
	p.log = log
	return p
}

func (p *Patcher) WithOverflow(policy numeric.Overflow) *Patcher {
	p.overflow = policy
	return p
}

// WithWorkers bounds the number of records ApplyAll patches concurrently.
// Values below one select GOMAXPROCS.
func (p *Patcher) WithWorkers(n int) *Patcher {
	if n < 1 {
		n = runtime.GOMAXPROCS(0)
	}
	p.workers = n
	return p
}

// Apply patches a single record. It returns the patched copy and true when any
// field changed, otherwise the original record and false. Errors are
// configuration errors and abort the record.
func (p *Patcher) Apply(rec *record.Grass) (*record.Grass, bool, error) {
	res, err := p.apply(rec)
	return res.Patched, res.Changed, err
}

func (p *Patcher) apply(rec *record.Grass) (Result, error) {
	t0 := time.Now()
	defer func() {
		metrics.ApplyDuration.Observe(time.Since(t0).Seconds())
	}()

	metrics.RecordsProcessed.Inc()
	res := Result{Original: rec, Patched: rec}

	if !p.gate.Allows(rec.Key) {
		metrics.RecordsSkipped.Inc()
		p.log.Tracef("Record %v rejected by global filters", rec.Key)
		return res, nil
	}

	var working *record.Grass
	for i, c := range p.categories {
		if !c.Filter.Matches(rec, p.matcher) {
			continue
		}

		if working == nil {
			working = rec.DeepCopy()
		}

		changed, err := c.Apply(working, p.overflow)
		if err != nil {
			return Result{Original: rec, Patched: rec}, err
		}

		name := categoryName(c, i)
		metrics.CategoryApplied.WithLabelValues(name).Inc()
		res.Categories = append(res.Categories, name)
		res.Changed = res.Changed || changed
	}

	if res.Changed {
		res.Patched = working
		metrics.RecordsChanged.Inc()
		p.log.Debugf("Record %v (%s) patched by categories %v", rec.Key, rec.EditorIDOrEmpty(), res.Categories)
	} else if len(res.Categories) > 0 {
		p.log.Tracef("Record %v matched categories %v without changes", rec.Key, res.Categories)
	}

	return res, nil
}

// ApplyAll patches recs concurrently. Results are in input order. progress,
// if not nil, is called once per finished record from the worker goroutines.
// The first error cancels the remaining work.
func (p *Patcher) ApplyAll(ctx context.Context, recs []*record.Grass, progress func()) ([]Result, error) {
	results := make([]Result, len(recs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, rec := range recs {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			res, err := p.apply(rec)
			if err != nil {
				return err
			}
			results[i] = res

			if progress != nil {
				progress()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

func categoryName(c *category.Category, i int) string {
	if c.Identifier != "" {
		return c.Identifier
	}
	return "#" + strconv.Itoa(i)
}
