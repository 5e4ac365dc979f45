// Package enrich turns raw provider items into enriched postings.
package enrich

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/amishk599/jobsignal/internal/identity"
	"github.com/amishk599/jobsignal/internal/model"
	"github.com/amishk599/jobsignal/internal/signal"
	"github.com/amishk599/jobsignal/internal/textclean"
)

// Assembler merges normalization, cleaning, scanning and identity into one
// record per raw item. It is safe for concurrent use.
type Assembler struct {
	scanner *signal.Scanner
	workers int
}

// NewAssembler creates an assembler. workers bounds AssembleAll; values
// below 1 use GOMAXPROCS.
func NewAssembler(scanner *signal.Scanner, workers int) *Assembler {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Assembler{scanner: scanner, workers: workers}
}

// Assemble builds the enriched record for one item. It never fails:
// missing data surfaces as nil fields or an empty description.
func (a *Assembler) Assemble(item model.RawItem, p model.Provider, ingestTS string) model.EnrichedPosting {
	norm := p.Normalize(item)
	clean := textclean.CleanText(p.ExtractDescription(item))
	return model.EnrichedPosting{
		IngestTS:          ingestTS,
		JobUID:            identity.JobUID(norm.Source, norm.SourceJobID),
		NormalizedPosting: norm,
		DescriptionClean:  clean,
		KeywordSignals:    a.scanner.Scan(clean),
	}
}

// AssembleAll assembles a provider batch on a bounded worker pool. The
// result has the same length and order as items. A cancelled context stops
// scheduling new items and returns the context error.
func (a *Assembler) AssembleAll(ctx context.Context, items []model.RawItem, p model.Provider, ingestTS string) ([]model.EnrichedPosting, error) {
	out := make([]model.EnrichedPosting, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, item := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = a.Assemble(item, p, ingestTS)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
