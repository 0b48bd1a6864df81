package quarry

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/jward/quarry/internal/lang"
	"github.com/jward/quarry/internal/resolve"
)

// extractParallel runs phase 1 across a worker pool:
//
//	Phase A (parallel): each worker parses and extracts one file into an
//	                    indexed slot; files never share state.
//	Phase B (serial):   merge slots in input order so the collected set
//	                    is identical to a serial run.
func (e *Engine) extractParallel(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	type slot struct {
		res  *lang.Result
		diag *resolve.Diagnostic
	}
	slots := make([]slot, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(min(runtime.NumCPU(), len(paths)))

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, diag, skip := e.extractOne(ctx, path)
			if skip {
				return nil
			}
			slots[i] = slot{res: res, diag: diag}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, s := range slots {
		if s.diag != nil {
			e.diags = append(e.diags, *s.diag)
			continue
		}
		if s.res != nil {
			e.results = append(e.results, s.res)
		}
	}
	return nil
}
