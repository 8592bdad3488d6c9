// Package pipeline runs the per-specimen sequence: derive quantities, clip
// curves and lay out the scene. Specimens are independent, so a batch is a
// plain parallel map.
package pipeline

import (
	"context"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/bladebalance/internal/balance"
	"github.com/san-kum/bladebalance/internal/scene"
)

type Options struct {
	Calculator balance.Config
	Scene      scene.Options
	Logger     *zap.Logger
}

func DefaultOptions() Options {
	return Options{
		Calculator: balance.DefaultConfig(),
		Scene:      scene.DefaultOptions(),
		Logger:     zap.NewNop(),
	}
}

type Result struct {
	Specimen *balance.Specimen
	Derived  balance.Derived
	Scene    *scene.Scene
}

// Run processes one specimen.
func Run(s *balance.Specimen, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if err := opts.Calculator.Validate(); err != nil {
		return nil, err
	}

	d := balance.NewCalculator(opts.Calculator).Derive(s)
	for _, sk := range d.Skipped {
		log.Info("skipped quantity",
			zap.String("specimen", s.Name()),
			zap.String("quantity", sk.Quantity),
			zap.Error(sk.Err))
	}

	sc, err := scene.Build(s, d, opts.Scene)
	if err != nil {
		return nil, err
	}
	log.Debug("built scene",
		zap.String("specimen", s.Name()),
		zap.Int("circles", len(d.Circles)),
		zap.Int("traces", len(sc.Traces)),
		zap.Int("markers", len(sc.Markers)))

	return &Result{Specimen: s, Derived: d, Scene: sc}, nil
}

// RunAll processes specimens concurrently with at most jobs workers
// (GOMAXPROCS when jobs <= 0). Results keep the input order.
func RunAll(ctx context.Context, specimens []*balance.Specimen, opts Options, jobs int) ([]*Result, error) {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]*Result, len(specimens))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, s := range specimens {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := Run(s, opts)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
