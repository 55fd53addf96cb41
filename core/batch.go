package core

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DecodeStreams decodes every stream through its own Access, running up to
// WithConcurrency decodes at once. The result at index i belongs to
// streams[i] and is nil when that stream failed. Failures do not stop the
// other decodes; they are combined into the returned error. Streams must not
// be mutated while DecodeStreams runs.
func DecodeStreams(ctx context.Context, streams []Stream, opts ...Option) ([][]byte, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	out := make([][]byte, len(streams))
	var (
		mu   sync.Mutex
		errs error
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)
	for i := range streams {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := decodeOne(streams[i], opts)
			if err != nil {
				cfg.Logger.Debug("stream decode failed", zap.Int("stream", i), zap.Error(err))
				mu.Lock()
				errs = multierr.Append(errs, fmt.Errorf("stream %d: %w", i, err))
				mu.Unlock()
				return nil
			}
			out[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		errs = multierr.Append(errs, err)
	}
	return out, errs
}

func decodeOne(s Stream, opts []Option) ([]byte, error) {
	acc, err := NewAccess(s.Allocator(), opts...)
	if err != nil {
		return nil, err
	}
	if err := acc.Attach(s, DecodeAll); err != nil {
		return nil, err
	}
	defer acc.Detach()
	return append([]byte(nil), acc.Data()...), nil
}
