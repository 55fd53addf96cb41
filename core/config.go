package core

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tsawler/pdfgraph/internal/filters"
)

// config holds the settings shared by Access and DecodeStreams.
type config struct {
	Logger          *zap.Logger        `validate:"required"`
	Registry        *filters.Registry  `validate:"required"`
	Strict          bool
	MaxDecodedSize  int64 `validate:"min=0"`
	MaxResolveDepth int   `validate:"min=1,max=4096"`
	Concurrency     int   `validate:"min=1,max=256"`
}

func defaultConfig() config {
	return config{
		Logger:          zap.NewNop(),
		Registry:        filters.DefaultRegistry(),
		MaxResolveDepth: DefaultMaxResolveDepth,
		Concurrency:     4,
	}
}

var validate = validator.New()

func newConfig(opts []Option) (config, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := validate.Struct(cfg); err != nil {
		return cfg, fmt.Errorf("core: invalid options: %w", err)
	}
	return cfg, nil
}

// Option configures stream decoding.
type Option func(*config)

// WithLogger sets the logger. Stages are logged at Debug, recovered
// corrupt data at Warn.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		c.Logger = l
	}
}

// WithStrict makes corrupt filter data fail the decode. By default the
// output recovered before the corruption is kept.
func WithStrict(strict bool) Option {
	return func(c *config) {
		c.Strict = strict
	}
}

// WithMaxDecodedSize caps the output of every filter stage. Zero means
// unlimited.
func WithMaxDecodedSize(n int64) Option {
	return func(c *config) {
		c.MaxDecodedSize = n
	}
}

// WithRegistry sets the filters available to a decode.
func WithRegistry(r *filters.Registry) Option {
	return func(c *config) {
		c.Registry = r
	}
}

// WithMaxResolveDepth bounds the reference hops taken while reading the
// stream dictionary (default: DefaultMaxResolveDepth).
func WithMaxResolveDepth(n int) Option {
	return func(c *config) {
		c.MaxResolveDepth = n
	}
}

// WithConcurrency sets how many streams DecodeStreams decodes at once
// (default: 4).
func WithConcurrency(n int) Option {
	return func(c *config) {
		c.Concurrency = n
	}
}
