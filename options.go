package pcdgo

import "github.com/hupe1980/pcdgo/header"

type options struct {
	logger      *Logger
	zeroCopy    bool
	parallelism int
}

func defaultOptions() options {
	return options{
		logger:   NoopLogger(),
		zeroCopy: true,
	}
}

// Option configures reading behavior.
type Option func(*options)

// WithLogger sets the logger used for decode diagnostics.
// If nil is passed, logging stays disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithoutZeroCopy forces every column to be an owned copy, even when the
// layout would permit a view into mapped memory. Use it when decoded
// columns must outlive the mapping and an explicit Detach is inconvenient.
func WithoutZeroCopy() Option {
	return func(o *options) {
		o.zeroCopy = false
	}
}

// WithParallelism bounds the per-field fan-out of the binary decoder.
// Values below 1 select runtime.GOMAXPROCS(0); 1 disables parallel decode.
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}

type writeOptions struct {
	version   string
	viewpoint [7]float64
	width     uint32
	height    uint32
	dims      bool
}

func defaultWriteOptions() writeOptions {
	return writeOptions{
		version:   "0.7",
		viewpoint: header.Identity,
	}
}

// WriteOption configures writing behavior.
type WriteOption func(*writeOptions)

// WithViewpoint records the sensor pose (tx ty tz qw qx qy qz) in the
// header instead of the identity default.
func WithViewpoint(vp [7]float64) WriteOption {
	return func(o *writeOptions) {
		o.viewpoint = vp
	}
}

// WithDimensions writes an organized cloud of width x height points instead
// of the default unorganized width=points, height=1. The product must match
// the block's point count.
func WithDimensions(width, height uint32) WriteOption {
	return func(o *writeOptions) {
		o.width = width
		o.height = height
		o.dims = true
	}
}

// WithVersion overrides the VERSION header value (default "0.7").
func WithVersion(v string) WriteOption {
	return func(o *writeOptions) {
		o.version = v
	}
}
