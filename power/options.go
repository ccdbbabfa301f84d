// Package power: functional run options.
//
// Options follow the library's usual pattern: DefaultOptions gives sane
// zero-config behavior, WithX constructors tweak one knob each, and nil or
// nonsensical values are ignored rather than breaking the run.
package power

import (
	"github.com/trialforge/crtpower/fit"
	"github.com/trialforge/crtpower/progress"
)

// Options holds execution knobs for Run. The statistical request itself
// lives entirely in config.Config; Options never changes the estimate,
// only how it is computed and observed.
type Options struct {
	// Workers is the replicate worker count; 1 means sequential.
	Workers int

	// Reporter receives lifecycle notifications. Default: progress.Nop.
	Reporter progress.Reporter

	// ProgressEvery calls Reporter.Step every N completed replicates
	// (the first completion always reports, carrying the ETA). 0
	// disables periodic steps.
	ProgressEvery int

	// OnReplicate is invoked after every iteration with its index and
	// result or error. Calls are serialized. Default: no-op.
	OnReplicate func(index int, res fit.Result, err error)

	// Model overrides the default fitting engine; nil selects the
	// built-in engine for the configured method and family.
	Model fit.Model
}

// Option configures Run via functional arguments.
type Option func(*Options)

// DefaultOptions returns sequential execution with silent progress.
func DefaultOptions() Options {
	return Options{
		Workers:       1,
		Reporter:      progress.Nop{},
		ProgressEvery: 100,
		OnReplicate:   func(int, fit.Result, error) {},
	}
}

// WithWorkers sets the worker-pool size; values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(o *Options) {
		if n >= 1 {
			o.Workers = n
		}
	}
}

// WithReporter installs a progress reporter.
func WithReporter(r progress.Reporter) Option {
	return func(o *Options) {
		if r != nil {
			o.Reporter = r
		}
	}
}

// WithProgressEvery sets the periodic reporting stride; negative values
// are ignored.
func WithProgressEvery(n int) Option {
	return func(o *Options) {
		if n >= 0 {
			o.ProgressEvery = n
		}
	}
}

// WithOnReplicate registers a per-iteration callback.
func WithOnReplicate(fn func(index int, res fit.Result, err error)) Option {
	return func(o *Options) {
		if fn != nil {
			o.OnReplicate = fn
		}
	}
}

// WithModel overrides the fitting engine.
func WithModel(m fit.Model) Option {
	return func(o *Options) {
		if m != nil {
			o.Model = m
		}
	}
}
