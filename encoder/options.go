package encoder

import "fmt"

// Default option values (spec §6's configuration keys).
const (
	DefaultMinFreq             = 0.0
	DefaultPossibleStates      = false
	DefaultPossibleTransitions = false
	DefaultMaxSegLen           = -1 // unbounded
	DefaultMaxOrder            = 1
	DefaultConcurrency         = 1 // sequential, matching spec §5's single-threaded default
)

// Options carries the five feature-generation config keys of spec §6 plus
// the ambient Concurrency knob governing ObjectiveAndGradientsBatch's
// fan-out (spec §4.3's documented concurrency exception).
type Options struct {
	MinFreq             float64
	PossibleStates      bool
	PossibleTransitions bool
	MaxSegLen           int // semi-Markov only
	MaxOrder            int // semi-Markov only
	Concurrency         int
}

// defaultOptions returns the documented defaults.
func defaultOptions() Options {
	return Options{
		MinFreq:             DefaultMinFreq,
		PossibleStates:      DefaultPossibleStates,
		PossibleTransitions: DefaultPossibleTransitions,
		MaxSegLen:           DefaultMaxSegLen,
		MaxOrder:            DefaultMaxOrder,
		Concurrency:         DefaultConcurrency,
	}
}

// Option mutates an Options in place, returning ErrInvalidConfig on a
// nonsensical value. Unlike the teacher's builder/matrix options (which
// panic on bad internal values), these come from an outer optimizer/CLI,
// so they fail by returned error — matching spec §7's InvalidConfig kind
// ("fail option-exchange; no side effects").
type Option func(*Options) error

// WithMinFreq sets feature.minfreq: features with observed_freq below this
// threshold are dropped at generation time.
func WithMinFreq(v float64) Option {
	return func(o *Options) error {
		if v < 0 {
			return fmt.Errorf("encoder.WithMinFreq(%v): %w", v, ErrInvalidConfig)
		}
		o.MinFreq = v

		return nil
	}
}

// WithPossibleStates sets feature.possible_states: when true, the default
// generator emits a state feature for every (attribute, label) pair seen
// in the training set, rather than only pairs that actually co-occurred.
func WithPossibleStates(b bool) Option {
	return func(o *Options) error {
		o.PossibleStates = b

		return nil
	}
}

// WithPossibleTransitions sets feature.possible_transitions, the
// transition-feature analogue of WithPossibleStates.
func WithPossibleTransitions(b bool) Option {
	return func(o *Options) error {
		o.PossibleTransitions = b

		return nil
	}
}

// WithMaxSegLen sets feature.max_seg_len (semi-Markov only): the longest
// label segment admitted, or -1 for unbounded within the instance.
func WithMaxSegLen(n int) Option {
	return func(o *Options) error {
		if n != -1 && n < 1 {
			return fmt.Errorf("encoder.WithMaxSegLen(%d): %w", n, ErrInvalidConfig)
		}
		o.MaxSegLen = n

		return nil
	}
}

// WithMaxOrder sets feature.max_order (semi-Markov only): the label-suffix
// memory width.
func WithMaxOrder(n int) Option {
	return func(o *Options) error {
		if n < 1 {
			return fmt.Errorf("encoder.WithMaxOrder(%d): %w", n, ErrInvalidConfig)
		}
		o.MaxOrder = n

		return nil
	}
}

// WithConcurrency sets the worker count ObjectiveAndGradientsBatch uses to
// fan out across instances. 1 (the default) runs sequentially.
func WithConcurrency(n int) Option {
	return func(o *Options) error {
		if n < 1 {
			return fmt.Errorf("encoder.WithConcurrency(%d): %w", n, ErrInvalidConfig)
		}
		o.Concurrency = n

		return nil
	}
}

// apply runs opts against o in order, stopping at the first error. On
// error o is left exactly as it was on entry — no partial application —
// matching InvalidConfig's "no side effects" disposition.
func (o *Options) apply(opts ...Option) error {
	working := *o
	for _, opt := range opts {
		if err := opt(&working); err != nil {
			return err
		}
	}
	*o = working

	return nil
}
