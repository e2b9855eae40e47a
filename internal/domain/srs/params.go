package srs

import (
	"errors"
	"fmt"
)

// WeightCount is the number of positional model weights.
const WeightCount = 19

// DefaultWeights are the published FSRS-5 default weights. Formulas index into
// this table positionally, so the order must not change.
var DefaultWeights = [WeightCount]float64{
	0.4072,  // w0: initial stability for Again
	1.1829,  // w1: initial stability for Hard
	3.1262,  // w2: initial stability for Good
	15.4722, // w3: initial stability for Easy
	7.2102,  // w4: initial difficulty weight
	0.5316,  // w5: stability decay exponent
	1.0651,  // w6: stability increase factor
	0.0046,  // w7: difficulty step
	1.5418,  // w8
	0.1618,  // w9
	1.0,     // w10: Hard multiplier
	1.9395,  // w11: Easy multiplier
	0.1,     // w12: stability multiplier after a lapse
	0.3,     // w13: stability exponent after a lapse
	2.2698,  // w14: retrievability growth factor
	0.2315,  // w15
	2.9898,  // w16
	0.5148,  // w17
	0.6881,  // w18
}

// Default tunables.
const (
	DefaultTargetRetention = 0.9
	DefaultMaxIntervalDays = 36500

	// maxSupportedIntervalDays keeps now+interval inside time.Duration range.
	maxSupportedIntervalDays = 100000
)

// Parameter validation errors
var (
	ErrInvalidRetention   = errors.New("target retention must be between 0 and 1 (exclusive)")
	ErrInvalidMaxInterval = errors.New("maximum interval must be positive and at most 100000 days")
)

// Params defines all configurable parameters for the memory model.
type Params struct {
	// Weights is the positional FSRS weight vector.
	Weights [WeightCount]float64

	// TargetRetention is the recall probability at which a review is scheduled.
	TargetRetention float64

	// MaxIntervalDays caps every computed interval.
	MaxIntervalDays float64
}

// ParamsConfig allows overriding the default tunables when creating a new Params instance.
// Zero values keep the defaults.
type ParamsConfig struct {
	TargetRetention float64
	MaxIntervalDays int
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		Weights:         DefaultWeights,
		TargetRetention: DefaultTargetRetention,
		MaxIntervalDays: DefaultMaxIntervalDays,
	}
}

// NewParams creates a new Params instance with custom configuration
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.TargetRetention != 0 {
		params.TargetRetention = config.TargetRetention
	}
	if config.MaxIntervalDays != 0 {
		params.MaxIntervalDays = float64(config.MaxIntervalDays)
	}

	return params
}

// Validate checks that the tunables are usable by the memory model.
func (p *Params) Validate() error {
	if p.TargetRetention <= 0 || p.TargetRetention >= 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidRetention, p.TargetRetention)
	}
	if p.MaxIntervalDays <= 0 || p.MaxIntervalDays > maxSupportedIntervalDays {
		return fmt.Errorf("%w: got %v", ErrInvalidMaxInterval, p.MaxIntervalDays)
	}
	return nil
}
