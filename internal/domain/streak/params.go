package streak

import "time"

// Params defines the configurable parameters of the streak algorithm.
type Params struct {
	// Location determines where calendar days begin and end.
	Location *time.Location

	// StreakGraceDays is the number of whole elapsed days since the last
	// completion that rollover tolerates before zeroing the current streak.
	StreakGraceDays int
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance
type ParamsConfig struct {
	Location        *time.Location
	StreakGraceDays int
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		Location:        time.Local,
		StreakGraceDays: 1,
	}
}

// NewParams creates a new Params instance with custom configuration
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.Location != nil {
		params.Location = config.Location
	}
	if config.StreakGraceDays > 0 {
		params.StreakGraceDays = config.StreakGraceDays
	}

	return params
}
