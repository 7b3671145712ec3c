package store

import (
	"math"
	"time"
)

const (
	// DefaultMinutesPerParty is assumed when no seating history exists yet.
	DefaultMinutesPerParty = 10
	// MinimumWaitMinutes floors every estimate.
	MinimumWaitMinutes = 5
	// SeatedSampleLimit caps how much history feeds the average.
	SeatedSampleLimit = 10
)

// EstimateWait projects the wait for a queue position from recent seating
// durations. Every position ahead is assumed to take the average historical
// seating time, so this is a deliberately rough linear estimate, not a model
// of parallel table turnover.
func EstimateWait(samples []time.Duration, position int) int {
	if position < 1 {
		position = 1
	}
	perParty := float64(DefaultMinutesPerParty)
	if len(samples) > 0 {
		var total time.Duration
		for _, sample := range samples {
			total += sample
		}
		perParty = total.Minutes() / float64(len(samples))
	}
	estimate := int(math.Round(perParty * float64(position)))
	if estimate < MinimumWaitMinutes {
		return MinimumWaitMinutes
	}
	return estimate
}
