// Package schedule encodes token-release curves into the packed step sequence
// consumed by the auction service.
//
// A schedule is an ordered run of steps. Each step packs a release rate and a
// duration into one fixed-width integer: the top 16 bits carry the rate in
// parts-per-million of the auctioned amount per second, the bottom 16 bits
// the duration in seconds. Wire form is big-endian, StepWidth bytes per step.
package schedule

import (
	"encoding/binary"
	"fmt"
)

const (
	// StepWidth is the wire size of one packed step in bytes.
	StepWidth = 4

	// FullScale is the release-rate basis: a schedule whose rates sum to
	// FullScale per total duration releases 100% of the auctioned amount.
	FullScale = 1_000_000

	// MinDuration is the division-granularity floor for generated schedules.
	MinDuration = 60

	// MaxDuration is the largest representable duration in seconds.
	MaxDuration = 1<<16 - 1

	// maxRate is the largest representable release rate.
	maxRate = 1<<16 - 1
)

// Step is one decoded schedule entry.
type Step struct {
	Rate     uint32 // parts-per-million of the auctioned amount per second
	Duration uint32 // seconds
}

// Phase is a caller-supplied slice of a custom release curve.
type Phase struct {
	ShareBps uint32 // fraction of the auctioned amount, in basis points
	Duration uint32 // seconds
}

// pack combines rate and duration into the 32-bit wire form.
func pack(rate, duration uint32) uint32 {
	return rate<<16 | duration
}

// EncodeSteps serializes steps into their big-endian wire form.
func EncodeSteps(steps []Step) []byte {
	buf := make([]byte, StepWidth*len(steps))
	for i, s := range steps {
		binary.BigEndian.PutUint32(buf[i*StepWidth:], pack(s.Rate, s.Duration))
	}
	return buf
}

// DecodeSteps parses big-endian wire bytes back into steps.
func DecodeSteps(data []byte) ([]Step, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidSchedule)
	}
	if len(data)%StepWidth != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of %d", ErrInvalidSchedule, len(data), StepWidth)
	}
	steps := make([]Step, len(data)/StepWidth)
	for i := range steps {
		packed := binary.BigEndian.Uint32(data[i*StepWidth:])
		steps[i] = Step{Rate: packed >> 16, Duration: packed & 0xFFFF}
	}
	return steps, nil
}

// Linear builds a single-step schedule releasing the full amount evenly over
// totalDuration seconds. The rate truncates down, so rate*duration may fall
// short of FullScale by up to one duration's worth of dust.
func Linear(totalDuration uint32) ([]byte, error) {
	if totalDuration < MinDuration {
		return nil, fmt.Errorf("%w: %ds < %ds", ErrDurationTooShort, totalDuration, MinDuration)
	}
	if totalDuration > MaxDuration {
		return nil, fmt.Errorf("%w: %ds > %ds", ErrDurationTooLong, totalDuration, MaxDuration)
	}
	rate := FullScale / totalDuration
	if rate > maxRate {
		return nil, fmt.Errorf("%w: rate %d", ErrRateOverflow, rate)
	}
	return EncodeSteps([]Step{{Rate: rate, Duration: totalDuration}}), nil
}

// acceleratingPhases fixes the accelerating curve: 20/30/50 of the duration
// releasing 10/30/60 of the amount.
var acceleratingPhases = []struct {
	durationPct uint32
	sharePpm    uint32
}{
	{20, 100_000},
	{30, 300_000},
	{50, 600_000},
}

// Accelerating builds a three-step schedule whose release rate increases
// phase over phase.
func Accelerating(totalDuration uint32) ([]byte, error) {
	if totalDuration < MinDuration {
		return nil, fmt.Errorf("%w: %ds < %ds", ErrDurationTooShort, totalDuration, MinDuration)
	}
	if totalDuration > MaxDuration {
		return nil, fmt.Errorf("%w: %ds > %ds", ErrDurationTooLong, totalDuration, MaxDuration)
	}

	steps := make([]Step, len(acceleratingPhases))
	var used uint32
	for i, p := range acceleratingPhases {
		duration := totalDuration * p.durationPct / 100
		if i == len(acceleratingPhases)-1 {
			// Last phase absorbs the rounding remainder.
			duration = totalDuration - used
		}
		if duration == 0 {
			return nil, fmt.Errorf("%w: phase %d", ErrZeroDuration, i)
		}
		used += duration

		rate := p.sharePpm / duration
		if rate > maxRate {
			return nil, fmt.Errorf("%w: phase %d rate %d", ErrRateOverflow, i, rate)
		}
		steps[i] = Step{Rate: rate, Duration: duration}
	}
	return EncodeSteps(steps), nil
}

// Custom builds a schedule from caller-supplied phases. Each phase is
// validated on its own; the fractions are deliberately not required to sum to
// 100%, so schedule sanity is the caller's responsibility.
func Custom(phases []Phase) ([]byte, error) {
	if len(phases) == 0 {
		return nil, ErrNoPhases
	}
	steps := make([]Step, len(phases))
	for i, p := range phases {
		if p.Duration == 0 {
			return nil, fmt.Errorf("%w: phase %d", ErrZeroDuration, i)
		}
		if p.Duration > MaxDuration {
			return nil, fmt.Errorf("%w: phase %d: %ds", ErrDurationTooLong, i, p.Duration)
		}
		// basis points -> parts per million
		rate := uint64(p.ShareBps) * 100 / uint64(p.Duration)
		if rate > maxRate {
			return nil, fmt.Errorf("%w: phase %d rate %d", ErrRateOverflow, i, rate)
		}
		steps[i] = Step{Rate: uint32(rate), Duration: p.Duration}
	}
	return EncodeSteps(steps), nil
}
