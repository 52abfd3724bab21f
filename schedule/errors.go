package schedule

import "errors"

var (
	// ErrDurationTooShort indicates the duration is below the division-granularity floor.
	ErrDurationTooShort = errors.New("schedule: duration below minimum")

	// ErrDurationTooLong indicates the duration exceeds the representable maximum.
	ErrDurationTooLong = errors.New("schedule: duration above maximum")

	// ErrZeroDuration indicates a phase with zero duration.
	ErrZeroDuration = errors.New("schedule: zero phase duration")

	// ErrRateOverflow indicates a computed release rate exceeds the rate field width.
	ErrRateOverflow = errors.New("schedule: release rate overflows rate field")

	// ErrPriceOverflow indicates the price numerator exceeds the fixed-point bound.
	ErrPriceOverflow = errors.New("schedule: price numerator overflows fixed point")

	// ErrZeroDenominator indicates a zero price denominator.
	ErrZeroDenominator = errors.New("schedule: zero price denominator")

	// ErrInvalidSchedule indicates encoded schedule bytes are empty or misaligned.
	ErrInvalidSchedule = errors.New("schedule: invalid encoded schedule")

	// ErrNoPhases indicates a custom schedule with no phases.
	ErrNoPhases = errors.New("schedule: no phases")
)
