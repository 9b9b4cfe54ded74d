// Package servo converts hobby servo angles to PWM duty values and back.
//
// All arithmetic is unsigned integer with truncating division, multiplying
// before dividing. Results are therefore approximate at the fractional
// boundaries and a round trip angle -> duty -> angle may lose a degree or two.
package servo

const (
	// FrequencyHz is the standard servo refresh rate.
	FrequencyHz = 50

	// MinPulseUS is the pulse width for 0 degrees, in microseconds.
	MinPulseUS uint32 = 500
	// MaxPulseUS is the pulse width for 180 degrees, in microseconds.
	MaxPulseUS uint32 = 2500
	// PeriodUS is the length of one 50Hz cycle, in microseconds.
	PeriodUS uint32 = 20000

	// MaxAngle is the largest commandable angle; anything above is clamped.
	MaxAngle uint32 = 180

	pulseRange = MaxPulseUS - MinPulseUS
)

// AngleToPulse returns the HIGH time in microseconds for angle.
func AngleToPulse(angle uint32) uint32 {
	if angle > MaxAngle {
		angle = MaxAngle
	}
	return MinPulseUS + angle*pulseRange/MaxAngle
}

// AngleToDuty converts angle to a duty value for a timer whose full scale
// is maxDuty ticks. The result never exceeds maxDuty.
func AngleToDuty(angle, maxDuty uint32) uint32 {
	pulse := uint64(AngleToPulse(angle))
	duty := pulse * uint64(maxDuty) / uint64(PeriodUS)
	if duty > uint64(maxDuty) {
		return maxDuty
	}
	return uint32(duty)
}

// DutyToAngle is the inverse of AngleToDuty, used for diagnostics.
func DutyToAngle(duty, maxDuty uint32) uint32 {
	if maxDuty == 0 {
		return 0
	}
	pulse := uint64(duty) * uint64(PeriodUS) / uint64(maxDuty)
	switch {
	case pulse <= uint64(MinPulseUS):
		return 0
	case pulse >= uint64(MaxPulseUS):
		return MaxAngle
	}
	return uint32((pulse - uint64(MinPulseUS)) * uint64(MaxAngle) / uint64(pulseRange))
}

// Operation is one servo's pending move: the angle to reach on a timer
// with the given resolution.
type Operation struct {
	Name    string
	Angle   uint32
	MaxDuty uint32
}

// Duty returns the duty value for the operation.
func (op Operation) Duty() uint32 {
	return AngleToDuty(op.Angle, op.MaxDuty)
}
