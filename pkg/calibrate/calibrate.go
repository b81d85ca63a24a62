package calibrate

import (
	"errors"
	"fmt"
	"math"

	"github.com/elata/goeeg/pkg/board"
)

// ErrInvalidProfile is returned when a board profile carries calibration
// parameters the conversion cannot use (non-positive gain, bad resolution).
var ErrInvalidProfile = errors.New("invalid calibration profile")

// RawToVoltage converts a signed ADC code to the electrode voltage.
//
// Codes are centered on the midpoint between the reference voltage and the
// analog supply rail; positive full scale lands at the reference, negative
// full scale at the rail, with the span divided by the programmable gain:
//
//	volts = vmid + (code / 2^(bits-1)) * (vref - avss) / (2 * gain)
//
// The conversion is pure and never clamps: invalid profiles are rejected.
func RawToVoltage(code int32, p board.Profile) (float64, error) {
	if err := validate(p); err != nil {
		return 0, err
	}
	fullScale := math.Exp2(float64(p.ResolutionBits - 1))
	return p.VMid() + (float64(code)/fullScale)*((p.VRef-p.AVSS)/(2*p.Gain)), nil
}

// SeriesToVoltage converts a whole series of ADC codes, preserving length and
// order. The profile is validated once for the series.
func SeriesToVoltage(codes []int32, p board.Profile) ([]float64, error) {
	if err := validate(p); err != nil {
		return nil, err
	}
	fullScale := math.Exp2(float64(p.ResolutionBits - 1))
	vmid := p.VMid()
	span := (p.VRef - p.AVSS) / (2 * p.Gain)

	volts := make([]float64, len(codes))
	for i, c := range codes {
		volts[i] = vmid + (float64(c)/fullScale)*span
	}
	return volts, nil
}

func validate(p board.Profile) error {
	if p.Gain <= 0 {
		return fmt.Errorf("%w: gain must be positive, got %v", ErrInvalidProfile, p.Gain)
	}
	if p.ResolutionBits < 2 {
		return fmt.Errorf("%w: resolution must be at least 2 bits, got %d", ErrInvalidProfile, p.ResolutionBits)
	}
	return nil
}
