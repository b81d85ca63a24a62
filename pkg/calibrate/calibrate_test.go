package calibrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elata/goeeg/pkg/acquire"
	"github.com/elata/goeeg/pkg/board"
)

func ads1299(t *testing.T) board.Profile {
	t.Helper()
	p, err := board.Lookup("boardAds1299")
	require.NoError(t, err)
	return p
}

func TestRawToVoltage(t *testing.T) {
	p := ads1299(t)

	tests := []struct {
		name      string
		code      int32
		wantVolts float64
	}{
		{"zero code is the midpoint", 0, 2.25},
		{"positive full scale reaches the reference", 1<<23 - 1, 4.5},
		{"negative full scale reaches the rail", -(1 << 23), 0.0},
		{"half of positive range", 1 << 22, 3.375},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RawToVoltage(tt.code, p)
			require.NoError(t, err)
			// Full scale is off the ideal endpoint by at most one code width.
			assert.InDelta(t, tt.wantVolts, got, 1e-6)
		})
	}
}

func TestRawToVoltage_GainScalesSpan(t *testing.T) {
	p := ads1299(t)
	p.Gain = 24

	// Gain 24 shrinks the half-rail span by 24x around the same midpoint.
	got, err := RawToVoltage(1<<23-1, p)
	require.NoError(t, err)
	assert.InDelta(t, 2.25+2.25/24, got, 1e-6)

	mid, err := RawToVoltage(0, p)
	require.NoError(t, err)
	assert.Equal(t, 2.25, mid)
}

func TestRawToVoltage_InvalidProfile(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*board.Profile)
	}{
		{"zero gain", func(p *board.Profile) { p.Gain = 0 }},
		{"negative gain", func(p *board.Profile) { p.Gain = -1 }},
		{"bad resolution", func(p *board.Profile) { p.ResolutionBits = 1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ads1299(t)
			tt.mutate(&p)
			_, err := RawToVoltage(0, p)
			assert.ErrorIs(t, err, ErrInvalidProfile)
		})
	}
}

func TestSeriesToVoltage(t *testing.T) {
	p := ads1299(t)

	codes := []int32{0, 1<<23 - 1, -(1 << 23), 1 << 22}
	volts, err := SeriesToVoltage(codes, p)
	require.NoError(t, err)
	require.Len(t, volts, len(codes))

	// Matches the scalar conversion element by element.
	for i, c := range codes {
		want, err := RawToVoltage(c, p)
		require.NoError(t, err)
		assert.Equal(t, want, volts[i], "code %d", c)
	}
}

func TestSeriesToVoltage_Empty(t *testing.T) {
	volts, err := SeriesToVoltage(nil, ads1299(t))
	require.NoError(t, err)
	assert.Empty(t, volts)
}

func TestNewConverter_InvalidProfile(t *testing.T) {
	p := ads1299(t)
	p.Gain = 0

	conv, err := NewConverter(p, 10)
	assert.ErrorIs(t, err, ErrInvalidProfile)
	assert.Nil(t, conv)
}

func TestConverter_ConvertsFrames(t *testing.T) {
	p := ads1299(t)
	conv, err := NewConverter(p, 10)
	require.NoError(t, err)

	in := make(chan acquire.RawFrame, 2)
	in <- acquire.RawFrame{TimestampMicros: 1_000_000, Codes: []int32{0, 1<<23 - 1}}
	in <- acquire.RawFrame{TimestampMicros: 1_004_000, Codes: []int32{-(1 << 23), 0}}
	close(in)

	out := conv(in)

	first, ok := <-out
	require.True(t, ok)
	assert.Equal(t, int64(1_000_000), first.Timestamp.UnixMicro())
	require.Len(t, first.Volts, 2)
	assert.InDelta(t, 2.25, first.Volts[0], 1e-6)
	assert.InDelta(t, 4.5, first.Volts[1], 1e-6)

	second, ok := <-out
	require.True(t, ok)
	assert.InDelta(t, 0.0, second.Volts[0], 1e-6)

	_, ok = <-out
	assert.False(t, ok, "output closes after input drains")
}
