package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecordingID(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		wantErr  error
		wantGain float64
	}{
		{
			name:     "valid identifier",
			id:       "session1_rest_gain1_boardAds1299_20240110",
			wantGain: 1,
		},
		{
			name:     "valid identifier with fractional gain",
			id:       "subj02_eyesclosed_gain24_boardAds1299_trial3",
			wantGain: 24,
		},
		{
			name:    "too few tokens",
			id:      "session1_gain1_boardAds1299",
			wantErr: ErrMalformedIdentifier,
		},
		{
			name:    "missing gain token",
			id:      "session1_rest_g1_boardAds1299_20240110",
			wantErr: ErrMalformedIdentifier,
		},
		{
			name:    "gain token without value",
			id:      "session1_rest_gain_boardAds1299_20240110",
			wantErr: ErrMalformedIdentifier,
		},
		{
			name:    "gain not a number",
			id:      "session1_rest_gainX_boardAds1299_20240110",
			wantErr: ErrMalformedIdentifier,
		},
		{
			name:    "non-positive gain",
			id:      "session1_rest_gain0_boardAds1299_20240110",
			wantErr: ErrMalformedIdentifier,
		},
		{
			name:    "unknown board",
			id:      "session1_rest_gain1_boardUnobtainium_20240110",
			wantErr: ErrUnsupportedBoard,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseRecordingID(tt.id)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "boardAds1299", p.Board)
			assert.Equal(t, tt.wantGain, p.Gain)
			assert.Equal(t, 4.5, p.VRef)
			assert.Equal(t, 0.0, p.AVSS)
			assert.Equal(t, 24, p.ResolutionBits)
			assert.Equal(t, 250.0, p.SampleRate)
		})
	}
}

func TestLookupUnknownBoard(t *testing.T) {
	_, err := Lookup("boardNope")
	assert.ErrorIs(t, err, ErrUnsupportedBoard)
}

func TestProfileDerived(t *testing.T) {
	p, err := Lookup("boardAds1299")
	require.NoError(t, err)
	assert.InDelta(t, 2.25, p.VMid(), 1e-12)
	assert.InDelta(t, 125.0, p.Nyquist(), 1e-12)
}
