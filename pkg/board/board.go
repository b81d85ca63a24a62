package board

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrMalformedIdentifier is returned when a recording identifier does not
	// follow the {...}_{...}_gain{G}_{board}_{...} naming convention.
	ErrMalformedIdentifier = errors.New("malformed recording identifier")
	// ErrUnsupportedBoard is returned when a recording names a board that has
	// no registered profile.
	ErrUnsupportedBoard = errors.New("unsupported board")
)

// Profile describes the analog front end a recording was captured with.
// Profiles are immutable; parse once per dataset and treat as read-only.
type Profile struct {
	Board          string  // Board identifier (e.g. "boardAds1299")
	VRef           float64 // Reference voltage (V)
	AVSS           float64 // Analog supply rail (V)
	Gain           float64 // Programmable gain
	SampleRate     float64 // Sample rate (Hz)
	ResolutionBits int     // Signed ADC bit width
}

// VMid returns the midpoint voltage between the reference and the supply rail.
func (p Profile) VMid() float64 {
	return (p.VRef + p.AVSS) / 2
}

// Nyquist returns half the sample rate.
func (p Profile) Nyquist() float64 {
	return p.SampleRate / 2
}

// profiles is the closed set of known boards. Every entry must state its
// resolution explicitly; unknown boards are rejected, never defaulted.
var profiles = map[string]Profile{
	"boardAds1299": {
		Board:          "boardAds1299",
		VRef:           4.5,
		AVSS:           0,
		Gain:           1,
		SampleRate:     250,
		ResolutionBits: 24,
	},
}

// Lookup returns the profile registered for the given board identifier.
func Lookup(boardID string) (Profile, error) {
	p, ok := profiles[boardID]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnsupportedBoard, boardID)
	}
	return p, nil
}

// Boards returns the identifiers of all registered boards.
func Boards() []string {
	ids := make([]string, 0, len(profiles))
	for id := range profiles {
		ids = append(ids, id)
	}
	return ids
}

const gainPrefix = "gain"

// ParseRecordingID extracts the board profile from a recording identifier.
//
// Identifiers follow a fixed positional convention with underscore-separated
// tokens: {...}_{...}_gain{G}_{board}_{...}. Token 2 carries the gain, token 3
// the board name. The convention is a strict external contract: missing or
// unparseable tokens return ErrMalformedIdentifier, an unregistered board
// returns ErrUnsupportedBoard. The returned profile carries the recording's
// gain in place of the board default.
func ParseRecordingID(id string) (Profile, error) {
	tokens := strings.Split(id, "_")
	if len(tokens) < 4 {
		return Profile{}, fmt.Errorf("%w: %q has %d tokens, need at least 4", ErrMalformedIdentifier, id, len(tokens))
	}

	gainTok := tokens[2]
	if !strings.HasPrefix(gainTok, gainPrefix) || len(gainTok) == len(gainPrefix) {
		return Profile{}, fmt.Errorf("%w: token %q does not carry a gain value", ErrMalformedIdentifier, gainTok)
	}
	gain, err := strconv.ParseFloat(gainTok[len(gainPrefix):], 64)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: gain token %q: %v", ErrMalformedIdentifier, gainTok, err)
	}
	if gain <= 0 {
		return Profile{}, fmt.Errorf("%w: gain must be positive, got %v", ErrMalformedIdentifier, gain)
	}

	boardTok := tokens[3]
	if boardTok == "" {
		return Profile{}, fmt.Errorf("%w: empty board token", ErrMalformedIdentifier)
	}

	p, err := Lookup(boardTok)
	if err != nil {
		return Profile{}, err
	}
	p.Gain = gain
	return p, nil
}
