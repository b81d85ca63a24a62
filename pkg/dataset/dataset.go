// Package dataset holds recorded EEG tables: a microsecond timestamp column
// plus one raw ADC code column per channel, read and written as CSV. The
// calibration step appends zero-based seconds and per-channel voltage columns.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/elata/goeeg/pkg/board"
	"github.com/elata/goeeg/pkg/calibrate"
)

const (
	timestampColumn = "timestamp"
	rawSuffix       = "_raw_sample"
	voltageSuffix   = "_raw_voltage"
	timeColumn      = "time_sec"
)

var (
	// ErrInvalidTable is returned for tables that violate the recording
	// contract: missing columns, ragged rows, or decreasing timestamps.
	ErrInvalidTable = errors.New("invalid dataset table")
)

// Table is a recorded dataset. Timestamps are unix microseconds; Codes holds
// one raw series per channel, all the same length as Timestamps. TimeSec and
// Volts stay nil until AddTimeAndVoltage fills them.
type Table struct {
	Timestamps []int64
	Channels   []string // channel names in recorded column order
	Codes      map[string][]int32

	TimeSec []float64
	Volts   map[string][]float64
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Timestamps)
}

// ReadCSV parses a recorded table. The header must carry a timestamp column
// followed by one or more <channel>_raw_sample columns.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	if len(header) < 2 || header[0] != timestampColumn {
		return nil, fmt.Errorf("%w: header must start with %q and carry at least one channel", ErrInvalidTable, timestampColumn)
	}

	channels := make([]string, 0, len(header)-1)
	for _, col := range header[1:] {
		name, ok := strings.CutSuffix(col, rawSuffix)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: column %q is not a %s column", ErrInvalidTable, col, rawSuffix)
		}
		channels = append(channels, name)
	}

	t := &Table{
		Channels: channels,
		Codes:    make(map[string][]int32, len(channels)),
	}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row: %w", err)
		}

		ts, err := strconv.ParseInt(record[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad timestamp %q: %v", ErrInvalidTable, record[0], err)
		}
		t.Timestamps = append(t.Timestamps, ts)

		for i, ch := range channels {
			code, err := strconv.ParseInt(record[i+1], 10, 32)
			if err != nil {
				return nil, fmt.Errorf("%w: bad code %q in channel %s: %v", ErrInvalidTable, record[i+1], ch, err)
			}
			t.Codes[ch] = append(t.Codes[ch], int32(code))
		}
	}

	return t, nil
}

// WriteCSV writes the table back out: timestamp, raw columns, then time_sec
// and voltage columns when present.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	withDerived := t.TimeSec != nil
	header := []string{timestampColumn}
	for _, ch := range t.Channels {
		header = append(header, ch+rawSuffix)
	}
	if withDerived {
		header = append(header, timeColumn)
		for _, ch := range t.Channels {
			header = append(header, ch+voltageSuffix)
		}
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for i := range t.Timestamps {
		row := []string{strconv.FormatInt(t.Timestamps[i], 10)}
		for _, ch := range t.Channels {
			row = append(row, strconv.FormatInt(int64(t.Codes[ch][i]), 10))
		}
		if withDerived {
			row = append(row, strconv.FormatFloat(t.TimeSec[i], 'g', -1, 64))
			for _, ch := range t.Channels {
				row = append(row, strconv.FormatFloat(t.Volts[ch][i], 'g', -1, 64))
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// AddTimeAndVoltage derives the time_sec and per-channel voltage columns.
//
// The board profile comes from the recording identifier. The first timestamp
// defines time zero; timestamps must be non-decreasing. Existing derived
// columns are recomputed.
func (t *Table) AddTimeAndVoltage(recordingID string) (board.Profile, error) {
	p, err := board.ParseRecordingID(recordingID)
	if err != nil {
		return board.Profile{}, err
	}

	if t.Len() == 0 {
		return board.Profile{}, fmt.Errorf("%w: empty table", ErrInvalidTable)
	}
	for i := 1; i < len(t.Timestamps); i++ {
		if t.Timestamps[i] < t.Timestamps[i-1] {
			return board.Profile{}, fmt.Errorf("%w: timestamp decreases at row %d", ErrInvalidTable, i)
		}
	}

	t0 := t.Timestamps[0]
	t.TimeSec = make([]float64, t.Len())
	for i, ts := range t.Timestamps {
		t.TimeSec[i] = float64(ts-t0) / 1e6
	}

	t.Volts = make(map[string][]float64, len(t.Channels))
	for _, ch := range t.Channels {
		volts, err := calibrate.SeriesToVoltage(t.Codes[ch], p)
		if err != nil {
			return board.Profile{}, err
		}
		t.Volts[ch] = volts
	}

	return p, nil
}
