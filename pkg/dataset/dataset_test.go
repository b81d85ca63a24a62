package dataset

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elata/goeeg/pkg/board"
)

const sampleCSV = `timestamp,ch0_raw_sample,ch1_raw_sample
1000000,0,4194304
1004000,8388607,0
1008000,-8388608,-100
`

func TestReadCSV(t *testing.T) {
	table, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, 3, table.Len())
	assert.Equal(t, []string{"ch0", "ch1"}, table.Channels)
	assert.Equal(t, []int64{1000000, 1004000, 1008000}, table.Timestamps)
	assert.Equal(t, []int32{0, 8388607, -8388608}, table.Codes["ch0"])
	assert.Equal(t, []int32{4194304, 0, -100}, table.Codes["ch1"])
	assert.Nil(t, table.TimeSec)
	assert.Nil(t, table.Volts)
}

func TestReadCSV_Invalid(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{"missing timestamp column", "time,ch0_raw_sample\n1,2\n"},
		{"no channel columns", "timestamp\n1\n"},
		{"column without raw suffix", "timestamp,ch0_filtered\n1,2\n"},
		{"bad timestamp", "timestamp,ch0_raw_sample\nabc,2\n"},
		{"bad code", "timestamp,ch0_raw_sample\n1,xyz\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.csv))
			assert.ErrorIs(t, err, ErrInvalidTable)
		})
	}
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	table, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, table.WriteCSV(&buf))

	again, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, table.Timestamps, again.Timestamps)
	assert.Equal(t, table.Channels, again.Channels)
	assert.Equal(t, table.Codes, again.Codes)
}

func TestAddTimeAndVoltage(t *testing.T) {
	table, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	p, err := table.AddTimeAndVoltage("subj01_rest_gain1_boardAds1299_session2")
	require.NoError(t, err)
	assert.Equal(t, "boardAds1299", p.Board)
	assert.Equal(t, 1.0, p.Gain)

	// time_sec is zero-based seconds from the first timestamp.
	require.Len(t, table.TimeSec, 3)
	assert.Equal(t, 0.0, table.TimeSec[0])
	assert.InDelta(t, 0.004, table.TimeSec[1], 1e-12)
	assert.InDelta(t, 0.008, table.TimeSec[2], 1e-12)

	// Voltage columns follow the board calibration.
	require.Len(t, table.Volts["ch0"], 3)
	assert.InDelta(t, 2.25, table.Volts["ch0"][0], 1e-6)
	assert.InDelta(t, 4.5, table.Volts["ch0"][1], 1e-6)
	assert.InDelta(t, 0.0, table.Volts["ch0"][2], 1e-6)
}

func TestAddTimeAndVoltage_Errors(t *testing.T) {
	t.Run("malformed identifier", func(t *testing.T) {
		table, err := ReadCSV(strings.NewReader(sampleCSV))
		require.NoError(t, err)
		_, err = table.AddTimeAndVoltage("nounderscores")
		assert.ErrorIs(t, err, board.ErrMalformedIdentifier)
	})

	t.Run("unsupported board", func(t *testing.T) {
		table, err := ReadCSV(strings.NewReader(sampleCSV))
		require.NoError(t, err)
		_, err = table.AddTimeAndVoltage("subj01_rest_gain1_boardUnknown_x")
		assert.ErrorIs(t, err, board.ErrUnsupportedBoard)
	})

	t.Run("decreasing timestamps", func(t *testing.T) {
		table, err := ReadCSV(strings.NewReader("timestamp,ch0_raw_sample\n2000,0\n1000,0\n"))
		require.NoError(t, err)
		_, err = table.AddTimeAndVoltage("subj01_rest_gain1_boardAds1299_x")
		assert.ErrorIs(t, err, ErrInvalidTable)
	})

	t.Run("empty table", func(t *testing.T) {
		table := &Table{Channels: []string{"ch0"}, Codes: map[string][]int32{"ch0": nil}}
		_, err := table.AddTimeAndVoltage("subj01_rest_gain1_boardAds1299_x")
		assert.ErrorIs(t, err, ErrInvalidTable)
	})
}

func TestWriteCSV_IncludesDerivedColumns(t *testing.T) {
	table, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	_, err = table.AddTimeAndVoltage("subj01_rest_gain1_boardAds1299_x")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, table.WriteCSV(&buf))

	header := strings.SplitN(buf.String(), "\n", 2)[0]
	assert.Equal(t, "timestamp,ch0_raw_sample,ch1_raw_sample,time_sec,ch0_raw_voltage,ch1_raw_voltage", header)
}

func TestExportEDF(t *testing.T) {
	// Two channels, two seconds at 250 Hz.
	table := &Table{
		Channels: []string{"ch0", "ch1"},
		Codes:    map[string][]int32{"ch0": {}, "ch1": {}},
	}
	for i := 0; i < 500; i++ {
		table.Timestamps = append(table.Timestamps, int64(i)*4000)
		table.Codes["ch0"] = append(table.Codes["ch0"], int32(i))
		table.Codes["ch1"] = append(table.Codes["ch1"], int32(-i))
	}

	p, err := table.AddTimeAndVoltage("subj01_rest_gain1_boardAds1299_x")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "recording.edf")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, ExportEDF(f, table, p, "subj01_rest_gain1_boardAds1299_x"))

	info, err := os.Stat(path)
	require.NoError(t, err)

	// Header is 256 + 2*256 bytes, then 2 records of 2*250 int16 samples.
	wantSize := int64(256+2*256) + 2*2*250*2
	assert.Equal(t, wantSize, info.Size())
}

func TestExportEDF_RequiresVoltage(t *testing.T) {
	table, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	p, _ := board.Lookup("boardAds1299")
	f, err := os.Create(filepath.Join(t.TempDir(), "bad.edf"))
	require.NoError(t, err)
	defer f.Close()

	err = ExportEDF(f, table, p, "id")
	assert.ErrorIs(t, err, ErrInvalidTable)
}
