package dataset

import (
	"fmt"
	"io"
	"time"

	"github.com/OpenPSG/edf"

	"github.com/elata/goeeg/pkg/board"
)

// ExportEDF writes the table's voltage columns as an EDF recording with one
// second data records. AddTimeAndVoltage must have run first; the profile
// decides the physical range and the samples per record.
func ExportEDF(w io.WriteSeeker, t *Table, p board.Profile, recordingID string) error {
	if t.Volts == nil {
		return fmt.Errorf("%w: voltage columns missing, run AddTimeAndVoltage first", ErrInvalidTable)
	}
	if p.SampleRate <= 0 {
		return fmt.Errorf("%w: profile sample rate %v", ErrInvalidTable, p.SampleRate)
	}

	samplesPerRecord := int(p.SampleRate)

	// Signals are stored in microvolts around the midpoint rail.
	spanMicro := (p.VRef - p.AVSS) / (2 * p.Gain) * 1e6
	signals := make([]edf.SignalHeader, len(t.Channels))
	for i, ch := range t.Channels {
		signals[i] = edf.SignalHeader{
			Label:             "EEG " + ch,
			TransducerType:    "AgAgCl electrode",
			PhysicalDimension: "uV",
			PhysicalMin:       -spanMicro,
			PhysicalMax:       spanMicro,
			DigitalMin:        -32768,
			DigitalMax:        32767,
			SamplesPerRecord:  samplesPerRecord,
		}
	}

	hdr := edf.Header{
		Version:            edf.Version0,
		PatientID:          "X X X X",
		RecordingID:        recordingID,
		StartTime:          time.UnixMicro(t.Timestamps[0]).UTC(),
		DataRecordDuration: time.Second,
		SignalCount:        len(t.Channels),
		Signals:            signals,
	}

	ew, err := edf.Create(w, hdr)
	if err != nil {
		return fmt.Errorf("failed to create edf file: %w", err)
	}

	vmid := p.VMid()
	for start := 0; start < t.Len(); start += samplesPerRecord {
		record := make([][]float64, len(t.Channels))
		for i, ch := range t.Channels {
			chunk := make([]float64, samplesPerRecord)
			for j := 0; j < samplesPerRecord; j++ {
				if start+j < t.Len() {
					chunk[j] = (t.Volts[ch][start+j] - vmid) * 1e6
				}
			}
			record[i] = chunk
		}
		if err := ew.WriteRecord(record); err != nil {
			return fmt.Errorf("failed to write edf record: %w", err)
		}
	}

	return ew.Close()
}
