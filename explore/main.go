package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"gonum.org/v1/gonum/floats"

	"github.com/elata/goeeg/pkg/acquire"
	"github.com/elata/goeeg/pkg/board"
	"github.com/elata/goeeg/pkg/calibrate"
	"github.com/elata/goeeg/pkg/config"
	"github.com/elata/goeeg/pkg/dataset"
	"github.com/elata/goeeg/pkg/filter"
	"github.com/elata/goeeg/pkg/monitor"
	"github.com/elata/goeeg/pkg/scope"
	"github.com/elata/goeeg/pkg/spectral"
	"github.com/elata/goeeg/pkg/timefreq"
)

func main() {
	var (
		portFlag   = flag.String("p", "", "Serial port override (e.g., /dev/ttyACM0)")
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag   = flag.Bool("mock", false, "Use a synthetic EEG source instead of a serial port")
		csvFlag    = flag.String("csv", "", "Analyse a recorded CSV instead of a live source")
		idFlag     = flag.String("id", "", "Recording identifier (required with -csv, e.g. subj01_rest_gain1_boardAds1299_s1)")
		edfFlag    = flag.String("edf", "", "Optional EDF export path for the calibrated recording")
	)
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}

	application := app.NewWithID("com.elata.goeeg")

	window := application.NewWindow("EEG Explorer")
	window.Resize(fyne.NewSize(1200, 800))
	window.CenterOnScreen()

	profile, err := board.Lookup("boardAds1299")
	if err != nil {
		log.Fatalf("Failed to look up board profile: %v", err)
	}

	state := &appState{
		cfg:     cfg,
		profile: profile,
		monitor: monitor.New(cfg, profile),
		window:  window,
		useMock: *mockFlag,
	}

	toolbar := createToolbar(state)

	spectrumWidget := scope.New(cfg)
	state.spectrumWidget = spectrumWidget

	window.SetContent(container.NewBorder(
		toolbar,
		nil,
		nil,
		nil,
		spectrumWidget,
	))

	if *csvFlag != "" {
		if *idFlag == "" {
			log.Fatal("-csv requires -id with the recording identifier")
		}
		if err := analyseRecording(state, *csvFlag, *idFlag, *edfFlag); err != nil {
			log.Fatalf("Failed to analyse recording: %v", err)
		}
	}

	window.ShowAndRun()
}

// analysisChain tracks the components of a live analysis chain for graceful
// shutdown.
type analysisChain struct {
	source           acquire.Source
	frames           <-chan acquire.RawFrame
	samplesStream    <-chan calibrate.Sample
	monitorGoroutine chan struct{} // Closed when the monitor goroutine exits
}

// appState holds the application state.
type appState struct {
	cfg            *config.Config
	profile        board.Profile
	source         acquire.Source
	monitor        *monitor.Monitor
	spectrumWidget *scope.SpectrumWidget
	window         fyne.Window
	connectBtn     *widget.Button
	useMock        bool
	chain          *analysisChain // Current live chain (nil if not connected)

	// Throttling for widget updates
	lastUpdateTime time.Time
	updateMu       sync.Mutex
}

// createToolbar creates the application toolbar with Connect and Settings.
func createToolbar(state *appState) fyne.CanvasObject {
	connectBtn := widget.NewButtonWithIcon("", theme.LoginIcon(), func() {
		handleConnect(state)
	})
	state.connectBtn = connectBtn

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	return container.NewBorder(
		nil,
		nil,
		container.NewHBox(connectBtn, settingsBtn),
		nil,
		nil,
	)
}

// analyseRecording runs the offline pipeline: CSV table, calibration, the
// conditioning chain, and per-channel spectra for the display. Band powers go
// to the log; an EDF copy is written when a path is given.
func analyseRecording(state *appState, csvPath, recordingID, edfPath string) error {
	f, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("failed to open recording: %w", err)
	}
	defer f.Close()

	table, err := dataset.ReadCSV(f)
	if err != nil {
		return err
	}

	profile, err := table.AddTimeAndVoltage(recordingID)
	if err != nil {
		return err
	}
	state.profile = profile
	log.Printf("Loaded %d samples, %d channels at %v Hz (gain %v)",
		table.Len(), len(table.Channels), profile.SampleRate, profile.Gain)

	chain := filter.Chain{
		Order:     state.cfg.Filter.Order,
		LowCutHz:  state.cfg.Filter.LowCutHz,
		HighCutHz: state.cfg.Filter.HighCutHz,
		NotchQ:    state.cfg.Filter.NotchQ,
	}

	spectra := make([]spectral.Spectrum, 0, len(table.Channels))
	for _, ch := range table.Channels {
		conditioned, err := chain.Apply(table.Volts[ch], profile.SampleRate)
		if err != nil {
			return fmt.Errorf("channel %s: %w", ch, err)
		}

		spec, err := spectral.FFTSpectrum(conditioned, profile.SampleRate)
		if err != nil {
			return fmt.Errorf("channel %s: %w", ch, err)
		}
		spectra = append(spectra, spec)

		freqs, psd, err := spectral.WelchPSD(conditioned, profile.SampleRate, state.cfg.Welch.SegmentLength)
		if err != nil {
			return fmt.Errorf("channel %s: %w", ch, err)
		}
		for _, band := range spectral.Bands() {
			log.Printf("%s %s: %.3g V^2", ch, band.Name, spectral.BandPower(freqs, psd, band))
		}

		stftHz, cwtHz, err := timeFrequencyRidges(state.cfg, conditioned, profile.SampleRate)
		if err != nil {
			log.Printf("%s time-frequency analysis skipped: %v", ch, err)
			continue
		}
		log.Printf("%s dominant frequency: %.2f Hz (spectrogram), %.2f Hz (scalogram)", ch, stftHz, cwtHz)
	}

	state.spectrumWidget.UpdateData(spectra)

	if edfPath != "" {
		out, err := os.Create(edfPath)
		if err != nil {
			return fmt.Errorf("failed to create EDF file: %w", err)
		}
		defer out.Close()
		if err := dataset.ExportEDF(out, table, profile, recordingID); err != nil {
			return err
		}
		log.Printf("Exported EDF to %s", edfPath)
	}

	return nil
}

// timeFrequencyRidges runs the configured short-time spectrogram and wavelet
// scalogram over a conditioned series and returns the dominant frequency of
// each, averaged over time.
func timeFrequencyRidges(cfg *config.Config, series []float64, sampleRate float64) (stftHz, cwtHz float64, err error) {
	freqs, _, powerDB, err := timefreq.STFTSpectrogram(series, sampleRate, cfg.Filter.HighCutHz, cfg.STFT.SegmentLength)
	if err != nil {
		return 0, 0, err
	}
	stftHz = freqs[maxMeanRow(powerDB)]

	coeffs, cwtFreqs, err := timefreq.CWTScalogram(series, sampleRate, cfg.CWT.FreqMinHz, cfg.CWT.FreqMaxHz, cfg.CWT.NumFreqs)
	if err != nil {
		return 0, 0, err
	}
	cwtHz = cwtFreqs[maxMeanRow(timefreq.Magnitudes(coeffs))]

	return stftHz, cwtHz, nil
}

// maxMeanRow returns the index of the row with the largest mean value.
func maxMeanRow(rows [][]float64) int {
	means := make([]float64, len(rows))
	for i, row := range rows {
		var sum float64
		for _, v := range row {
			sum += v
		}
		means[i] = sum / float64(len(row))
	}
	return floats.MaxIdx(means)
}

// closeAnalysisChain gracefully closes the live analysis chain.
func closeAnalysisChain(chain *analysisChain) {
	if chain == nil {
		return
	}

	// Closing the source stops its producer, which closes the frames channel
	// and drains through the converter into the monitor.
	if chain.source != nil {
		chain.source.Close()
	}

	if chain.monitorGoroutine != nil {
		<-chain.monitorGoroutine
	}
}

// handleConnect handles the connect/disconnect button click.
func handleConnect(state *appState) {
	if state.source != nil && state.source.IsConnected() {
		closeAnalysisChain(state.chain)
		state.chain = nil
		state.source = nil
		if state.useMock {
			fmt.Println("Disconnected from synthetic source")
		} else {
			fmt.Println("Disconnected from serial port")
		}
		return
	}

	var source acquire.Source
	if state.useMock {
		source = acquire.NewMock(&state.cfg.Mock, state.profile)
		fmt.Println("Using synthetic EEG source")
	} else {
		source = acquire.New(state.cfg.Serial.Port, state.cfg.Serial.BaudRate, acquire.DefaultBufferSize)
	}

	if err := source.Connect(); err != nil {
		if state.useMock {
			dialog.ShowError(fmt.Errorf("failed to start synthetic source: %w", err), state.window)
		} else {
			dialog.ShowError(fmt.Errorf("failed to connect to %s: %w", state.cfg.Serial.Port, err), state.window)
		}
		return
	}
	state.source = source
	if state.useMock {
		fmt.Println("Connected to synthetic source")
	} else {
		fmt.Printf("Connected to serial port: %s\n", state.cfg.Serial.Port)
	}

	// Reset monitor shutdown flag for the new chain
	state.monitor.ResetShutdown()

	// Register callback before starting the chain. Throttle updates to
	// ~60 FPS so the UI stays smooth under fast recompute intervals.
	const updateInterval = 16 * time.Millisecond
	state.monitor.OnUpdate(func(samples []calibrate.Sample, spectra []spectral.Spectrum) {
		state.updateMu.Lock()
		now := time.Now()
		tooSoon := now.Sub(state.lastUpdateTime) < updateInterval
		if !tooSoon {
			state.lastUpdateTime = now
		}
		state.updateMu.Unlock()
		if tooSoon {
			return
		}

		fyne.Do(func() {
			state.spectrumWidget.UpdateData(spectra)
		})
	})

	frames := source.Frames()

	converter, err := calibrate.NewConverter(state.profile, 500)
	if err != nil {
		dialog.ShowError(fmt.Errorf("failed to build converter: %w", err), state.window)
		source.Close()
		state.source = nil
		return
	}
	samplesStream := converter(frames)

	monitorDone := make(chan struct{})
	go func() {
		defer close(monitorDone)
		state.monitor.ProcessSamples(samplesStream)
	}()

	state.chain = &analysisChain{
		source:           source,
		frames:           frames,
		samplesStream:    samplesStream,
		monitorGoroutine: monitorDone,
	}
}
