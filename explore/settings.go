package main

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/elata/goeeg/pkg/acquire"
	"github.com/elata/goeeg/pkg/monitor"
)

// showSettingsDialog displays a settings dialog with tabs for all
// configuration options.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createSerialTab(state),
		createFilterTab(state),
		createMonitorTab(state),
		createMockTab(state),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(600, 500))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(600, 500))
	d.Show()
}

// createSerialTab creates the Serial configuration tab.
func createSerialTab(state *appState) *container.TabItem {
	ports, err := acquire.Ports()
	portOptions := []string{}
	portMap := make(map[string]string) // Map display name to actual port name

	if err == nil {
		for _, port := range ports {
			displayName := port.Name
			if port.Description != "" && port.Description != port.Name {
				displayName = fmt.Sprintf("%s (%s)", port.Name, port.Description)
			}
			portOptions = append(portOptions, displayName)
			portMap[displayName] = port.Name
		}
	}

	// Add current port if not in list
	currentPort := state.cfg.Serial.Port
	currentDisplay := currentPort
	found := false
	for _, opt := range portOptions {
		if portMap[opt] == currentPort {
			currentDisplay = opt
			found = true
			break
		}
	}
	if !found && currentPort != "" {
		portOptions = append(portOptions, currentPort)
		portMap[currentPort] = currentPort
		currentDisplay = currentPort
	}

	portSelect := widget.NewSelect(portOptions, func(selected string) {
		// Selection handler - applied on submit
	})
	if currentDisplay != "" {
		portSelect.SetSelected(currentDisplay)
	}

	baudEntry := widget.NewEntry()
	baudEntry.SetText(fmt.Sprintf("%d", state.cfg.Serial.BaudRate))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Serial Port", Widget: portSelect},
			{Text: "Baud Rate", Widget: baudEntry},
		},
		OnSubmit: func() {
			if portSelect.Selected != "" {
				selectedPort := portMap[portSelect.Selected]
				if selectedPort == "" {
					selectedPort = portSelect.Selected
				}

				portChanged := state.cfg.Serial.Port != selectedPort
				wasConnected := state.source != nil && state.source.IsConnected()

				state.cfg.Serial.Port = selectedPort
				if baud, err := strconv.Atoi(baudEntry.Text); err == nil {
					state.cfg.Serial.BaudRate = baud
				}
				if err := state.cfg.Save("config.yaml"); err != nil {
					dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
					return
				}

				// If the port changed on a live chain, restart it
				if portChanged && wasConnected {
					closeAnalysisChain(state.chain)
					state.chain = nil

					if state.source != nil {
						state.source.Close()
						state.source = nil
					}

					handleConnect(state)
				}
			}
		},
	}

	return container.NewTabItem("Serial", form)
}

// createFilterTab creates the conditioning chain configuration tab.
func createFilterTab(state *appState) *container.TabItem {
	orderEntry := widget.NewEntry()
	orderEntry.SetText(fmt.Sprintf("%d", state.cfg.Filter.Order))

	lowcutEntry := widget.NewEntry()
	lowcutEntry.SetText(fmt.Sprintf("%.2f", state.cfg.Filter.LowCutHz))

	highcutEntry := widget.NewEntry()
	highcutEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Filter.HighCutHz))

	notchQEntry := widget.NewEntry()
	notchQEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Filter.NotchQ))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Butterworth Order", Widget: orderEntry},
			{Text: "Low Cut (Hz)", Widget: lowcutEntry},
			{Text: "High Cut (Hz)", Widget: highcutEntry},
			{Text: "Notch Q", Widget: notchQEntry},
		},
		OnSubmit: func() {
			if order, err := strconv.Atoi(orderEntry.Text); err == nil {
				state.cfg.Filter.Order = order
			}
			if lc, err := strconv.ParseFloat(lowcutEntry.Text, 64); err == nil {
				state.cfg.Filter.LowCutHz = lc
			}
			if hc, err := strconv.ParseFloat(highcutEntry.Text, 64); err == nil {
				state.cfg.Filter.HighCutHz = hc
			}
			if q, err := strconv.ParseFloat(notchQEntry.Text, 64); err == nil {
				state.cfg.Filter.NotchQ = q
			}
			if err := state.cfg.Save("config.yaml"); err != nil {
				dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
			}
			// Recreate the monitor with the new chain
			state.monitor = monitor.New(state.cfg, state.profile)
		},
	}

	return container.NewTabItem("Filter", form)
}

// createMonitorTab creates the rolling-window monitor configuration tab.
func createMonitorTab(state *appState) *container.TabItem {
	windowEntry := widget.NewEntry()
	windowEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Monitor.WindowSeconds))

	slideEntry := widget.NewEntry()
	slideEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Monitor.SlideSeconds))

	welchEntry := widget.NewEntry()
	welchEntry.SetText(fmt.Sprintf("%d", state.cfg.Welch.SegmentLength))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Window (seconds)", Widget: windowEntry},
			{Text: "Slide (seconds)", Widget: slideEntry},
			{Text: "Welch Segment (samples)", Widget: welchEntry},
		},
		OnSubmit: func() {
			if ws, err := strconv.ParseFloat(windowEntry.Text, 64); err == nil {
				state.cfg.Monitor.WindowSeconds = ws
			}
			if ss, err := strconv.ParseFloat(slideEntry.Text, 64); err == nil {
				state.cfg.Monitor.SlideSeconds = ss
			}
			if seg, err := strconv.Atoi(welchEntry.Text); err == nil {
				state.cfg.Welch.SegmentLength = seg
			}
			if err := state.cfg.Save("config.yaml"); err != nil {
				dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
			}
			state.monitor = monitor.New(state.cfg, state.profile)
		},
	}

	return container.NewTabItem("Monitor", form)
}

// createMockTab creates the synthetic source configuration tab.
func createMockTab(state *appState) *container.TabItem {
	rateEntry := widget.NewEntry()
	rateEntry.SetText(fmt.Sprintf("%.0f", state.cfg.Mock.SampleRateHz))

	channelsEntry := widget.NewEntry()
	channelsEntry.SetText(fmt.Sprintf("%d", state.cfg.Mock.Channels))

	signalEntry := widget.NewEntry()
	signalEntry.SetText(fmt.Sprintf("%.6g", state.cfg.Mock.SignalVolts))

	noiseEntry := widget.NewEntry()
	noiseEntry.SetText(fmt.Sprintf("%.6g", state.cfg.Mock.NoiseVolts))

	mainsEntry := widget.NewEntry()
	mainsEntry.SetText(fmt.Sprintf("%.6g", state.cfg.Mock.MainsVolts))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Sample Rate (Hz)", Widget: rateEntry},
			{Text: "Channels", Widget: channelsEntry},
			{Text: "Signal Amplitude (V)", Widget: signalEntry},
			{Text: "Noise Amplitude (V)", Widget: noiseEntry},
			{Text: "Mains Amplitude (V)", Widget: mainsEntry},
		},
		OnSubmit: func() {
			if sr, err := strconv.ParseFloat(rateEntry.Text, 64); err == nil {
				state.cfg.Mock.SampleRateHz = sr
			}
			if ch, err := strconv.Atoi(channelsEntry.Text); err == nil {
				state.cfg.Mock.Channels = ch
			}
			if sv, err := strconv.ParseFloat(signalEntry.Text, 64); err == nil {
				state.cfg.Mock.SignalVolts = sv
			}
			if nv, err := strconv.ParseFloat(noiseEntry.Text, 64); err == nil {
				state.cfg.Mock.NoiseVolts = nv
			}
			if mv, err := strconv.ParseFloat(mainsEntry.Text, 64); err == nil {
				state.cfg.Mock.MainsVolts = mv
			}
			if err := state.cfg.Save("config.yaml"); err != nil {
				dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
			}
		},
	}

	return container.NewTabItem("Mock", form)
}
