package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Serial  SerialConfig  `yaml:"serial"`
	Filter  FilterConfig  `yaml:"filter"`
	Welch   WelchConfig   `yaml:"welch"`
	STFT    STFTConfig    `yaml:"stft"`
	CWT     CWTConfig     `yaml:"cwt"`
	Monitor MonitorConfig `yaml:"monitor"`
	Mock    MockConfig    `yaml:"mock"`
}

// SerialConfig contains serial port configuration for the board link.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// FilterConfig contains the conditioning chain parameters.
type FilterConfig struct {
	Order     int     `yaml:"order"`      // Butterworth order for high-pass and low-pass stages
	LowCutHz  float64 `yaml:"lowcut_hz"`  // High-pass cutoff (Hz)
	HighCutHz float64 `yaml:"highcut_hz"` // Low-pass cutoff (Hz)
	NotchQ    float64 `yaml:"notch_q"`    // Quality factor for the 50/60 Hz notches
}

// WelchConfig contains Welch PSD estimation parameters.
type WelchConfig struct {
	SegmentLength int `yaml:"segment_length"` // Samples per segment, capped to the signal length
}

// STFTConfig contains short-time spectrogram parameters.
type STFTConfig struct {
	SegmentLength int `yaml:"segment_length"` // Samples per segment; overlap is half of this
}

// CWTConfig contains wavelet scalogram parameters.
type CWTConfig struct {
	FreqMinHz float64 `yaml:"freq_min_hz"`
	FreqMaxHz float64 `yaml:"freq_max_hz"`
	NumFreqs  int     `yaml:"num_freqs"`
}

// MonitorConfig contains rolling-window spectrum monitor parameters.
type MonitorConfig struct {
	WindowSeconds float64 `yaml:"window_seconds"` // Analysis window length
	SlideSeconds  float64 `yaml:"slide_seconds"`  // How often the window advances
}

// MockConfig contains synthetic EEG source configuration.
type MockConfig struct {
	SampleRateHz float64 `yaml:"sample_rate_hz"` // Output sample rate (Hz)
	Channels     int     `yaml:"channels"`       // Number of synthesized channels
	SignalVolts  float64 `yaml:"signal_volts"`   // Peak amplitude of each band component (V)
	NoiseVolts   float64 `yaml:"noise_volts"`    // Uniform noise amplitude (V)
	MainsVolts   float64 `yaml:"mains_volts"`    // Amplitude of the 50/60 Hz interference (V)
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:     "/dev/ttyACM0",
			BaudRate: 115200,
		},
		Filter: FilterConfig{
			Order:     4,
			LowCutHz:  0.5,
			HighCutHz: 45,
			NotchQ:    30,
		},
		Welch: WelchConfig{
			SegmentLength: 4096,
		},
		STFT: STFTConfig{
			SegmentLength: 256,
		},
		CWT: CWTConfig{
			FreqMinHz: 1,
			FreqMaxHz: 45,
			NumFreqs:  64,
		},
		Monitor: MonitorConfig{
			WindowSeconds: 2,
			SlideSeconds:  1,
		},
		Mock: MockConfig{
			SampleRateHz: 250,
			Channels:     4,
			SignalVolts:  20e-6,
			NoiseVolts:   2e-6,
			MainsVolts:   5e-6,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Ensure minimum required fields are set (use defaults if missing)
	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.Filter.Order == 0 {
		c.Filter.Order = def.Filter.Order
	}
	if c.Filter.LowCutHz == 0 {
		c.Filter.LowCutHz = def.Filter.LowCutHz
	}
	if c.Filter.HighCutHz == 0 {
		c.Filter.HighCutHz = def.Filter.HighCutHz
	}
	if c.Filter.NotchQ == 0 {
		c.Filter.NotchQ = def.Filter.NotchQ
	}

	if c.Welch.SegmentLength == 0 {
		c.Welch.SegmentLength = def.Welch.SegmentLength
	}
	if c.STFT.SegmentLength == 0 {
		c.STFT.SegmentLength = def.STFT.SegmentLength
	}

	if c.CWT.FreqMinHz == 0 {
		c.CWT.FreqMinHz = def.CWT.FreqMinHz
	}
	if c.CWT.FreqMaxHz == 0 {
		c.CWT.FreqMaxHz = def.CWT.FreqMaxHz
	}
	if c.CWT.NumFreqs == 0 {
		c.CWT.NumFreqs = def.CWT.NumFreqs
	}

	if c.Monitor.WindowSeconds == 0 {
		c.Monitor.WindowSeconds = def.Monitor.WindowSeconds
	}
	if c.Monitor.SlideSeconds == 0 {
		c.Monitor.SlideSeconds = def.Monitor.SlideSeconds
	}

	if c.Mock.SampleRateHz == 0 {
		c.Mock.SampleRateHz = def.Mock.SampleRateHz
	}
	if c.Mock.Channels == 0 {
		c.Mock.Channels = def.Mock.Channels
	}
	if c.Mock.SignalVolts == 0 {
		c.Mock.SignalVolts = def.Mock.SignalVolts
	}
}
