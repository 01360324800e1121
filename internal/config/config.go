// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/ColonelBlimp/morsetap/internal/audio"
	"github.com/ColonelBlimp/morsetap/internal/dsp"
	"github.com/ColonelBlimp/morsetap/internal/settings"
	"github.com/spf13/viper"
)

const (
	AppName       = "morsetap"
	ConfigType    = "yaml"
	LogFileName   = "morsetap.log"
	DefaultConfig = `# morsetap configuration

# Trainer timings (milliseconds). 0 uses the saved settings.
unit: 0                 # Short/long boundary is 3x this
pause: 0                # Silence that commits a letter
settings_file: ""       # Empty for <config dir>/morsetap/settings.json

# Sidetone
audio_backend: "malgo"  # malgo, beep or none
tone_frequency: 600     # Sidetone (and keyer) frequency in Hz
tone_volume: 0.1        # Sidetone gain (0.0-1.0)
playback_device_index: -1  # -1 for default device (malgo only)

# Audio keyer: key the trainer from a received tone
keyer_enabled: false
device_index: -1        # Capture device, -1 for default
sample_rate: 48000      # Audio sample rate in Hz
buffer_size: 512        # Frames per capture callback
block_size: 512         # Goertzel block size (samples per detection window)
overlap_pct: 50         # Block overlap percentage (0-99)
threshold: 0.4          # Detection threshold (0.0-1.0)
hysteresis: 2           # Consecutive blocks required to confirm a key change
agc_enabled: true       # Normalise input level
agc_decay: 0.9995       # AGC peak decay per block
agc_attack: 0.1         # AGC attack rate (0.0-1.0)
agc_warmup_blocks: 0    # Blocks used to calibrate AGC before keying

# Output
log_file: ""            # Empty for <config dir>/morsetap/morsetap.log
debug: false            # Log to stderr instead of the log file
`
)

var backends = []string{audio.BackendMalgo, audio.BackendBeep, audio.BackendNone}

// Settings holds all application configuration
type Settings struct {
	// Trainer
	Unit         int    `mapstructure:"unit"`
	Pause        int    `mapstructure:"pause"`
	SettingsFile string `mapstructure:"settings_file"`

	// Sidetone
	AudioBackend        string  `mapstructure:"audio_backend"`
	ToneFrequency       float64 `mapstructure:"tone_frequency"`
	ToneVolume          float64 `mapstructure:"tone_volume"`
	PlaybackDeviceIndex int     `mapstructure:"playback_device_index"`

	// Audio keyer
	KeyerEnabled    bool    `mapstructure:"keyer_enabled"`
	DeviceIndex     int     `mapstructure:"device_index"`
	SampleRate      float64 `mapstructure:"sample_rate"`
	BufferSize      int     `mapstructure:"buffer_size"`
	BlockSize       int     `mapstructure:"block_size"`
	OverlapPct      int     `mapstructure:"overlap_pct"`
	Threshold       float64 `mapstructure:"threshold"`
	Hysteresis      int     `mapstructure:"hysteresis"`
	AGCEnabled      bool    `mapstructure:"agc_enabled"`
	AGCDecay        float64 `mapstructure:"agc_decay"`
	AGCAttack       float64 `mapstructure:"agc_attack"`
	AGCWarmupBlocks int     `mapstructure:"agc_warmup_blocks"`

	// Output
	LogFile string `mapstructure:"log_file"`
	Debug   bool   `mapstructure:"debug"`
}

// Dir returns <user config dir>/morsetap.
func Dir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, AppName)
}

// Init initializes Viper with defaults and config file.
// Config file search order: current directory, then ~/.config/morsetap/
func Init() error {
	viper.SetDefault("unit", 0)
	viper.SetDefault("pause", 0)
	viper.SetDefault("settings_file", "")
	viper.SetDefault("audio_backend", audio.BackendMalgo)
	viper.SetDefault("tone_frequency", 600)
	viper.SetDefault("tone_volume", 0.1)
	viper.SetDefault("playback_device_index", -1)
	viper.SetDefault("keyer_enabled", false)
	viper.SetDefault("device_index", -1)
	viper.SetDefault("sample_rate", 48000)
	viper.SetDefault("buffer_size", 512)
	viper.SetDefault("block_size", 512)
	viper.SetDefault("overlap_pct", 50)
	viper.SetDefault("threshold", 0.4)
	viper.SetDefault("hysteresis", 2)
	viper.SetDefault("agc_enabled", true)
	viper.SetDefault("agc_decay", 0.9995)
	viper.SetDefault("agc_attack", 0.1)
	viper.SetDefault("agc_warmup_blocks", 0)
	viper.SetDefault("log_file", "")
	viper.SetDefault("debug", false)

	viper.SetConfigType(ConfigType)
	viper.AddConfigPath(".")
	viper.AddConfigPath(Dir())

	// .config.yaml (hidden) wins over config.yaml
	viper.SetConfigName(".config")
	err := viper.ReadInConfig()
	if err != nil {
		viper.SetConfigName("config")
		err = viper.ReadInConfig()
	}

	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
		if err = ensureConfigExists(Dir()); err != nil {
			return err
		}
		if err = viper.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
	}

	return nil
}

func ensureConfigExists(configPath string) error {
	configFile := filepath.Join(configPath, "config.yaml")

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if err = os.MkdirAll(configPath, 0755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
		if err = os.WriteFile(configFile, []byte(DefaultConfig), 0644); err != nil {
			return fmt.Errorf("write default config: %w", err)
		}
	}
	return nil
}

// Get returns the current settings
func Get() (*Settings, error) {
	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &s, nil
}

// Validate checks that all settings are within acceptable ranges
func (s *Settings) Validate() error {
	var errs []error

	// Trainer
	if s.Unit < 0 || s.Unit > settings.MaxDuration {
		errs = append(errs, fmt.Errorf("unit must be 0 (saved) or between 1 and %d, got %d", settings.MaxDuration, s.Unit))
	}
	if s.Pause < 0 || s.Pause > settings.MaxDuration {
		errs = append(errs, fmt.Errorf("pause must be 0 (saved) or between 1 and %d, got %d", settings.MaxDuration, s.Pause))
	}

	// Sidetone
	if !slices.Contains(backends, s.AudioBackend) {
		errs = append(errs, fmt.Errorf("audio_backend must be one of %v, got %q", backends, s.AudioBackend))
	}
	if s.ToneFrequency < 100 || s.ToneFrequency > 3000 {
		errs = append(errs, fmt.Errorf("tone_frequency must be between 100 and 3000 Hz, got %v", s.ToneFrequency))
	}
	if s.ToneVolume < 0 || s.ToneVolume > 1 {
		errs = append(errs, fmt.Errorf("tone_volume must be between 0.0 and 1.0, got %v", s.ToneVolume))
	}

	// Audio
	if s.SampleRate < 8000 || s.SampleRate > 192000 {
		errs = append(errs, fmt.Errorf("sample_rate must be between 8000 and 192000 Hz, got %v", s.SampleRate))
	}
	if s.BufferSize < 64 || s.BufferSize > 8192 {
		errs = append(errs, fmt.Errorf("buffer_size must be between 64 and 8192, got %d", s.BufferSize))
	}

	// Keyer detection
	if s.BlockSize < 32 || s.BlockSize > 4096 {
		errs = append(errs, fmt.Errorf("block_size must be between 32 and 4096, got %d", s.BlockSize))
	}
	if s.BlockSize&(s.BlockSize-1) != 0 {
		errs = append(errs, fmt.Errorf("block_size should be a power of 2, got %d", s.BlockSize))
	}
	if s.OverlapPct < 0 || s.OverlapPct > 99 {
		errs = append(errs, fmt.Errorf("overlap_pct must be between 0 and 99, got %d", s.OverlapPct))
	}
	if s.Threshold < 0.0 || s.Threshold > 1.0 {
		errs = append(errs, fmt.Errorf("threshold must be between 0.0 and 1.0, got %v", s.Threshold))
	}
	if s.Hysteresis < 0 || s.Hysteresis > 50 {
		errs = append(errs, fmt.Errorf("hysteresis must be between 0 and 50, got %d", s.Hysteresis))
	}
	if s.AGCDecay < 0.9 || s.AGCDecay > 0.99999 {
		errs = append(errs, fmt.Errorf("agc_decay must be between 0.9 and 0.99999, got %v", s.AGCDecay))
	}
	if s.AGCAttack < 0.0 || s.AGCAttack > 1.0 {
		errs = append(errs, fmt.Errorf("agc_attack must be between 0.0 and 1.0, got %v", s.AGCAttack))
	}
	if s.AGCWarmupBlocks < 0 {
		errs = append(errs, fmt.Errorf("agc_warmup_blocks must be non-negative, got %d", s.AGCWarmupBlocks))
	}

	if s.ToneFrequency >= s.SampleRate/2 {
		errs = append(errs, fmt.Errorf("tone_frequency (%v Hz) must be less than Nyquist frequency (%v Hz)", s.ToneFrequency, s.SampleRate/2))
	}

	return errors.Join(errs...)
}

// LogPath returns log_file or the default inside Dir.
func (s *Settings) LogPath() string {
	if s.LogFile != "" {
		return s.LogFile
	}
	return filepath.Join(Dir(), LogFileName)
}

// Tone maps the sidetone keys onto the audio package.
func (s *Settings) Tone() audio.ToneConfig {
	return audio.ToneConfig{
		Backend:     s.AudioBackend,
		Frequency:   s.ToneFrequency,
		Volume:      s.ToneVolume,
		SampleRate:  uint32(s.SampleRate),
		DeviceIndex: s.PlaybackDeviceIndex,
	}
}

// Capture maps the keyer input keys onto the audio package.
func (s *Settings) Capture() audio.CaptureConfig {
	return audio.CaptureConfig{
		DeviceIndex: s.DeviceIndex,
		SampleRate:  uint32(s.SampleRate),
		BufferSize:  uint32(s.BufferSize),
	}
}

// Keyer maps the detection keys onto the dsp package.
func (s *Settings) Keyer() dsp.KeyerConfig {
	return dsp.KeyerConfig{
		ToneFrequency:   s.ToneFrequency,
		SampleRate:      s.SampleRate,
		BlockSize:       s.BlockSize,
		Threshold:       s.Threshold,
		Hysteresis:      s.Hysteresis,
		OverlapPct:      s.OverlapPct,
		AGCEnabled:      s.AGCEnabled,
		AGCDecay:        s.AGCDecay,
		AGCAttack:       s.AGCAttack,
		AGCWarmupBlocks: s.AGCWarmupBlocks,
	}
}
