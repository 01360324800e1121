// internal/settings/settings.go
// Package settings persists the two trainer timings under a single key of
// a JSON key-value file.
package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

const (
	// Key is the entry the trainer owns inside the settings file.
	Key = "morseSettings"

	// DefaultUnitDuration is the unit in milliseconds (short/long boundary is 3x this)
	DefaultUnitDuration = 50
	// DefaultPauseDuration is the silence in milliseconds that commits a letter
	DefaultPauseDuration = 1000

	// MaxDuration caps both timings in milliseconds
	MaxDuration = 60000

	// FileName is the settings file inside the application config directory
	FileName = "settings.json"
)

var (
	// ErrInvalidUnit indicates the unit duration is outside 1-MaxDuration ms
	ErrInvalidUnit = errors.New("unit duration must be between 1 and 60000 ms")
	// ErrInvalidPause indicates the pause duration is outside 1-MaxDuration ms
	ErrInvalidPause = errors.New("pause duration must be between 1 and 60000 ms")
)

// Settings are the committed trainer timings, in milliseconds.
type Settings struct {
	UnitDuration  int `json:"unitDuration"`
	PauseDuration int `json:"intervalDuration"`
}

// Defaults returns the built-in timings.
func Defaults() Settings {
	return Settings{
		UnitDuration:  DefaultUnitDuration,
		PauseDuration: DefaultPauseDuration,
	}
}

// Validate checks both timings are within 1-MaxDuration ms.
func (s Settings) Validate() error {
	var errs []error
	if s.UnitDuration <= 0 || s.UnitDuration > MaxDuration {
		errs = append(errs, fmt.Errorf("%w, got %d", ErrInvalidUnit, s.UnitDuration))
	}
	if s.PauseDuration <= 0 || s.PauseDuration > MaxDuration {
		errs = append(errs, fmt.Errorf("%w, got %d", ErrInvalidPause, s.PauseDuration))
	}
	return errors.Join(errs...)
}

// Unit returns the unit duration as a time.Duration.
func (s Settings) Unit() time.Duration {
	return time.Duration(s.UnitDuration) * time.Millisecond
}

// Pause returns the pause duration as a time.Duration.
func (s Settings) Pause() time.Duration {
	return time.Duration(s.PauseDuration) * time.Millisecond
}

// stored mirrors the persisted object. Pointers tell a missing field from
// a zero. DotDuration is the older name of UnitDuration.
type stored struct {
	UnitDuration  *int `json:"unitDuration,omitempty"`
	DotDuration   *int `json:"dotDuration,omitempty"`
	PauseDuration *int `json:"intervalDuration,omitempty"`
}

// Store reads and writes the settings entry of one file.
type Store struct {
	path string
}

// NewStore returns a store backed by path. An empty path resolves to
// <user config dir>/<app>/settings.json.
func NewStore(path, app string) *Store {
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			dir = filepath.Join(os.Getenv("HOME"), ".config")
		}
		path = filepath.Join(dir, app, FileName)
	}
	return &Store{path: path}
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Load returns the stored settings. It never fails: a missing file or
// entry yields the defaults, and malformed data is logged and replaced
// by the defaults.
func (s *Store) Load() Settings {
	entries, err := s.readEntries()
	if err != nil {
		log.Printf("settings: %v, using defaults", err)
		return Defaults()
	}
	raw, ok := entries[Key]
	if !ok {
		return Defaults()
	}

	var st stored
	if err := json.Unmarshal(raw, &st); err != nil {
		log.Printf("settings: malformed %s entry in %s: %v, using defaults", Key, s.path, err)
		return Defaults()
	}

	out := Defaults()
	switch {
	case st.UnitDuration != nil:
		out.UnitDuration = *st.UnitDuration
	case st.DotDuration != nil:
		out.UnitDuration = *st.DotDuration
	}
	if st.PauseDuration != nil {
		out.PauseDuration = *st.PauseDuration
	}

	if err := out.Validate(); err != nil {
		log.Printf("settings: invalid %s entry in %s: %v, using defaults", Key, s.path, err)
		return Defaults()
	}
	return out
}

// Save validates and persists v, keeping any other keys in the file.
func (s *Store) Save(v Settings) error {
	if err := v.Validate(); err != nil {
		return err
	}

	entries, err := s.readEntries()
	if err != nil {
		// A corrupt file is replaced rather than blocking the save.
		log.Printf("settings: %v, rewriting file", err)
		entries = nil
	}
	if entries == nil {
		entries = make(map[string]json.RawMessage)
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	entries[Key] = raw

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings file: %w", err)
	}
	return writeAtomic(s.path, append(data, '\n'))
}

// readEntries returns the top-level object of the file, or nil when the
// file does not exist.
func (s *Store) readEntries() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return entries, nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.json")
	if err != nil {
		return fmt.Errorf("create temp settings file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close settings: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}
