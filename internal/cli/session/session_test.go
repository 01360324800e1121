package session

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ColonelBlimp/morsetap/internal/audio"
	"github.com/ColonelBlimp/morsetap/internal/config"
	"github.com/ColonelBlimp/morsetap/internal/settings"
	"github.com/ColonelBlimp/morsetap/internal/trainer"
)

func testConfig(t *testing.T) *config.Settings {
	t.Helper()
	return &config.Settings{
		SettingsFile:        filepath.Join(t.TempDir(), "settings.json"),
		AudioBackend:        audio.BackendNone,
		ToneFrequency:       600,
		ToneVolume:          0.1,
		PlaybackDeviceIndex: -1,
		DeviceIndex:         -1,
		SampleRate:          48000,
		BufferSize:          512,
		BlockSize:           512,
		OverlapPct:          50,
		Threshold:           0.4,
		Hysteresis:          2,
		AGCEnabled:          true,
		AGCDecay:            0.9995,
		AGCAttack:           0.1,
	}
}

func TestLoadSettings(t *testing.T) {
	cfg := testConfig(t)
	store := settings.NewStore(cfg.SettingsFile, config.AppName)
	if err := store.Save(settings.Settings{UnitDuration: 70, PauseDuration: 900}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	tests := []struct {
		name  string
		unit  int
		pause int
		want  settings.Settings
	}{
		{"saved", 0, 0, settings.Settings{UnitDuration: 70, PauseDuration: 900}},
		{"unit override", 40, 0, settings.Settings{UnitDuration: 40, PauseDuration: 900}},
		{"both overrides", 40, 600, settings.Settings{UnitDuration: 40, PauseDuration: 600}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg.Unit, cfg.Pause = tt.unit, tt.pause
			if got := LoadSettings(cfg, store); got != tt.want {
				t.Errorf("LoadSettings() = %+v, want %+v", got, tt.want)
			}
		})
	}

	// overrides are not persisted
	if got := store.Load(); got != (settings.Settings{UnitDuration: 70, PauseDuration: 900}) {
		t.Errorf("store after overrides = %+v", got)
	}
}

func TestNew_Silent(t *testing.T) {
	cfg := testConfig(t)
	cfg.Unit = 60

	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()

	if len(s.Notices) != 0 {
		t.Errorf("Notices = %v, want none", s.Notices)
	}
	if s.KeyerActive() {
		t.Error("KeyerActive() = true with keyer disabled")
	}
	if got := s.Trainer.Settings(); got.UnitDuration != 60 || got.PauseDuration != settings.DefaultPauseDuration {
		t.Errorf("trainer settings = %+v", got)
	}
	if s.Store.Path() != cfg.SettingsFile {
		t.Errorf("Store.Path() = %q, want %q", s.Store.Path(), cfg.SettingsFile)
	}
}

func TestNew_UnknownBackendFallsBack(t *testing.T) {
	prev := log.Writer()
	log.SetOutput(io.Discard)
	t.Cleanup(func() { log.SetOutput(prev) })

	cfg := testConfig(t)
	cfg.AudioBackend = "tape"

	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()

	if len(s.Notices) != 1 || !strings.Contains(s.Notices[0], "Sidetone unavailable") {
		t.Errorf("Notices = %v, want sidetone notice", s.Notices)
	}
	if _, ok := s.tone.(audio.Silent); !ok {
		t.Errorf("tone = %T, want audio.Silent", s.tone)
	}
}

func TestSession_EventsReachChannel(t *testing.T) {
	s, err := New(testConfig(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()

	now := time.Now()
	s.Trainer.OnPress(now)
	s.Trainer.OnRelease(now.Add(20 * time.Millisecond))

	select {
	case ev := <-s.Events:
		if ev.Kind != trainer.EventSymbol {
			t.Errorf("event = %v, want EventSymbol", ev.Kind)
		}
	default:
		t.Fatal("no event queued")
	}
	if !s.Diagram.Marked(".") {
		t.Error("diagram not wired as renderer")
	}
}

func TestSession_Model(t *testing.T) {
	s, err := New(testConfig(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()

	if !strings.Contains(s.Model().View(), "unit 50ms") {
		t.Error("model does not show the loaded settings")
	}
	if _, err := os.Stat(s.Store.Path()); !os.IsNotExist(err) {
		t.Errorf("settings file written before any save: %v", err)
	}
}
