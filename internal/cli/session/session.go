// internal/cli/session/session.go
// Package session wires the trainer to its sidetone, diagram, audio keyer
// and terminal front end for one interactive run.
package session

import (
	"context"
	"fmt"
	"log"

	"github.com/ColonelBlimp/morsetap/internal/audio"
	"github.com/ColonelBlimp/morsetap/internal/config"
	"github.com/ColonelBlimp/morsetap/internal/diagram"
	"github.com/ColonelBlimp/morsetap/internal/dsp"
	"github.com/ColonelBlimp/morsetap/internal/recovery"
	"github.com/ColonelBlimp/morsetap/internal/settings"
	"github.com/ColonelBlimp/morsetap/internal/trainer"
	"github.com/ColonelBlimp/morsetap/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"
)

// eventBuffer is the number of trainer events queued for the program.
const eventBuffer = 64

// Session owns everything one run of the trainer needs.
type Session struct {
	Trainer *trainer.Trainer
	Diagram *diagram.Diagram
	Store   *settings.Store
	Events  tui.Events
	// Notices collects non-fatal start-up failures for the banner.
	Notices []string

	tone    audio.Player
	capture *audio.Capture
	keyer   *dsp.Keyer
}

// LoadSettings reads the saved timings and applies the session overrides
// from cfg. Overrides are never written back.
func LoadSettings(cfg *config.Settings, store *settings.Store) settings.Settings {
	s := store.Load()
	if cfg.Unit > 0 {
		s.UnitDuration = cfg.Unit
	}
	if cfg.Pause > 0 {
		s.PauseDuration = cfg.Pause
	}
	return s
}

// New builds a session. Audio failures do not fail it: the sidetone falls
// back to silence, the keyer is left out, and both end up in Notices.
func New(cfg *config.Settings) (*Session, error) {
	s := &Session{
		Store:   settings.NewStore(cfg.SettingsFile, config.AppName),
		Diagram: diagram.New(diagram.DefaultStyles()),
		Events:  tui.NewEvents(eventBuffer),
	}

	tone, err := audio.OpenTone(cfg.Tone())
	if err != nil {
		log.Printf("session: sidetone unavailable: %v", err)
		s.notice("Sidetone unavailable (%v), running silent", err)
		tone = audio.Silent{}
	}
	s.tone = tone

	t, err := trainer.New(trainer.Config{
		Settings: LoadSettings(cfg, s.Store),
		Tone:     tone,
		Renderer: s.Diagram,
		OnEvent:  s.Events.Send,
	})
	if err != nil {
		_ = tone.Close()
		return nil, fmt.Errorf("create trainer: %w", err)
	}
	s.Trainer = t

	if cfg.KeyerEnabled {
		if err := s.openKeyer(cfg); err != nil {
			s.Close()
			return nil, err
		}
	}
	return s, nil
}

func (s *Session) openKeyer(cfg *config.Settings) error {
	keyer, err := dsp.NewKeyer(cfg.Keyer(), s.Trainer)
	if err != nil {
		return fmt.Errorf("create keyer: %w", err)
	}

	capture := audio.NewCapture(cfg.Capture())
	capture.SetCallback(keyer.Process)
	if err := capture.Init(); err != nil {
		log.Printf("session: audio keyer unavailable: %v", err)
		s.notice("Audio keyer unavailable (%v)", err)
		return nil
	}
	s.keyer = keyer
	s.capture = capture
	return nil
}

func (s *Session) notice(format string, args ...any) {
	s.Notices = append(s.Notices, fmt.Sprintf(format, args...))
}

// KeyerActive reports whether audio keying is wired in.
func (s *Session) KeyerActive() bool {
	return s.capture != nil
}

// Model returns the terminal front end for this session.
func (s *Session) Model() tui.Model {
	return tui.New(tui.Options{
		Trainer: s.Trainer,
		Diagram: s.Diagram,
		Store:   s.Store,
		Events:  s.Events,
		Notices: s.Notices,
	})
}

// Run starts capture, then runs the program until the user quits or ctx
// is cancelled. Capture stops with the program.
func (s *Session) Run(ctx context.Context, opts ...tea.ProgramOption) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if s.capture != nil {
		if err := s.capture.Start(ctx); err != nil {
			log.Printf("session: start capture: %v", err)
			s.notice("Audio keyer failed to start (%v)", err)
			_ = s.capture.Close()
			s.capture = nil
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(recovery.Guard("tui", func() error {
		defer cancel()
		return tui.Run(gctx, s.Model(), opts...)
	}))

	if s.capture != nil {
		g.Go(recovery.Guard("keyer", func() error {
			<-gctx.Done()
			// Capture stops on the same context; release a held key.
			s.keyer.Close()
			return nil
		}))
	}

	return g.Wait()
}

// Close stops audio and cancels any pending commit.
func (s *Session) Close() {
	if s.capture != nil {
		_ = s.capture.Close()
	}
	if s.keyer != nil {
		s.keyer.Close()
	}
	if s.Trainer != nil {
		s.Trainer.Close()
	}
	if s.tone != nil {
		if err := s.tone.Close(); err != nil {
			log.Printf("session: close sidetone: %v", err)
		}
	}
}
