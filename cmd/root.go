// cmd/root.go
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ColonelBlimp/morsetap/internal/cli/session"
	"github.com/ColonelBlimp/morsetap/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "morsetap",
	Short: "Morse code tap trainer",
	Long: `An interactive morse code trainer. Tap the button (mouse, space, '.' or '-')
and short and long presses are decoded into letters after a pause.`,
	SilenceUsage: true,
	RunE:         runTrainer,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags (override config file)
	rootCmd.PersistentFlags().IntP("unit", "u", 0, "unit duration in ms for this session (0 uses saved settings)")
	rootCmd.PersistentFlags().IntP("pause", "p", 0, "pause duration in ms for this session (0 uses saved settings)")
	rootCmd.PersistentFlags().BoolP("debug", "D", false, "log to stderr instead of the log file")
	rootCmd.Flags().StringP("backend", "b", "malgo", "sidetone backend: malgo, beep or none")
	rootCmd.Flags().BoolP("keyer", "k", false, "key the trainer from a received audio tone")
	rootCmd.Flags().IntP("device", "d", -1, "capture device index for the keyer (-1 for default)")

	// Bind flags to viper
	viper.BindPFlag("unit", rootCmd.PersistentFlags().Lookup("unit"))
	viper.BindPFlag("pause", rootCmd.PersistentFlags().Lookup("pause"))
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("audio_backend", rootCmd.Flags().Lookup("backend"))
	viper.BindPFlag("keyer_enabled", rootCmd.Flags().Lookup("keyer"))
	viper.BindPFlag("device_index", rootCmd.Flags().Lookup("device"))
}

func initConfig() {
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
}

func runTrainer(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Get()
	if err != nil {
		return err
	}

	closeLog := configureLogger(cfg)
	defer closeLog()

	s, err := session.New(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return s.Run(ctx)
}
