// cmd/settings.go
package cmd

import (
	"fmt"
	"io"

	"github.com/ColonelBlimp/morsetap/internal/config"
	"github.com/ColonelBlimp/morsetap/internal/morse"
	"github.com/ColonelBlimp/morsetap/internal/settings"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:          "settings",
	Short:        "Show the saved trainer timings",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := settingsStore()
		if err != nil {
			return err
		}
		renderSettings(cmd.OutOrStdout(), store.Path(), store.Load())
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Save trainer timings",
	Long: `Saves the timings given with --unit and --pause. A timing that is not
given keeps its saved value.`,
	Example:      "  morsetap settings set --unit 60 --pause 800",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func settingsStore() (*settings.Store, error) {
	cfg, err := config.Get()
	if err != nil {
		return nil, err
	}
	return settings.NewStore(cfg.SettingsFile, config.AppName), nil
}

func runSettingsSet(cmd *cobra.Command, _ []string) error {
	unitSet := cmd.Flags().Changed("unit")
	pauseSet := cmd.Flags().Changed("pause")
	if !unitSet && !pauseSet {
		return fmt.Errorf("nothing to set: give --unit and/or --pause")
	}

	store, err := settingsStore()
	if err != nil {
		return err
	}

	s := store.Load()
	if unitSet {
		s.UnitDuration, _ = cmd.Flags().GetInt("unit")
	}
	if pauseSet {
		s.PauseDuration, _ = cmd.Flags().GetInt("pause")
	}
	if err := store.Save(s); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	renderSettings(cmd.OutOrStdout(), store.Path(), s)
	return nil
}

func renderSettings(w io.Writer, path string, s settings.Settings) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(path)
	t.AppendHeader(table.Row{"Setting", "Value", "Meaning"})
	t.AppendRows([]table.Row{
		{"unit", fmt.Sprintf("%dms", s.UnitDuration), fmt.Sprintf("presses under %dms are dots", s.UnitDuration*morse.DashRatio)},
		{"pause", fmt.Sprintf("%dms", s.PauseDuration), "silence that commits a letter"},
	})
	t.Render()
}
