// cmd/replay.go
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/ColonelBlimp/morsetap/internal/cli/session"
	"github.com/ColonelBlimp/morsetap/internal/config"
	"github.com/ColonelBlimp/morsetap/internal/replay"
	"github.com/ColonelBlimp/morsetap/internal/settings"
	"github.com/ColonelBlimp/morsetap/internal/trainer"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var replayCmd = &cobra.Command{
	Use:   "replay [file]",
	Short: "Decode a timed press/release script without a terminal",
	Long: `Runs a script of "<ms> press|release" lines (also down/up and clear) on a
virtual clock and prints the decoded text. Reads stdin when no file is given.`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runReplay,
}

func init() {
	replayCmd.Flags().BoolP("events", "e", false, "print every symbol and commit as a table")
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, err := config.Get()
	if err != nil {
		return err
	}

	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open script: %w", err)
		}
		defer f.Close()
		in = f
	}

	store := settings.NewStore(cfg.SettingsFile, config.AppName)
	res, err := replay.RunScript(in, session.LoadSettings(cfg, store))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if showEvents, _ := cmd.Flags().GetBool("events"); showEvents {
		renderEvents(out, res.Events)
	}
	fmt.Fprintln(out, res.Text)
	if res.Pressing {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: script ended with the key held")
	}
	return nil
}

func renderEvents(w io.Writer, events []trainer.Event) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Event", "Detail", "Sequence"})
	for i, e := range events {
		switch e.Kind {
		case trainer.EventSymbol:
			t.AppendRow(table.Row{i + 1, "symbol", fmt.Sprintf("%c %dms", e.Symbol, e.Duration.Milliseconds()), e.Sequence})
		case trainer.EventCommit:
			t.AppendRow(table.Row{i + 1, "commit", string(e.Letter), e.Sequence})
		case trainer.EventClear:
			t.AppendRow(table.Row{i + 1, "clear", "", ""})
		}
	}
	t.Render()
}
