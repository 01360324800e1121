// cmd/table.go
package cmd

import (
	"fmt"
	"strings"

	"github.com/ColonelBlimp/morsetap/internal/morse"
	"github.com/ColonelBlimp/morsetap/internal/settings"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var tableCmd = &cobra.Command{
	Use:          "table",
	Short:        "Print the letter table with press timings",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := settingsStore()
		if err != nil {
			return err
		}
		s := store.Load()

		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Letter", "Code", "Presses (ms)"})
		for _, e := range morse.Letters() {
			t.AppendRow(table.Row{string(e.Letter), e.Code, pressTimes(e.Code, s)})
		}
		t.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tableCmd)
}

// pressTimes returns nominal press lengths for code: one unit per dot and
// DashRatio units per dash.
func pressTimes(code string, s settings.Settings) string {
	parts := make([]string, 0, len(code))
	for _, c := range code {
		n := s.UnitDuration
		if morse.Symbol(c) == morse.Dash {
			n *= morse.DashRatio
		}
		parts = append(parts, fmt.Sprint(n))
	}
	return strings.Join(parts, " ")
}
