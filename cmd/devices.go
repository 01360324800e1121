// cmd/devices.go
package cmd

import (
	"fmt"

	"github.com/ColonelBlimp/morsetap/internal/audio"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

var devicesCmd = &cobra.Command{
	Use:          "devices",
	Short:        "List audio playback and capture devices",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		devices, err := audio.ListDevices()
		if err != nil {
			return fmt.Errorf("list audio devices: %w", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Kind", "Index", "Name", "Default"})
		for _, d := range devices {
			def := ""
			if d.Default {
				def = text.FgGreen.Sprint("*")
			}
			t.AppendRow(table.Row{d.Kind, d.Index, d.Name, def})
		}
		t.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}
