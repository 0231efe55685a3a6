package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/phambaophuc/device-mockup/internal/devices"
	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List device models and colors",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := devices.LoadFile(catalogPath)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tNAME\tBEZEL\tCOLORS")
		for _, m := range catalog.All() {
			key := m.Key
			if key == catalog.DefaultKey() {
				key += "*"
			}
			colors := make([]string, len(m.Colors))
			for i, c := range m.Colors {
				if c == m.DefaultColor {
					c += "*"
				}
				colors[i] = c
			}
			fmt.Fprintf(w, "%s\t%s\t%dx%d\t%s\n", key, m.Name, m.BezelSize.Width, m.BezelSize.Height, strings.Join(colors, ", "))
		}
		return w.Flush()
	},
}
