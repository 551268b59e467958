package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/jonathan/talentsync/internal/rendering"
	"github.com/spf13/cobra"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List available templates and color schemes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME")
		for _, t := range rendering.ListTemplates() {
			fmt.Fprintf(w, "%s\t%s\n", t.ID, t.Name)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nColor schemes (professional only): %s\n", strings.Join(rendering.ColorSchemes(), ", "))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(templatesCmd)
}
