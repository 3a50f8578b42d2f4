package main

import (
	"fmt"

	"github.com/aluiziolira/go-scrape-products/config"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newValidateCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "validate-config [file]",
		Short: "Check an extraction config and print its fields.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cfg.ExtractionFile
			if len(args) == 1 {
				path = args[0]
			}
			ext, err := loadExtraction(path)
			if err != nil {
				return err
			}
			if err := ext.Validate(); err != nil {
				return fmt.Errorf("invalid extraction config: %w", err)
			}

			source := path
			if source == "" {
				source = "built-in defaults"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: container %q, %d fields\n", source, ext.ContainerSelector, len(ext.Fields))

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Field", "Selector", "Attribute"})
			for _, f := range ext.Fields {
				attr := f.Attr
				if attr == "" {
					attr = "(text)"
				}
				t.AppendRow(table.Row{f.Name, f.Selector, attr})
			}
			t.SetStyle(table.StyleRounded)
			t.Render()
			return nil
		},
	}
}

