package cli

import (
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newModulesCmd(a *app) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "modules",
		Short: "List registered scan modules",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := newRegistry()
			if err != nil {
				return err
			}
			excluded := a.cfg.GetExcludedModules()

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Category", "Module", "Enabled", "Description"})
			table.SetAutoWrapText(false)
			table.SetBorder(false)

			for _, c := range reg.Categories() {
				if category != "" && string(c) != category {
					continue
				}
				for _, d := range reg.Descriptors(c) {
					enabled := "yes"
					if !excluded.Included(d.Name) {
						enabled = "no"
					}
					table.Append([]string{string(c), d.Name, enabled, d.Description})
				}
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "only list this category")
	return cmd
}
