package main

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newPluginsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "plugins",
		Short:       "List the available plugins",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := ctx.ensureRegistry()
			if err != nil {
				return err
			}
			var rows [][]string
			for _, info := range reg.All() {
				phases := make([]string, 0, 3)
				for _, p := range info.Phases() {
					phases = append(phases, string(p))
				}
				rows = append(rows, []string{
					info.Name,
					strings.Join(phases, ","),
					strings.Join(info.Groups, ","),
					strconv.Itoa(info.Priority),
					yesNo(info.Deprecated != ""),
					info.Deprecated,
				})
			}
			writeRows(cmd, []string{"Name", "Phases", "Groups", "Priority", "Deprecated", "Notice"}, rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft})
			return nil
		},
	}
}
