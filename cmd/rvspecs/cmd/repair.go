package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/thesavant42/rvspecs/internal/output"
	"github.com/thesavant42/rvspecs/internal/ui"
)

var repairCmd = &cobra.Command{
	Use:   "repair [output files...]",
	Short: "Closes JSON arrays left unterminated by an interrupted run.",
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := outputFiles(args)
		if err != nil {
			return err
		}
		for _, file := range files {
			changed, err := output.RepairBrackets(file)
			if err != nil {
				return err
			}
			if changed {
				ui.PrintSuccess(fmt.Sprintf("Repaired %s", file))
			} else {
				fmt.Println(ui.HintStyle.Render(file + " is already valid"))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(repairCmd)
}
