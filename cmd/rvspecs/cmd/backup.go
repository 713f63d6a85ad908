package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/thesavant42/rvspecs/internal/mapping"
	"github.com/thesavant42/rvspecs/internal/ui"
)

var backupCmd = &cobra.Command{
	Use:   "backup [files...]",
	Short: "Copies the domain mappings, synonyms and any given files into the backup directory.",
	RunE: func(cmd *cobra.Command, args []string) error {
		paths := append([]string{cfg.MappingsFile, cfg.SynonymsFile}, args...)
		created, err := mapping.Backup(cfg.BackupDir, paths...)
		if err != nil {
			return err
		}
		if len(created) == 0 {
			ui.PrintWarning("Nothing to back up")
			return nil
		}
		for _, path := range created {
			ui.PrintSuccess(fmt.Sprintf("Backed up to %s", path))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(backupCmd)
}
