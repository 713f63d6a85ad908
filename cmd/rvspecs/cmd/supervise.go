package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/spf13/cobra"
)

var superviseCmd = &cobra.Command{
	Use:   "supervise -- [scrape flags...]",
	Short: "Runs scrape in a child process and restarts it when it exits with an error.",
	RunE: func(cmd *cobra.Command, args []string) error {
		self, err := os.Executable()
		if err != nil {
			return fmt.Errorf("failed to locate executable: %w", err)
		}

		childArgs := append([]string{"scrape", "--config", configPath}, args...)
		for attempt := 0; ; attempt++ {
			child := exec.CommandContext(cmd.Context(), self, childArgs...)
			child.Stdin = os.Stdin
			child.Stdout = os.Stdout
			child.Stderr = os.Stderr

			err := child.Run()
			if err == nil {
				logger.Info("scrape finished")
				return nil
			}

			var exitErr *exec.ExitError
			if !errors.As(err, &exitErr) {
				return fmt.Errorf("failed to run scrape: %w", err)
			}
			if cmd.Context().Err() != nil {
				return cmd.Context().Err()
			}
			if attempt >= cfg.MaxRestarts {
				return fmt.Errorf("scrape failed after %d restarts: exit code %d", attempt, exitErr.ExitCode())
			}

			logger.Warn("scrape exited, restarting", "code", exitErr.ExitCode(), "attempt", attempt+1, "max", cfg.MaxRestarts)
			time.Sleep(cfg.RestartDelay())
		}
	},
}

func init() {
	rootCmd.AddCommand(superviseCmd)
}
