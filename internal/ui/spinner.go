package ui

import (
	"fmt"

	"github.com/charmbracelet/huh/spinner"
)

// RunWithSpinner executes an action while displaying a spinner.
//
//	var urls []string
//	var findErr error
//	err := RunWithSpinner("Discovering links...", func() {
//	    urls, findErr = d.Discover(ctx, groups)
//	})
func RunWithSpinner(title string, action func()) error {
	err := spinner.New().
		Title(title).
		Style(ProgressStyle).
		Action(action).
		Run()
	if err != nil {
		return fmt.Errorf("spinner error: %w", err)
	}
	return nil
}
