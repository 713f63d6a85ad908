package ui

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/thesavant42/rvspecs/internal/models"
)

// PrintProgress prints the per-record progress line
func PrintProgress(done, total int) {
	fmt.Println(ProgressStyle.Render(ProgressLine(done, total)))
}

// ProgressLine formats the per-record progress message
func ProgressLine(done, total int) string {
	return fmt.Sprintf("Scraped and saved data for %d of %d", done, total)
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Println(SuccessStyle.Render(message))
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Println(AccentStyle.Render(message))
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Println(ErrorStyle.Render("Error: " + message))
}

// NewTable creates a go-pretty table writer mirrored to w
func NewTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	if w != nil {
		t.SetOutputMirror(w)
	}
	return t
}

// RenderFailures renders the failed URLs of a run
func RenderFailures(w io.Writer, failures []models.Failure) string {
	t := NewTable(w)
	t.AppendHeader(table.Row{"#", "URL", "Stage", "Error"})
	for i, f := range failures {
		t.AppendRow(table.Row{i + 1, f.URL, f.Stage, f.Err})
	}
	t.AppendFooter(table.Row{"", "", "Failed", strconv.Itoa(len(failures))})
	return t.Render()
}

// MakeCount is one row of the per-make summary
type MakeCount struct {
	Make  string
	Count int
}

// RenderMakeCounts renders how many records each make has
func RenderMakeCounts(w io.Writer, counts []MakeCount) string {
	t := NewTable(w)
	t.AppendHeader(table.Row{"Make", "Records"})
	total := 0
	for _, c := range counts {
		t.AppendRow(table.Row{c.Make, c.Count})
		total += c.Count
	}
	t.AppendFooter(table.Row{"Total", total})
	return t.Render()
}
