package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/thesavant42/rvspecs/internal/models"
)

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Heater", "Heater"},
		{"Hea\x00ter", "Heater"},
		{"Furnace\x1b btu", "Furnace btu"},
		{"tab\tkept", "tab\tkept"},
	}
	for _, tt := range tests {
		if got := sanitizeInput(tt.in); got != tt.want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestProgressLine(t *testing.T) {
	assert.Equal(t, "Scraped and saved data for 3 of 10", ProgressLine(3, 10))
}

func TestNewLayoutClamps(t *testing.T) {
	assert.Equal(t, MinViewportWidth, NewLayout(20).ViewportWidth)
	assert.Equal(t, MaxViewportWidth, NewLayout(500).ViewportWidth)
	assert.Equal(t, 98, NewLayout(100).InnerWidth)
}

func TestRenderFailures(t *testing.T) {
	out := RenderFailures(nil, []models.Failure{
		{URL: "https://example.com/a", Stage: "fetch", Err: "timeout"},
	})
	assert.Contains(t, out, "https://example.com/a")
	assert.Contains(t, out, "timeout")
	assert.Contains(t, strings.ToUpper(out), "FAILED")
}

func TestRenderMakeCounts(t *testing.T) {
	out := RenderMakeCounts(nil, []MakeCount{{"Jayco", 2}, {"Grand Design", 3}})
	assert.Contains(t, out, "Grand Design")
	assert.Contains(t, out, "5")
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestReviewModelFilter(t *testing.T) {
	m := newReviewModel([]ReviewItem{
		{Make: "Jayco", Name: "2024 Jayco Eagle 284BHOK"},
		{Make: "Grand Design", Name: "2024 Grand Design Imagine 2500rl", Verify: []string{"Heater", "Shower"}},
	})
	assert.Len(t, m.table.Rows(), 2)

	updated, _ := m.Update(key("f"))
	m = updated.(reviewModel)
	assert.Len(t, m.table.Rows(), 1)

	it, ok := m.selected()
	assert.True(t, ok)
	assert.Equal(t, "Grand Design", it.Make)
	assert.Contains(t, m.View(), "Heater, Shower")
}

func TestReviewModelQuit(t *testing.T) {
	m := newReviewModel(nil)
	updated, cmd := m.Update(key("q"))
	assert.NotNil(t, cmd)
	assert.True(t, updated.(reviewModel).quitting)
	assert.Empty(t, updated.(reviewModel).View())
}
