// Package render writes presentation tasks for the CLI.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	dom "taskboard/internal/domain"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	idStyle      = lipgloss.NewStyle().Width(6).Align(lipgloss.Right).PaddingRight(2)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Width(9)
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Width(9)
)

// Tasks writes tasks to w in the given format.
func Tasks(w io.Writer, format string, tasks []dom.PresentationTask) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(tasks)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(tasks); err != nil {
			return err
		}
		return enc.Close()
	case FormatTable, "":
		return table(w, tasks)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func table(w io.Writer, tasks []dom.PresentationTask) error {
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(w, "No tasks.")
		return err
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		idStyle.Render("ID"),
		lipgloss.NewStyle().Width(9).Render("STATUS"),
		"TASK",
	)
	if _, err := fmt.Fprintln(w, headerStyle.Render(header)); err != nil {
		return err
	}
	for _, t := range tasks {
		status := pendingStyle
		if t.Status == dom.StatusSuccess {
			status = successStyle
		}
		row := lipgloss.JoinHorizontal(lipgloss.Top,
			idStyle.Render(strconv.FormatInt(t.ID, 10)),
			status.Render(string(t.Status)),
			t.Display,
		)
		if _, err := fmt.Fprintln(w, row); err != nil {
			return err
		}
	}
	return nil
}
