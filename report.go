package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	okStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("82"))
	skipStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	warnStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("221"))
	errStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	pathStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	slicerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
)

// report prints one line per processed file.
func report(w io.Writer, res *result, err error) {
	name := pathStyle.Render(displayName(res.path))
	switch {
	case err == nil:
		fmt.Fprintf(w, "%s %s %s, %d objects\n",
			okStyle.Render("ok"), name, slicerStyle.Render(res.slicer.String()), res.objects)
	case errors.Is(err, ErrAlreadyProcessed):
		fmt.Fprintf(w, "%s %s %s\n", skipStyle.Render("skip"), name, skipStyle.Render(err.Error()))
	case errors.Is(err, ErrNotIdentified):
		fmt.Fprintf(w, "%s %s %s\n", warnStyle.Render("skip"), name, warnStyle.Render(err.Error()))
	default:
		fmt.Fprintf(w, "%s %s %s\n", errStyle.Render("fail"), name, err)
	}
}
