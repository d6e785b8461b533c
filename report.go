package codemod

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Reporter prints one line per processed file. Colours are only emitted
// when out is a colour terminal, so piped output stays plain.
type Reporter struct {
	out          io.Writer
	patchedStyle lipgloss.Style
	noopStyle    lipgloss.Style
}

func NewReporter(out io.Writer) *Reporter {
	r := lipgloss.NewRenderer(out)
	return &Reporter{
		out:          out,
		patchedStyle: r.NewStyle().Foreground(lipgloss.Color("78")),
		noopStyle:    r.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

func (r *Reporter) Report(res FileResult) {
	fmt.Fprintln(r.out, r.FormatResult(res))
}

func (r *Reporter) FormatResult(res FileResult) string {
	style := r.noopStyle
	if res.Status == StatusPatched {
		style = r.patchedStyle
	}
	return style.Render(res.Status.String()+":") + " " + res.Path
}
