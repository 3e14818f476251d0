package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/multierr"

	"github.com/QuarticCat/enum-ptr/align"
	"github.com/QuarticCat/enum-ptr/witplan"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	kindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	okStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// painter applies a style only when output is styled.
type painter bool

func (p painter) paint(s lipgloss.Style, text string) string {
	if !p {
		return text
	}
	return s.Render(text)
}

// filter keeps results whose name matches q, exactly or as a substring.
func filter(results []witplan.Result, q string, exact bool) []witplan.Result {
	if q == "" {
		return results
	}
	var out []witplan.Result
	for _, r := range results {
		if r.Name == q || (!exact && strings.Contains(r.Name, q)) {
			out = append(out, r)
		}
	}
	return out
}

// summary is the one-line verdict of a result.
func summary(r witplan.Result, p painter) string {
	if !r.OK() {
		n := len(multierr.Errors(r.Err))
		return p.paint(errorStyle, fmt.Sprintf("FAIL (%d problems)", n))
	}
	pl := r.Plan
	return p.paint(okStyle, "ok") + fmt.Sprintf("  %d variants, %d tag bits, mask %#x, min align %d",
		pl.Len(), pl.TagBits, pl.Mask, pl.MinAlign)
}

// details lists the variants of a compactable result, or its problems.
func details(w io.Writer, r witplan.Result, p painter) {
	if !r.OK() {
		for _, err := range multierr.Errors(r.Err) {
			fmt.Fprintf(w, "    %s\n", p.paint(errorStyle, err.Error()))
		}
		return
	}
	for i, v := range r.Plan.Variants {
		kind := v.Witness.Kind.String()
		if v.Witness.Kind != align.KindUnit {
			kind += fmt.Sprintf(", align %d", v.Witness.Alignment)
		}
		fmt.Fprintf(w, "    %d %s %s\n", i, p.paint(nameStyle, v.Name), p.paint(kindStyle, kind))
	}
}

// report prints every result.
func report(w io.Writer, results []witplan.Result, styled bool) {
	p := painter(styled)
	if len(results) == 0 {
		fmt.Fprintln(w, "no variant types")
		return
	}
	ok := 0
	for _, r := range results {
		if r.OK() {
			ok++
		}
		fmt.Fprintf(w, "%s  %s\n", p.paint(nameStyle, r.Name), summary(r, p))
		details(w, r, p)
	}
	fmt.Fprintf(w, "\n%d of %d variant types fit one %d-bit word\n", ok, len(results), witplan.WordBits)
}
