package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/nicobailon/gw/internal/navigator"
	"github.com/nicobailon/gw/internal/tui/theme"
)

const divider = "────────────────────────"

// chrome is the number of lines around the list: header, divider, filter,
// blank, chord and status.
const chrome = 6

// RenderFrame draws a browse, filter or confirm screen. height bounds the
// list so the selected row stays visible; zero means unbounded.
func RenderFrame(f navigator.Frame, width, height int) string {
	var b strings.Builder
	b.WriteString(header(f))
	b.WriteString("\n")
	b.WriteString(theme.SeparatorStyle.Render(divider))
	b.WriteString("\n")
	b.WriteString(filterLine(f))
	b.WriteString("\n")

	if len(f.Rows) == 0 {
		b.WriteString(theme.DimStyle.Render(emptyText(f)))
		b.WriteString("\n")
	}
	start, end := window(len(f.Rows), f.Selected, height-chrome-2)
	for _, r := range f.Rows[start:end] {
		b.WriteString(row(r, f.Chord))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if f.Chord != "" {
		b.WriteString(theme.DimStyle.Render("keys: ") + theme.KeyStyle.Render(f.Chord))
		b.WriteString("\n")
	}
	b.WriteString(status(f))

	out := theme.ListFrameStyle.Render(b.String())
	if width > 0 {
		out = lipgloss.NewStyle().MaxWidth(width).Render(out)
	}
	return out
}

// RenderHelp draws the help overlay: the key list followed by the rules the
// new-worktree prompt applies to its input.
func RenderHelp(f navigator.Frame, keys string) string {
	title := theme.Logo + theme.DimStyle.Render(" help")
	parts := []string{
		title,
		theme.SeparatorStyle.Render(divider),
		"",
		keys,
	}
	if f.HelpRules != "" {
		parts = append(parts, "", theme.SubTextStyle.Render(f.HelpRules))
	}
	parts = append(parts, "", theme.DimStyle.Render(f.Status))
	return theme.ModalStyle.Render(strings.Join(parts, "\n"))
}

func header(f navigator.Frame) string {
	h := theme.Logo + "  " + theme.TitleStyle.Render(f.Title)
	if f.Repo != "" {
		h += theme.DimStyle.Render("  " + f.Repo)
	}
	return h
}

func filterLine(f navigator.Frame) string {
	switch {
	case f.Mode == navigator.Filter:
		return theme.SectionStyle.Render("/") + " " + theme.FilterStyle.Render(f.Filter) + theme.DimStyle.Render("▏")
	case f.Filter != "":
		return theme.DimStyle.Render("/ ") + theme.FilterStyle.Render(f.Filter)
	}
	return ""
}

func emptyText(f navigator.Frame) string {
	if f.Filter != "" {
		return "(no matches)"
	}
	if f.Screen == navigator.WorktreeScreen {
		return "(no worktrees)"
	}
	return "(no repositories yet; run gw new or gw scan)"
}

func row(r navigator.Row, typed string) string {
	marker := "  "
	if r.Selected {
		marker = theme.TitleStyle.Render("> ")
	}
	code := codeCell(r.Code, typed)
	primary := theme.TextStyle.Render(r.Primary)
	if r.Selected {
		primary = theme.SelectedStyle.Render(r.Primary)
	}
	line := marker + code + " " + primary
	if r.Secondary != "" {
		line += "  " + theme.BranchStyle.Render(r.Secondary)
	}
	return line
}

// codeCell pads the hotkey to two columns and dims the part already typed.
func codeCell(code, typed string) string {
	cell := fmt.Sprintf("%-2s", code)
	if typed != "" && strings.HasPrefix(code, typed) {
		return theme.DimStyle.Render(typed) + theme.KeyStyle.Render(cell[len(typed):])
	}
	return theme.KeyStyle.Render(cell)
}

func status(f navigator.Frame) string {
	switch {
	case f.Mode == navigator.ConfirmDelete:
		return theme.WarnStyle.Render(f.Status)
	case strings.Contains(f.Status, "failed"):
		return theme.ErrorStyle.Render(f.Status)
	case strings.HasPrefix(f.Status, "worktree created"), f.Status == "worktree removed":
		return theme.SuccessStyle.Render(f.Status)
	}
	return theme.DimStyle.Render(f.Status)
}

// window returns the slice bounds of at most size rows around selected.
func window(n, selected, size int) (int, int) {
	if size <= 0 || n <= size {
		return 0, n
	}
	start := selected - size/2
	if start < 0 {
		start = 0
	}
	if start+size > n {
		start = n - size
	}
	return start, start + size
}
