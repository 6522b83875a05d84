package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"channelsdb/internal/ui/services/query"
)

const loadMoreFailed = "load more failed, try again"

// GroupRenderer handles rendering of facet groups, their values and the
// paging rows below them
type GroupRenderer struct {
	styles *Styles
}

// NewGroupRenderer creates a new group renderer
func NewGroupRenderer(styles *Styles) *GroupRenderer {
	return &GroupRenderer{
		styles: styles,
	}
}

// RenderGroupHeader renders a group header
func (g *GroupRenderer) RenderGroupHeader(row query.IndexInfo, isSelected bool, term string, width int) string {
	arrow := "▶"
	if row.Expanded {
		arrow = "▼"
	}

	name := row.Group
	if term != "" && strings.Contains(strings.ToLower(name), strings.ToLower(term)) {
		name = g.highlightMatch(name, term, g.styles.Highlight, lipgloss.NewStyle())
	}

	line := fmt.Sprintf("%s %s %s", arrow, name, g.styles.Count.Render(fmt.Sprintf("(%d)", row.Count)))
	return selectLine(g.styles, line, isSelected, width)
}

// RenderValue renders one facet value of an expanded group
func (g *GroupRenderer) RenderValue(row query.IndexInfo, isSelected bool, term string, width int) string {
	marker := "▸"
	if row.Selected {
		marker = "▾"
	}

	name := row.Value.Value
	if term != "" && strings.Contains(strings.ToLower(name), strings.ToLower(term)) {
		name = g.highlightMatch(name, term, g.styles.Highlight, lipgloss.NewStyle())
	}

	line := fmt.Sprintf("%s%s %s %s", indent(row.Depth), marker, name, g.styles.Count.Render(fmt.Sprintf("(%d)", row.Value.Count)))
	return selectLine(g.styles, line, isSelected, width)
}

// RenderDrillBack renders the row that closes a drill-down
func (g *GroupRenderer) RenderDrillBack(row query.IndexInfo, isSelected bool, width int) string {
	line := indent(row.Depth) + g.styles.Dim.Render("◀ back")
	return selectLine(g.styles, line, isSelected, width)
}

// RenderMore renders the paging row of a scope. Group value listings show how
// many values are left; record listings use "Show more".
func (g *GroupRenderer) RenderMore(row query.IndexInfo, isSelected bool, spinner string, width int) string {
	var text string
	switch {
	case row.Pending:
		text = g.styles.StatusLoading.Render(strings.TrimSpace(spinner + " Loading..."))
	case row.Failure != "":
		text = g.styles.StatusError.Render(loadMoreFailed)
	default:
		text = g.styles.More.Render(MoreLabel(row))
	}
	return selectLine(g.styles, indent(row.Depth)+text, isSelected, width)
}

// MoreLabel is the text of an idle paging row
func MoreLabel(row query.IndexInfo) string {
	if row.Group != "" && row.Depth == 1 && row.Remaining > 0 {
		return fmt.Sprintf("More (%d remaining)", row.Remaining)
	}
	return "Show more"
}

// highlightMatch highlights matching text within a string
func (g *GroupRenderer) highlightMatch(text, term string, highlightStyle, normalStyle lipgloss.Style) string {
	index := strings.Index(strings.ToLower(text), strings.ToLower(term))
	if index == -1 || index+len(term) > len(text) {
		return normalStyle.Render(text)
	}

	before := text[:index]
	match := text[index : index+len(term)]
	after := text[index+len(term):]

	var result []string
	if before != "" {
		result = append(result, normalStyle.Render(before))
	}
	result = append(result, highlightStyle.Render(match))
	if after != "" {
		result = append(result, normalStyle.Render(after))
	}

	return strings.Join(result, "")
}

func indent(depth int) string {
	return strings.Repeat("  ", depth)
}

// selectLine truncates a line to width and paints the selection background
func selectLine(styles *Styles, line string, isSelected bool, width int) string {
	if width > 0 && lipgloss.Width(line) > width {
		line = lipgloss.NewStyle().MaxWidth(width).Render(line)
	}
	if !isSelected {
		return line
	}
	if width > 0 {
		if lineLen := lipgloss.Width(line); lineLen < width {
			line += strings.Repeat(" ", width-lineLen)
		}
	}
	return styles.SelectionBg.Render(line)
}
