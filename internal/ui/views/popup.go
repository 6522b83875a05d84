package views

import (
	"regexp"

	"github.com/charmbracelet/lipgloss"
)

// PopupRenderer handles boxed messages drawn over the results area
type PopupRenderer struct {
	styles *Styles
}

// NewPopupRenderer creates a new popup renderer
func NewPopupRenderer(styles *Styles) *PopupRenderer {
	return &PopupRenderer{
		styles: styles,
	}
}

// RenderPopup centers a styled box inside a width x height area
func (pr *PopupRenderer) RenderPopup(content string, width, height int, popupStyle lipgloss.Style) string {
	styled := popupStyle.Render(content)
	if w := lipgloss.Width(styled); width < w {
		width = w
	}
	if h := lipgloss.Height(styled); height < h {
		height = h
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, styled)
}

// ANSI escape sequence regex to strip styles/colors
var ansiRE = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// StripANSI removes color and style sequences
func StripANSI(s string) string {
	return ansiRE.ReplaceAllString(s, "")
}
