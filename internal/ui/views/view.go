package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"channelsdb/internal/ui/services/query"
	"channelsdb/internal/ui/services/search"
	"channelsdb/internal/ui/state"
)

// ViewState contains all the state needed for rendering
type ViewState struct {
	Width          int
	Height         int
	Snapshot       search.Snapshot
	Rows           []query.IndexInfo
	SelectedIndex  int
	ViewportOffset int
	ViewportHeight int
	Editing        bool   // search box has focus
	TextInput      string // rendered search box
	Spinner        string // current spinner frame
	StatusMessage  string
	HelpModel      help.Model
	Keys           KeyMap
}

// Renderer handles all view rendering
type Renderer struct {
	styles      *Styles
	groupRender *GroupRenderer
	recRender   *RecordRenderer
	popupRender *PopupRenderer
}

// NewRenderer creates a new renderer
func NewRenderer() *Renderer {
	styles := NewStyles()
	return &Renderer{
		styles:      styles,
		groupRender: NewGroupRenderer(styles),
		recRender:   NewRecordRenderer(styles),
		popupRender: NewPopupRenderer(styles),
	}
}

// Records exposes the record renderer for the detail pager
func (r *Renderer) Records() *RecordRenderer {
	return r.recRender
}

// Render produces the complete view
func (r *Renderer) Render(vs ViewState) string {
	content := &strings.Builder{}

	termWidth := vs.Width
	if termWidth <= 0 {
		termWidth = 80
	}
	innerWidth := termWidth - 4 // main container padding

	content.WriteString(r.renderTitle(vs, innerWidth))
	content.WriteString("\n")
	content.WriteString(r.renderSearchLine(vs))
	content.WriteString("\n\n")

	switch v := vs.Snapshot.State.(type) {
	case state.Info:
		content.WriteString(r.renderInfo())
	case state.Loading:
		content.WriteString(r.styles.StatusLoading.Render(strings.TrimSpace(vs.Spinner + " " + v.Message)))
	case state.Searched:
		if v.Data.Empty() {
			content.WriteString(r.styles.Dim.Render(fmt.Sprintf("No results for %q", v.Data.Term)))
		} else {
			content.WriteString(r.renderRows(vs, innerWidth))
		}
	case state.Entries:
		content.WriteString(r.renderEntries(vs, innerWidth))
	case state.Error:
		box := r.styles.StatusError.Render("Error: "+v.Message) + "\n\n" + r.styles.Dim.Render("Press / to search again")
		content.WriteString(r.popupRender.RenderPopup(box, innerWidth, 0, r.styles.ErrorBox))
	}

	bottom := ""
	if vs.StatusMessage != "" {
		bottom = r.styles.Status.Render(vs.StatusMessage)
	} else {
		hm := vs.HelpModel
		hm.Width = innerWidth
		bottom = hm.View(contextKeys{KeyMap: vs.Keys, kind: kindOf(vs.Snapshot), editing: vs.Editing})
	}

	// Push the help line to the bottom of the screen
	currentLines := strings.Count(content.String(), "\n") + 1
	availableLines := vs.Height - 2 // Padding(1, 2)
	if availableLines <= 0 {
		availableLines = 22
	}
	if padding := availableLines - currentLines - 1; padding > 0 {
		content.WriteString(strings.Repeat("\n", padding))
	}
	content.WriteString("\n")
	content.WriteString(bottom)

	mainStyle := r.styles.Main
	if vs.Height > 0 {
		mainStyle = mainStyle.MaxHeight(vs.Height)
	}
	return mainStyle.Render(content.String())
}

// renderTitle renders the logo with right-aligned loading indicators
func (r *Renderer) renderTitle(vs ViewState, width int) string {
	logo := r.styles.Title.Render("channelsdb")

	var indicators []string
	if n := pendingScopes(vs.Snapshot); n > 0 {
		indicators = append(indicators, fmt.Sprintf("%s Loading %d", vs.Spinner, n))
	}
	if len(indicators) == 0 {
		return logo
	}

	right := r.styles.Dim.Render(strings.Join(indicators, " | "))
	padding := width - lipgloss.Width(logo) - lipgloss.Width(right)
	if padding > 0 {
		return logo + strings.Repeat(" ", padding) + right
	}
	return logo + "  " + right
}

// renderSearchLine renders the focused search box or the committed term
func (r *Renderer) renderSearchLine(vs ViewState) string {
	if vs.Editing {
		return vs.TextInput
	}
	if v, ok := vs.Snapshot.State.(state.Entries); ok {
		total := "?"
		if ft := vs.Snapshot.FullText; ft != nil {
			total = ft.TotalText()
		}
		return fmt.Sprintf("%s %s %s", r.styles.Prompt.Render("Search:"), v.Term, r.styles.Count.Render("("+total+")"))
	}
	if vs.Snapshot.Term == "" {
		return r.styles.Dim.Render("Press / to search")
	}
	return fmt.Sprintf("%s %s", r.styles.Prompt.Render("Search:"), vs.Snapshot.Term)
}

func (r *Renderer) renderInfo() string {
	lines := []string{
		"Search the ChannelsDB annotations by protein, family or keyword.",
		"",
		r.styles.Dim.Render("/ then enter    grouped results with counts per category"),
		r.styles.Dim.Render("/ then ctrl+f   full-text search over all entries"),
	}
	return strings.Join(lines, "\n")
}

// renderEntries renders full-text mode
func (r *Renderer) renderEntries(vs ViewState, width int) string {
	ft := vs.Snapshot.FullText
	if ft == nil || len(ft.Items) == 0 {
		switch {
		case ft == nil || ft.Pending:
			return r.styles.StatusLoading.Render(strings.TrimSpace(vs.Spinner + " Loading entries..."))
		case ft.Failure != "":
			return r.styles.StatusError.Render(loadMoreFailed)
		default:
			return r.styles.Dim.Render("No entries")
		}
	}
	return r.renderRows(vs, width)
}

// renderRows renders the visible window of rows with scroll indicators
func (r *Renderer) renderRows(vs ViewState, width int) string {
	term := vs.Snapshot.Term
	total := len(vs.Rows)

	effectiveHeight := vs.ViewportHeight
	if effectiveHeight <= 0 {
		effectiveHeight = total
	}
	needsTopIndicator := vs.ViewportOffset > 0
	needsBottomIndicator := total > vs.ViewportOffset+effectiveHeight
	if needsTopIndicator {
		effectiveHeight--
	}
	if needsBottomIndicator {
		effectiveHeight--
	}
	if effectiveHeight < 1 {
		effectiveHeight = 1
	}

	var lines []string
	if needsTopIndicator {
		lines = append(lines, r.styles.Scroll.Render(fmt.Sprintf("↑ %d more above ↑", vs.ViewportOffset)))
	}

	end := vs.ViewportOffset + effectiveHeight
	if end > total {
		end = total
	}
	for i := vs.ViewportOffset; i < end; i++ {
		lines = append(lines, r.renderRow(vs.Rows[i], i == vs.SelectedIndex, term, vs.Spinner, width))
	}

	if needsBottomIndicator {
		itemsBelow := total - end
		if itemsBelow < 0 {
			itemsBelow = 0
		}
		lines = append(lines, r.styles.Scroll.Render(fmt.Sprintf("↓ %d more below ↓", itemsBelow)))
	}

	return strings.Join(lines, "\n")
}

func (r *Renderer) renderRow(row query.IndexInfo, isSelected bool, term, spinner string, width int) string {
	switch row.Type {
	case query.IndexTypeGroup:
		return r.groupRender.RenderGroupHeader(row, isSelected, term, width)
	case query.IndexTypeValue:
		return r.groupRender.RenderValue(row, isSelected, term, width)
	case query.IndexTypeDrillBack:
		return r.groupRender.RenderDrillBack(row, isSelected, width)
	case query.IndexTypeRecord:
		return r.recRender.RenderRecord(row, isSelected, width)
	case query.IndexTypeMore:
		return r.groupRender.RenderMore(row, isSelected, spinner, width)
	default:
		return ""
	}
}

// pendingScopes counts scopes with a fetch in flight
func pendingScopes(snap search.Snapshot) int {
	n := 0
	for _, gv := range snap.Groups {
		if gv.Values.Pending {
			n++
		}
		if gv.Drill != nil && gv.Drill.Pending {
			n++
		}
	}
	if snap.FullText != nil && snap.FullText.Pending {
		n++
	}
	return n
}

func kindOf(snap search.Snapshot) state.Kind {
	if snap.State == nil {
		return state.KindInfo
	}
	return snap.State.Kind()
}
