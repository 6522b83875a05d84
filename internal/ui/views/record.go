package views

import (
	"fmt"
	"strings"

	"channelsdb/internal/domain"
	"channelsdb/internal/ui/services/query"
)

// RecordRenderer handles rendering of records, as list rows and as cards
type RecordRenderer struct {
	styles *Styles
}

// NewRecordRenderer creates a new record renderer
func NewRecordRenderer(styles *Styles) *RecordRenderer {
	return &RecordRenderer{
		styles: styles,
	}
}

// RenderRecord renders a record as a single list row
func (r *RecordRenderer) RenderRecord(row query.IndexInfo, isSelected bool, width int) string {
	rec := row.Record
	line := fmt.Sprintf("%s%s  %s  %s",
		indent(row.Depth),
		r.styles.RecordID.Render(orNA(rec.ID)),
		rec.DisplayTitle(),
		r.styles.Dim.Render(MethodLine(rec)),
	)
	return selectLine(r.styles, line, isSelected, width)
}

// RenderCard renders the full record card used by the detail pager
func (r *RecordRenderer) RenderCard(rec domain.Record, links domain.Links) string {
	var b strings.Builder
	b.WriteString(r.styles.RecordID.Render(orNA(rec.ID)))
	b.WriteString("\n")
	b.WriteString(rec.DisplayTitle())
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%s %s\n", r.styles.Label.Render("Experiment Method:"), MethodLine(rec))
	fmt.Fprintf(&b, "%s %s\n", r.styles.Label.Render("Organism:"), rec.OrganismText())
	fmt.Fprintf(&b, "%s %s\n", r.styles.Label.Render("Detail:"), r.styles.Link.Render(links.Detail(rec)))
	fmt.Fprintf(&b, "%s %s\n", r.styles.Label.Render("Figure:"), r.styles.Link.Render(links.Figure(rec)))
	return b.String()
}

// PlainCard renders a record card without styling
func PlainCard(rec domain.Record, links domain.Links) string {
	return fmt.Sprintf("%s %s\n  Experiment Method: %s\n  Organism: %s\n  %s\n",
		orNA(rec.ID), rec.DisplayTitle(), MethodLine(rec), rec.OrganismText(), links.Detail(rec))
}

// MethodLine joins the experimental methods and the resolution
func MethodLine(rec domain.Record) string {
	return fmt.Sprintf("%s | %s Å", rec.MethodText(), rec.ResolutionText())
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return domain.NotAvailable
	}
	return s
}
