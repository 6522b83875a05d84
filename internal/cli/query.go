package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"channelsdb/internal/domain"
	"channelsdb/internal/ui/services/pagination"
	"channelsdb/internal/ui/services/search"
	"channelsdb/internal/ui/state"
	"channelsdb/internal/ui/views"
)

// queryRequest describes one headless search
type queryRequest struct {
	term     string
	fullText bool
	pages    int    // pages to load per listed scope
	group    string // facet group to drill into, with value
	value    string
}

func newQueryCmd(opts *options) *cobra.Command {
	req := queryRequest{}

	cmd := &cobra.Command{
		Use:   "query <term...>",
		Short: "Run a search without the interactive screen",
		Long: `Runs a search and prints the results as plain text.

Faceted results list every group with its first values. --group and --value
list the entries of one facet value instead; --full-text lists matching
entries directly.

Example:
  channelsdb query p450 --pages 2
  channelsdb query p450 --group "Protein name" --value "Cytochrome P450 3A4"
  channelsdb query gating --full-text`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.term = strings.Join(args, " ")
			if (req.group == "") != (req.value == "") {
				return errors.New("--group and --value must be given together")
			}
			if req.fullText && req.group != "" {
				return errors.New("--full-text cannot be combined with --group")
			}

			env, err := setup(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer env.Close()
			return runQuery(cmd.Context(), env, cmd.OutOrStdout(), req)
		},
	}

	cmd.Flags().BoolVarP(&req.fullText, "full-text", "f", false, "list matching entries instead of groups")
	cmd.Flags().IntVarP(&req.pages, "pages", "p", 1, "pages to load per listing")
	cmd.Flags().StringVar(&req.group, "group", "", "facet group to drill into")
	cmd.Flags().StringVar(&req.value, "value", "", "facet value to list entries for")
	return cmd
}

// runQuery drives the search controller synchronously and prints the outcome
func runQuery(ctx context.Context, env *environment, out io.Writer, req queryRequest) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if req.pages < 1 {
		req.pages = 1
	}

	svc := search.NewService(search.Options{
		Source:     env.source,
		Dispatcher: search.Inline,
		Bus:        env.bus,
		Logger:     env.logger,
		Paging:     env.paging(),
		Context:    ctx,
	})
	links := domain.Links{DetailTemplate: env.config.Links.Detail, FigureTemplate: env.config.Links.Figure}

	if req.fullText {
		svc.OpenFullText(req.term)
		key := domain.FullTextScope(strings.TrimSpace(req.term))
		loadPages(svc, key, req.pages)

		snap := svc.Snapshot()
		if err := stateError(snap); err != nil {
			return err
		}
		if snap.FullText == nil {
			return fmt.Errorf("nothing to search for in %q", req.term)
		}
		fmt.Fprintf(out, "Entries for %q\n", snap.Term)
		printRecords(out, *snap.FullText, links)
		return nil
	}

	svc.SetTerm(req.term)
	svc.SubmitSearch()
	snap := svc.Snapshot()
	if err := stateError(snap); err != nil {
		return err
	}
	searched, ok := snap.State.(state.Searched)
	if !ok {
		return fmt.Errorf("nothing to search for in %q", req.term)
	}
	if searched.Data.Empty() {
		fmt.Fprintf(out, "No results for %q\n", searched.Data.Term)
		return nil
	}

	if req.group != "" {
		return printDrillDown(svc, out, req, links)
	}

	fmt.Fprintf(out, "Results for %q\n", searched.Data.Term)
	for _, g := range searched.Data.Groups {
		svc.ToggleGroup(g.GroupValue)
		loadPages(svc, domain.GroupScope(g.GroupValue), req.pages)
		values := svc.Snapshot().Groups[g.GroupValue].Values

		fmt.Fprintf(out, "\n%s (%d)\n", g.GroupValue, g.TotalCount)
		for _, v := range values.Items {
			fmt.Fprintf(out, "  %s (%d)\n", v.Value, v.Count)
		}
		printFooter(out, values)
	}
	return nil
}

// printDrillDown lists the entries of one facet value
func printDrillDown(svc *search.Service, out io.Writer, req queryRequest, links domain.Links) error {
	if !svc.ToggleGroup(req.group) {
		return fmt.Errorf("no group %q in results for %q", req.group, req.term)
	}
	groupKey := domain.GroupScope(req.group)
	for !svc.SelectGroupValue(req.group, req.value) {
		// the value may sit on a later page of the group
		if !svc.RequestMore(groupKey) || svc.Snapshot().Groups[req.group].Values.Failure != "" {
			return fmt.Errorf("no value %q in group %q", req.value, req.group)
		}
	}
	loadPages(svc, domain.GroupValueScope(req.group, req.value), req.pages)

	drill := svc.Snapshot().Groups[req.group].Drill
	fmt.Fprintf(out, "Entries for %s %q\n", req.group, req.value)
	printRecords(out, *drill, links)
	return nil
}

// loadPages requests more pages of a scope until it has pages loaded, the
// scope is exhausted or a load fails
func loadPages(svc *search.Service, key domain.ScopeKey, pages int) {
	for i := 1; i < pages; i++ {
		if !svc.RequestMore(key) || scopeFailure(svc.Snapshot(), key) != "" {
			return
		}
	}
}

func scopeFailure(snap search.Snapshot, key domain.ScopeKey) string {
	switch key.Kind {
	case domain.ScopeFullText:
		if snap.FullText != nil {
			return snap.FullText.Failure
		}
	case domain.ScopeGroup:
		return snap.Groups[key.Group].Values.Failure
	case domain.ScopeGroupValue:
		if drill := snap.Groups[key.Group].Drill; drill != nil {
			return drill.Failure
		}
	}
	return ""
}

func printRecords(out io.Writer, view pagination.View[domain.Record], links domain.Links) {
	if len(view.Items) == 0 && view.Failure == "" {
		fmt.Fprintln(out, "No entries")
		return
	}
	fmt.Fprintf(out, "%d of %s\n\n", len(view.Items), view.TotalText())
	for _, rec := range view.Items {
		fmt.Fprintln(out, views.PlainCard(rec, links))
	}
	printFooter(out, view)
}

func printFooter[T any](out io.Writer, view pagination.View[T]) {
	switch {
	case view.Failure != "":
		fmt.Fprintf(out, "  load more failed: %s\n", view.Failure)
	case view.Remaining() > 0:
		fmt.Fprintf(out, "  ... %d more\n", view.Remaining())
	}
}

// stateError turns an Error view state into an error
func stateError(snap search.Snapshot) error {
	if e, ok := snap.State.(state.Error); ok {
		return errors.New(e.Message)
	}
	return nil
}
