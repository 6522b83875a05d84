package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"channelsdb/internal/domain"
)

const (
	groupField    = "category"
	fullTextField = "pdb_id"
	recordFields  = "pdb_id,title,experimental_method,resolution,organism_scientific_name"
	maxBodyBytes  = 8 << 20
)

// Options configures the HTTP client
type Options struct {
	GroupsURL  string
	EntriesURL string
	GroupLimit int // values per group returned by the faceted search
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client queries a Solr-style search API over HTTP
type Client struct {
	groupsURL  string
	entriesURL string
	groupLimit int
	http       *http.Client
	logger     *zap.Logger
}

// NewClient creates an HTTP ResultSource
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := opts.GroupLimit
	if limit <= 0 {
		limit = 6
	}
	return &Client{
		groupsURL:  opts.GroupsURL,
		entriesURL: opts.EntriesURL,
		groupLimit: limit,
		http:       httpClient,
		logger:     logger.Named("source"),
	}
}

// wire formats

type facetDoc struct {
	Value      string `json:"value"`
	VarName    string `json:"var_name"`
	NumEntries int    `json:"num_pdb_entries"`
}

type recordDoc struct {
	PDBID      string   `json:"pdb_id"`
	Title      string   `json:"title"`
	Methods    []string `json:"experimental_method"`
	Resolution *float64 `json:"resolution"`
	Organisms  []string `json:"organism_scientific_name"`
}

type docList[T any] struct {
	NumFound int `json:"numFound"`
	Start    int `json:"start"`
	Docs     []T `json:"docs"`
}

type group[T any] struct {
	GroupValue *string    `json:"groupValue"`
	DocList    docList[T] `json:"doclist"`
}

type groupedField[T any] struct {
	Matches int        `json:"matches"`
	NGroups *int       `json:"ngroups"`
	Groups  []group[T] `json:"groups"`
}

type facetResponse struct {
	Grouped map[string]groupedField[facetDoc] `json:"grouped"`
}

type fullTextResponse struct {
	Grouped map[string]groupedField[recordDoc] `json:"grouped"`
}

type listResponse[T any] struct {
	Response docList[T] `json:"response"`
}

// SearchFaceted runs the grouped search that backs the results screen
func (c *Client) SearchFaceted(ctx context.Context, term string) (domain.FacetResult, error) {
	params := url.Values{}
	params.Set("q", term)
	params.Set("group", "true")
	params.Set("group.field", groupField)
	params.Set("group.limit", strconv.Itoa(c.groupLimit))
	params.Set("group.ngroups", "true")
	params.Set("wt", "json")

	var resp facetResponse
	if err := c.get(ctx, c.groupsURL, params, &resp); err != nil {
		return domain.FacetResult{}, fmt.Errorf("faceted search %q: %w", term, err)
	}

	result := domain.FacetResult{Term: term}
	grouped, ok := resp.Grouped[groupField]
	if !ok {
		return result, nil
	}
	for _, g := range grouped.Groups {
		if g.GroupValue == nil {
			continue
		}
		result.Groups = append(result.Groups, domain.GroupSummary{
			GroupValue: *g.GroupValue,
			TotalCount: g.DocList.NumFound,
			FirstPage:  toFacetValues(g.DocList.Docs),
		})
	}
	return result, nil
}

// FetchGroupPage pages through the values of one facet group
func (c *Client) FetchGroupPage(ctx context.Context, term, group string, offset, limit int) (domain.Page[domain.FacetValue], error) {
	params := url.Values{}
	params.Set("q", term)
	params.Set("fq", fmt.Sprintf("%s:%s", groupField, quote(group)))
	params.Set("start", strconv.Itoa(offset))
	params.Set("rows", strconv.Itoa(limit))
	params.Set("wt", "json")

	var resp listResponse[facetDoc]
	if err := c.get(ctx, c.groupsURL, params, &resp); err != nil {
		return domain.Page[domain.FacetValue]{}, fmt.Errorf("group %q page at %d: %w", group, offset, err)
	}
	return domain.Page[domain.FacetValue]{
		Items: toFacetValues(resp.Response.Docs),
		Total: resp.Response.NumFound,
	}, nil
}

// FetchGroupValuePage pages through the records carrying one facet value
func (c *Client) FetchGroupValuePage(ctx context.Context, value domain.FacetValue, offset, limit int) (domain.Page[domain.Record], error) {
	params := url.Values{}
	params.Set("q", fmt.Sprintf("%s:%s", value.Field, quote(value.Value)))
	params.Set("fl", recordFields)
	params.Set("start", strconv.Itoa(offset))
	params.Set("rows", strconv.Itoa(limit))
	params.Set("wt", "json")

	var resp listResponse[recordDoc]
	if err := c.get(ctx, c.entriesURL, params, &resp); err != nil {
		return domain.Page[domain.Record]{}, fmt.Errorf("value %q page at %d: %w", value.Value, offset, err)
	}
	return domain.Page[domain.Record]{
		Items: toRecords(resp.Response.Docs),
		Total: resp.Response.NumFound,
	}, nil
}

// SearchFullText runs a free-text search grouped by entry, one record per group
func (c *Client) SearchFullText(ctx context.Context, term string, offset, limit int) (domain.Page[domain.Record], error) {
	params := url.Values{}
	params.Set("q", term)
	params.Set("fl", recordFields)
	params.Set("group", "true")
	params.Set("group.field", fullTextField)
	params.Set("group.ngroups", "true")
	params.Set("start", strconv.Itoa(offset))
	params.Set("rows", strconv.Itoa(limit))
	params.Set("wt", "json")

	var resp fullTextResponse
	if err := c.get(ctx, c.entriesURL, params, &resp); err != nil {
		return domain.Page[domain.Record]{}, fmt.Errorf("full-text %q page at %d: %w", term, offset, err)
	}

	grouped := resp.Grouped[fullTextField]
	page := domain.Page[domain.Record]{Total: grouped.Matches}
	if grouped.NGroups != nil {
		page.Total = *grouped.NGroups
	}
	for _, g := range grouped.Groups {
		if len(g.DocList.Docs) == 0 {
			continue
		}
		page.Items = append(page.Items, toRecord(g.DocList.Docs[0]))
	}
	return page, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return Newf(ErrQuery, 0, "invalid endpoint %q", endpoint)
	}
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Newf(ErrQuery, 0, "building request: %v", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed", zap.String("url", u.String()), zap.Error(err))
		return classifyTransport(err)
	}
	defer resp.Body.Close()

	c.logger.Debug("request done",
		zap.String("url", u.String()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return classifyTransport(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Newf(classifyStatus(resp.StatusCode), resp.StatusCode, "%s", statusMessage(resp.StatusCode, body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return Newf(ErrNetwork, resp.StatusCode, "malformed response: %v", err)
	}
	return nil
}

// statusMessage prefers the Solr error message when the body carries one
func statusMessage(code int, body []byte) string {
	var solrErr struct {
		Error struct {
			Msg string `json:"msg"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &solrErr); err == nil && solrErr.Error.Msg != "" {
		return solrErr.Error.Msg
	}
	return fmt.Sprintf("HTTP %d %s", code, http.StatusText(code))
}

// quote wraps a value as a Solr phrase
func quote(v string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(v) + `"`
}

func toFacetValues(docs []facetDoc) []domain.FacetValue {
	out := make([]domain.FacetValue, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.FacetValue{Value: d.Value, Field: d.VarName, Count: d.NumEntries})
	}
	return out
}

func toRecords(docs []recordDoc) []domain.Record {
	out := make([]domain.Record, 0, len(docs))
	for _, d := range docs {
		out = append(out, toRecord(d))
	}
	return out
}

func toRecord(d recordDoc) domain.Record {
	r := domain.Record{
		ID:        d.PDBID,
		Title:     d.Title,
		Methods:   d.Methods,
		Organisms: d.Organisms,
	}
	if d.Resolution != nil {
		r.Resolution = strconv.FormatFloat(*d.Resolution, 'f', -1, 64)
	}
	return r
}
