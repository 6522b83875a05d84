//go:build e2e && unix

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// fakeBackend serves a small Solr-style index: "p450" matches two facet
// groups, "gating" matches 20 entries in full text and "bad" is rejected.
type fakeBackend struct {
	*httptest.Server

	mu       sync.Mutex
	requests []string
}

var facetGroups = []struct {
	name  string
	field string
	count int
}{
	{"Protein name", "molecule_name", 9},
	{"Pfam", "pfam_name", 2},
}

const fullTextMatches = 20

func newFakeBackend() *fakeBackend {
	b := &fakeBackend{}
	mux := http.NewServeMux()
	mux.HandleFunc("/groups", b.groups)
	mux.HandleFunc("/entries", b.entries)
	b.Server = httptest.NewServer(mux)
	return b
}

// Requests returns the query strings received so far
func (b *fakeBackend) Requests() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.requests...)
}

func (b *fakeBackend) record(r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, r.URL.Path+"?"+r.URL.RawQuery)
}

func (b *fakeBackend) groups(w http.ResponseWriter, r *http.Request) {
	b.record(r)
	q := r.URL.Query()
	if q.Get("q") == "bad" {
		w.WriteHeader(http.StatusBadRequest)
		writeJSON(w, map[string]any{"error": map[string]any{"msg": "undefined field bad", "code": 400}})
		return
	}
	if q.Get("q") != "p450" {
		writeJSON(w, map[string]any{"grouped": map[string]any{"category": map[string]any{"matches": 0, "groups": []any{}}}})
		return
	}

	if fq := q.Get("fq"); fq != "" {
		for _, g := range facetGroups {
			if fq == fmt.Sprintf("category:%q", g.name) {
				start, rows := paging(q)
				writeJSON(w, map[string]any{"response": map[string]any{
					"numFound": g.count,
					"start":    start,
					"docs":     facetDocs(g.name, g.field, start, min(start+rows, g.count)),
				}})
				return
			}
		}
		writeJSON(w, map[string]any{"response": map[string]any{"numFound": 0, "docs": []any{}}})
		return
	}

	limit, _ := strconv.Atoi(q.Get("group.limit"))
	groups := make([]any, 0, len(facetGroups))
	for _, g := range facetGroups {
		groups = append(groups, map[string]any{
			"groupValue": g.name,
			"doclist": map[string]any{
				"numFound": g.count,
				"start":    0,
				"docs":     facetDocs(g.name, g.field, 0, min(limit, g.count)),
			},
		})
	}
	writeJSON(w, map[string]any{"grouped": map[string]any{"category": map[string]any{
		"matches": 11,
		"ngroups": len(groups),
		"groups":  groups,
	}}})
}

func (b *fakeBackend) entries(w http.ResponseWriter, r *http.Request) {
	b.record(r)
	q := r.URL.Query()
	start, rows := paging(q)

	// drill-down into one facet value: q=<field>:"<value>"
	if field, value, ok := strings.Cut(q.Get("q"), ":"); ok {
		value = strings.Trim(value, `"`)
		prefix := strings.ToUpper(strings.ReplaceAll(value, " ", ""))
		total := 3
		if field == "pfam_name" {
			total = 0
		}
		writeJSON(w, map[string]any{"response": map[string]any{
			"numFound": total,
			"start":    start,
			"docs":     recordDocs(prefix, start, min(start+rows, total)),
		}})
		return
	}

	total := 0
	if q.Get("q") == "gating" {
		total = fullTextMatches
	}
	groups := []any{}
	for _, d := range recordDocs("GAT", start, min(start+rows, total)) {
		groups = append(groups, map[string]any{
			"groupValue": d["pdb_id"],
			"doclist":    map[string]any{"numFound": 1, "docs": []any{d}},
		})
	}
	writeJSON(w, map[string]any{"grouped": map[string]any{"pdb_id": map[string]any{
		"matches": total * 2,
		"ngroups": total,
		"groups":  groups,
	}}})
}

func facetDocs(group, field string, from, to int) []map[string]any {
	docs := []map[string]any{}
	for i := from; i < to; i++ {
		docs = append(docs, map[string]any{
			"value":           fmt.Sprintf("%s %d", group, i),
			"var_name":        field,
			"num_pdb_entries": i + 1,
		})
	}
	return docs
}

func recordDocs(prefix string, from, to int) []map[string]any {
	docs := []map[string]any{}
	for i := from; i < to; i++ {
		doc := map[string]any{
			"pdb_id":                   fmt.Sprintf("%s%d", prefix, i),
			"title":                    fmt.Sprintf("Channel structure %d", i),
			"experimental_method":      []string{"X-ray diffraction"},
			"organism_scientific_name": []string{"Homo sapiens"},
		}
		if i%2 == 0 {
			doc["resolution"] = 2.1
		}
		docs = append(docs, doc)
	}
	return docs
}

func paging(q map[string][]string) (start, rows int) {
	get := func(k string) string {
		if v := q[k]; len(v) > 0 {
			return v[0]
		}
		return ""
	}
	start, _ = strconv.Atoi(get("start"))
	rows, _ = strconv.Atoi(get("rows"))
	if rows == 0 {
		rows = 10
	}
	return start, rows
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// UseBackend starts a fake backend for this test and writes a config
// pointing at it
func (tf *TUITestFramework) UseBackend() (*fakeBackend, error) {
	if tf.workspace == "" {
		tf.workspace = tf.t.TempDir()
	}
	backend := newFakeBackend()
	tf.t.Cleanup(backend.Close)

	config := fmt.Sprintf(`version = 1

[api]
groups_url = %q
entries_url = %q
timeout = "5s"

[cache]
enabled = true
ttl = "1m"

[log]
file = %q
level = "debug"
`, backend.URL+"/groups", backend.URL+"/entries", filepath.Join(tf.workspace, "channelsdb.log"))

	tf.config = filepath.Join(tf.workspace, "config.toml")
	if err := os.WriteFile(tf.config, []byte(config), 0644); err != nil {
		return nil, err
	}
	return backend, nil
}
