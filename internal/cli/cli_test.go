package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"channelsdb/internal/config"
	"channelsdb/internal/domain"
	"channelsdb/internal/eventbus"
	"channelsdb/internal/source"
	"channelsdb/internal/source/sourcetest"
)

func testEnv(t *testing.T, src source.ResultSource) *environment {
	t.Helper()
	env := &environment{
		config: config.DefaultConfig(),
		logger: zap.NewNop(),
		bus:    eventbus.New(nil),
		source: src,
	}
	t.Cleanup(env.Close)
	return env
}

func query(t *testing.T, src source.ResultSource, req queryRequest) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := runQuery(context.Background(), testEnv(t, src), &out, req)
	return out.String(), err
}

func TestQueryListsGroups(t *testing.T) {
	src := sourcetest.Standard()
	out, err := query(t, src, queryRequest{term: "p450"})
	require.NoError(t, err)

	assert.Contains(t, out, `Results for "p450"`)
	assert.Contains(t, out, "Protein name (12)")
	assert.Contains(t, out, "  Protein name 5 (6)")
	assert.NotContains(t, out, "Protein name 6 ")
	assert.Contains(t, out, "... 6 more")
	assert.Contains(t, out, "Pfam (5)")
	assert.Equal(t, []string{"facet:p450"}, src.Calls())
}

func TestQueryLoadsMorePages(t *testing.T) {
	src := sourcetest.Standard()
	out, err := query(t, src, queryRequest{term: "p450", pages: 3})
	require.NoError(t, err)

	assert.Contains(t, out, "  Protein name 11 (12)")
	assert.NotContains(t, out, "more")
	// exhausted groups are never fetched
	assert.Equal(t, []string{"facet:p450", "group:Protein name@6"}, src.Calls())
}

func TestQueryEmptyResult(t *testing.T) {
	out, err := query(t, sourcetest.Standard(), queryRequest{term: "nothing"})
	require.NoError(t, err)
	assert.Equal(t, "No results for \"nothing\"\n", out)
}

func TestQueryErrorIsReturned(t *testing.T) {
	src := sourcetest.Standard()
	src.Errors["bad"] = source.Newf(source.ErrQuery, 400, "undefined field")

	out, err := query(t, src, queryRequest{term: "bad"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undefined field")
	assert.Empty(t, out)
}

func TestQueryFullText(t *testing.T) {
	src := sourcetest.Standard()
	out, err := query(t, src, queryRequest{term: "gating", fullText: true, pages: 2})
	require.NoError(t, err)

	assert.Contains(t, out, `Entries for "gating"`)
	assert.Contains(t, out, "24 of 30")
	assert.Contains(t, out, "gating-23 Structure 23 of gating")
	assert.Contains(t, out, "Experiment Method: X-ray diffraction | n/a Å")
	assert.Contains(t, out, "... 6 more")
	assert.Equal(t, []string{"text:gating@0", "text:gating@12"}, src.Calls())
}

func TestQueryFullTextFirstPageFailure(t *testing.T) {
	src := sourcetest.Standard()
	src.FailNext(source.Newf(source.ErrNetwork, 0, "connection refused"))

	_, err := query(t, src, queryRequest{term: "gating", fullText: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

// failingMore fails every page after the first
type failingMore struct {
	*sourcetest.Fake
}

func (f failingMore) SearchFullText(ctx context.Context, term string, offset, limit int) (domain.Page[domain.Record], error) {
	if offset > 0 {
		return domain.Page[domain.Record]{}, errors.New("timeout")
	}
	return f.Fake.SearchFullText(ctx, term, offset, limit)
}

func TestQueryLaterPageFailureKeepsItems(t *testing.T) {
	out, err := query(t, failingMore{sourcetest.Standard()}, queryRequest{term: "gating", fullText: true, pages: 3})
	require.NoError(t, err)

	assert.Contains(t, out, "12 of 30")
	assert.Contains(t, out, "load more failed: timeout")
}

func TestQueryDrillDown(t *testing.T) {
	src := sourcetest.Standard()
	out, err := query(t, src, queryRequest{term: "p450", group: "Protein name", value: "Protein name 0"})
	require.NoError(t, err)

	assert.Contains(t, out, `Entries for Protein name "Protein name 0"`)
	assert.Contains(t, out, "6 of 8")
	assert.Contains(t, out, "... 2 more")
	assert.Equal(t, []string{"facet:p450", "value:Protein name 0@0"}, src.Calls())
}

func TestQueryDrillDownPagesThroughGroup(t *testing.T) {
	src := sourcetest.Standard()
	out, err := query(t, src, queryRequest{term: "p450", group: "Protein name", value: "Protein name 8"})
	require.NoError(t, err)

	assert.Contains(t, out, "No entries")
	assert.Equal(t, []string{"facet:p450", "group:Protein name@6", "value:Protein name 8@0"}, src.Calls())
}

func TestQueryDrillDownUnknownValue(t *testing.T) {
	_, err := query(t, sourcetest.Standard(), queryRequest{term: "p450", group: "Protein name", value: "nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no value "nope"`)

	_, err = query(t, sourcetest.Standard(), queryRequest{term: "p450", group: "Nope", value: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no group "Nope"`)
}

func TestQueryFlagValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing term", []string{"query"}, "requires at least 1 arg"},
		{"group without value", []string{"query", "p450", "--group", "Pfam"}, "must be given together"},
		{"full-text with group", []string{"query", "p450", "-f", "--group", "Pfam", "--value", "x"}, "cannot be combined"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewRootCmd()
			cmd.SetArgs(tt.args)
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			err := cmd.Execute()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadConfigCreatesFileAndAppliesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, written, err := loadConfig(&options{
		configPath:  path,
		apiURL:      "http://localhost:8983/groups",
		metricsAddr: "127.0.0.1:9464",
		logLevel:    "debug",
	})
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Equal(t, path, written)
	assert.Equal(t, "http://localhost:8983/groups", cfg.API.GroupsURL)
	assert.Equal(t, config.DefaultConfig().API.EntriesURL, cfg.API.EntriesURL)
	assert.Equal(t, "127.0.0.1:9464", cfg.Metrics.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)

	// overrides are not written back
	saved, err := config.NewConfigServiceAt(path).Load()
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().API.GroupsURL, saved.API.GroupsURL)

	_, written, err = loadConfig(&options{configPath: path})
	require.NoError(t, err)
	assert.Empty(t, written, "existing file is not rewritten")
}

func TestLoadConfigRejectsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[paging]\nfull_text = 0\n"), 0644))

	_, _, err := loadConfig(&options{configPath: path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func TestSetupWiresCacheAndMetrics(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	cfg := config.DefaultConfig()
	cfg.Log.File = ""
	cfg.Metrics.Addr = "127.0.0.1:0"
	require.NoError(t, config.NewConfigServiceAt(path).Save(cfg))

	env, err := setup(context.Background(), &options{configPath: path})
	require.NoError(t, err)

	assert.NotNil(t, env.cache)
	assert.Same(t, env.cache, env.source)
	require.NotNil(t, env.metrics)
	assert.Equal(t, 6, env.paging().GroupValues)
	assert.Equal(t, 12, env.paging().FullText)

	env.Close()
}

func TestSetupWithoutCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := config.DefaultConfig()
	cfg.Log.File = ""
	cfg.Cache.Enabled = false
	require.NoError(t, config.NewConfigServiceAt(path).Save(cfg))

	env, err := setup(context.Background(), &options{configPath: path})
	require.NoError(t, err)
	defer env.Close()

	assert.Nil(t, env.cache)
	assert.IsType(t, &source.Client{}, env.source)
	assert.Nil(t, env.metrics)
}
