package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pendergraft/trustscore/pkg/client"
)

const panelJSON = `{"insights":{` +
	`"🟧 Overall result":"average",` +
	`"details":"",` +
	`"🟩 Contract popularity":"100+ transactions",` +
	`"🟥 Previous interactions":"no previous interactions",` +
	`"🟧 Contract age":"older than 1 month",` +
	`"🟧 Contract verification":"not verified on Sourcify"}}`

func init() {
	color.NoColor = true
}

// runCLI executes the root command in dir and returns its output.
func runCLI(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })

	cmd := newRootCmd("test")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), err
}

func newPanelServer(t *testing.T, gotBody *map[string]any) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/insights":
			if gotBody != nil {
				json.NewDecoder(r.Body).Decode(gotBody)
			}
			w.Write([]byte(panelJSON))
		case "/api/v1/chains":
			w.Write([]byte(`{"chains":[{"chainId":"eip155:1","explorer":"https://api.etherscan.io/"},{"chainId":"eip155:137","explorer":"https://api.polygonscan.com/"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestScore_PrintsPanel(t *testing.T) {
	var body map[string]any
	ts := newPanelServer(t, &body)

	out, err := runCLI(t, t.TempDir(), "score", "--server", ts.URL, "--to", "0xaa", "--from", "0xbb")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "🟧 Overall result"))
	assert.True(t, strings.HasSuffix(lines[0], "average"))
	assert.Contains(t, lines[1], "───")
	assert.Contains(t, lines[3], "no previous interactions")

	assert.Equal(t, "eip155:1", body["chainId"])
	assert.Equal(t, map[string]any{"from": "0xbb", "to": "0xaa"}, body["transaction"])
}

func TestScore_JSONKeepsOrder(t *testing.T) {
	ts := newPanelServer(t, nil)

	out, err := runCLI(t, t.TempDir(), "score", "--server", ts.URL, "--to", "0xaa", "--from", "0xbb", "--json")
	require.NoError(t, err)

	assert.JSONEq(t, panelJSON, out)
	assert.Less(t, strings.Index(out, "Overall"), strings.Index(out, "verification"))
}

func TestScore_FailBelow(t *testing.T) {
	ts := newPanelServer(t, nil)

	_, err := runCLI(t, t.TempDir(), "score", "--server", ts.URL, "--to", "0xaa", "--from", "0xbb", "--fail-below", "2")
	assert.NoError(t, err)

	_, err = runCLI(t, t.TempDir(), "score", "--server", ts.URL, "--to", "0xaa", "--from", "0xbb", "--fail-below", "3")
	assert.ErrorContains(t, err, "below 3")
}

func TestScore_UsesProjectConfig(t *testing.T) {
	var body map[string]any
	ts := newPanelServer(t, &body)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "trustscore.toml"), []byte(
		"server = \""+ts.URL+"\"\nchain = \"eip155:137\"\nfrom = \"0xcc\"\n"), 0o644))

	_, err := runCLI(t, dir, "score", "--to", "0xaa")
	require.NoError(t, err)

	assert.Equal(t, "eip155:137", body["chainId"])
	assert.Equal(t, "0xcc", body["transaction"].(map[string]any)["from"])
}

func TestScore_RequiresFrom(t *testing.T) {
	t.Setenv("TRUSTSCORE_SERVER", "http://127.0.0.1:1")
	_, err := runCLI(t, t.TempDir(), "score", "--to", "0xaa")
	assert.ErrorContains(t, err, "--from is required")
}

func TestChains(t *testing.T) {
	ts := newPanelServer(t, nil)

	out, err := runCLI(t, t.TempDir(), "chains", "--server", ts.URL)
	require.NoError(t, err)

	assert.Contains(t, out, "CHAIN")
	assert.Contains(t, out, "eip155:137")
	assert.Contains(t, out, "https://api.polygonscan.com/")
}

func TestConfigInitAndShow(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, dir, "config", "init", "--server", "https://trust.example.com", "--chain", "eip155:10")
	require.NoError(t, err)
	assert.Contains(t, out, "Created trustscore.toml")

	cfg, err := loadProjectConfigFromPath(filepath.Join(dir, "trustscore.toml"))
	require.NoError(t, err)
	assert.Equal(t, ProjectConfig{Server: "https://trust.example.com", Chain: "eip155:10"}, *cfg)

	_, err = runCLI(t, dir, "config", "init")
	assert.ErrorContains(t, err, "already exists")

	t.Setenv("TRUSTSCORE_SERVER", "")
	out, err = runCLI(t, dir, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "server: https://trust.example.com")
	assert.Contains(t, out, "Server: https://trust.example.com")
	assert.Contains(t, out, "Chain:  eip155:10")
}

func TestGetServer(t *testing.T) {
	origServer := server
	defer func() { server = origServer }()

	t.Run("flag takes precedence", func(t *testing.T) {
		server = "http://flag-server:8080"
		t.Setenv("TRUSTSCORE_SERVER", "http://env-server:8080")
		assert.Equal(t, "http://flag-server:8080", getServer())
	})

	t.Run("env var when no flag", func(t *testing.T) {
		server = ""
		t.Setenv("TRUSTSCORE_SERVER", "http://env-server:8080")
		assert.Equal(t, "http://env-server:8080", getServer())
	})

	t.Run("default when nothing set", func(t *testing.T) {
		server = ""
		t.Setenv("TRUSTSCORE_SERVER", "")
		wd, _ := os.Getwd()
		require.NoError(t, os.Chdir(t.TempDir()))
		defer os.Chdir(wd)
		assert.Equal(t, defaultServer, getServer())
	})
}

func TestOverallScore(t *testing.T) {
	tests := []struct {
		label string
		want  int
	}{
		{"🟩 Overall result", 3},
		{"🟧 Overall result", 2},
		{"🟥 Overall result", 1},
		{"⚠️ Overall result", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, overallScore(client.Insights{{Label: tt.label}}), tt.label)
	}
	assert.Zero(t, overallScore(nil))
}
