package app

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/assetforge/internal/events"
	"github.com/vk/assetforge/internal/testutil"
	"github.com/vk/assetforge/modules/passthrough"
	"github.com/vk/assetforge/modules/texture"
)

const projectHCL = `
content "Game" {
  root   = "assets"
  output = "build"
}

bundle "mobile" {
  parameters {
    max_size = 2
  }
}

asset "data/level1.json" {}

asset "textures/hero.png" {
  parameters {
    max_size = 4
  }
  bundle "mobile" {}
}
`

// writeProject lays out a small project and returns the path of its
// content file.
func writeProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewNRGBA(image.Rect(0, 0, 8, 8))))
	testutil.WriteFiles(t, dir, map[string]string{
		"game.hcl":                 projectHCL,
		"assets/data/level1.json":  `{"spawn":[1,2]}`,
		"assets/textures/hero.png": img.String(),
	})
	return filepath.Join(dir, "game.hcl")
}

func TestNewConfig(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "minimal", cfg: Config{ContentPath: "game.hcl"}},
		{name: "missing content", cfg: Config{}, wantErr: "ContentPath"},
		{name: "bad format", cfg: Config{ContentPath: "x", LogFormat: "xml"}, wantErr: "log format"},
		{name: "bad level", cfg: Config{ContentPath: "x", LogLevel: "loud"}, wantErr: "log level"},
		{name: "bad port", cfg: Config{ContentPath: "x", StatusPort: 70000}, wantErr: "status port"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := NewConfig(tc.cfg)
			if tc.wantErr != "" {
				require.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "text", cfg.LogFormat)
			assert.Equal(t, "info", cfg.LogLevel)
		})
	}

	t.Run("namespace gets a leading slash", func(t *testing.T) {
		cfg, err := NewConfig(Config{ContentPath: "x", EventsNamespace: "builds"})
		require.NoError(t, err)
		assert.Equal(t, "/builds", cfg.EventsNamespace)
	})
}

func TestApp_BuildThenSkip(t *testing.T) {
	// --- Arrange ---
	path := writeProject(t)
	a, logs := SetupAppTest(t, Config{ContentPath: path})
	rec := events.NewRecorder()
	a.AddListener(rec)

	// --- Act ---
	first, err := a.Build(context.Background())
	require.NoError(t, err)

	// --- Assert ---
	assert.False(t, first.Failed)
	assert.Equal(t, events.StatusSuccess, first.Statuses["data/level1.json"])
	assert.Equal(t, events.StatusSuccess, first.Statuses["textures/hero.png"])

	out := a.Content().OutputRoot
	assert.Equal(t, `{"spawn":[1,2]}`, testutil.ReadFile(t, filepath.Join(out, "data", "level1.json")))
	assert.FileExists(t, filepath.Join(out, "textures", "hero.tex"))
	assert.FileExists(t, filepath.Join(out, "mobile", "textures", "hero.tex"))
	assert.Contains(t, logs.String(), "Build finished.")

	_, ok := rec.Completed()
	assert.True(t, ok, "attached listeners receive build events")

	// A fresh app reads the cache written by the first one.
	again, _ := SetupAppTest(t, Config{ContentPath: path})
	second, err := again.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, second.Counts[events.StatusSkipped])
}

func TestApp_DirectoryContentBuildsTwice(t *testing.T) {
	// --- Arrange ---
	dir := filepath.Dir(writeProject(t))
	first, _ := SetupAppTest(t, Config{ContentPath: dir})
	res, err := first.Build(context.Background())
	require.NoError(t, err)
	require.False(t, res.Failed)
	require.FileExists(t, filepath.Join(dir, "build", "Game.deps.hcl"))

	// --- Act ---
	again, _ := SetupAppTest(t, Config{ContentPath: dir})
	second, err := again.Build(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, 2, second.Counts[events.StatusSkipped])
}

func TestApp_CheckAndClean(t *testing.T) {
	// --- Arrange ---
	path := writeProject(t)
	a, _ := SetupAppTest(t, Config{ContentPath: path})
	_, err := a.Build(context.Background())
	require.NoError(t, err)

	// --- Act & Assert: nothing pending after a build ---
	assert.Empty(t, a.Check(context.Background()))

	future := time.Now().Add(time.Hour)
	testutil.Touch(t, a.Content().SourcePath("data/level1.json"), future)
	pending := a.Check(context.Background())
	require.Len(t, pending, 1)
	assert.Equal(t, "data/level1.json", pending[0].Asset)

	// --- Act & Assert: clean removes every output ---
	removed, err := a.Clean(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, removed)
	assert.NoFileExists(t, filepath.Join(a.Content().OutputRoot, "data", "level1.json"))
	assert.Len(t, a.Check(context.Background()), 2)
}

func TestApp_OutputOverride(t *testing.T) {
	path := writeProject(t)
	out := filepath.Join(t.TempDir(), "elsewhere")

	a, _ := SetupAppTest(t, Config{ContentPath: path, OutputPath: out})
	_, err := a.Build(context.Background())
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(out, "data", "level1.json"))
	assert.FileExists(t, filepath.Join(out, "Game.deps.hcl"))
}

func TestApp_ExplicitModules(t *testing.T) {
	path := writeProject(t)
	a, _ := SetupAppTest(t, Config{ContentPath: path}, &passthrough.Module{}, &texture.Module{})

	var names []string
	for _, d := range a.Processors() {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{passthrough.Name, texture.Name}, names)

	hero, ok := a.Content().Asset("textures/hero.png")
	require.True(t, ok)
	assert.Equal(t, texture.Name, hero.Processor, "exact extension matches win over the catch-all")
}

func TestNewApp_LoadError(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{"broken.hcl": `content "Game" {`})
	cfg, err := NewConfig(Config{ContentPath: dir})
	require.NoError(t, err)

	_, err = NewApp(&testutil.SafeBuffer{}, cfg)

	require.ErrorContains(t, err, "failed to load content")
}

func TestApp_UnreachableEventsSink(t *testing.T) {
	path := writeProject(t)
	a, logs := SetupAppTest(t, Config{ContentPath: path, EventsURL: "/no-host"})

	res, err := a.Build(context.Background())

	require.NoError(t, err)
	assert.False(t, res.Failed)
	assert.Contains(t, logs.String(), "Remote event sink unavailable")
}

func TestStatusEndpoints(t *testing.T) {
	// --- Arrange ---
	path := writeProject(t)
	a, _ := SetupAppTest(t, Config{ContentPath: path})
	srv := httptest.NewServer(a.statusMux())
	defer srv.Close()

	fetch := func() statusResponse {
		resp, err := http.Get(srv.URL + "/status")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var body statusResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		return body
	}

	// --- Act & Assert ---
	health, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)

	before := fetch()
	assert.Equal(t, "Game", before.Content)
	assert.Empty(t, before.Assets)

	_, err = a.Build(context.Background())
	require.NoError(t, err)

	after := fetch()
	assert.False(t, after.Running)
	assert.Equal(t, map[string]events.Status{
		"data/level1.json":  events.StatusSuccess,
		"textures/hero.png": events.StatusSuccess,
	}, after.Assets)
}

func TestStatusServer_Lifecycle(t *testing.T) {
	path := writeProject(t)
	a, logs := SetupAppTest(t, Config{ContentPath: path})

	a.startStatusServer(0)
	require.NoError(t, a.closeStatusServer())
	require.NoError(t, a.closeStatusServer(), "closing twice is harmless")

	assert.Contains(t, logs.String(), "Status server was not running.")
}
