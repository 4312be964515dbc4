package builder

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/assetforge/internal/content"
	"github.com/vk/assetforge/internal/events"
	"github.com/vk/assetforge/internal/params"
	"github.com/vk/assetforge/internal/tracker"
)

func newTestContext(t *testing.T, bundle *content.Bundle) (*BuildContext, *tracker.Tracker, *events.Recorder) {
	t.Helper()
	root := t.TempDir()
	c := content.New("Game", filepath.Join(root, "src"), filepath.Join(root, "out"))
	a := content.NewAsset("ui/hero.png", "Texture2DProcessor")
	if bundle == nil {
		bundle = c.Base()
	}
	tr := tracker.New(c.SourceRoot, c.OutputRoot, CacheFile(c))
	subj := subject{path: a.Path, hash: "h"}
	require.NoError(t, tr.AddAssetDependency(subj))

	rec := events.NewRecorder()
	v := variant{asset: a, bundle: bundle, params: params.Of("k", "v")}
	return newBuildContext(context.Background(), c, v, subj, tr, rec), tr, rec
}

func TestBuildContext_Counters(t *testing.T) {
	bc, _, rec := newTestContext(t, nil)

	bc.Log("reading")
	bc.Verbose("details")
	bc.Warn("odd size")
	bc.Error("broken")
	bc.LogException(errors.New("soft"), false)
	bc.LogException(errors.New("hard"), true)

	assert.Equal(t, 2, bc.NumErrors())
	assert.Equal(t, 1, bc.NumWarnings())

	var levels []events.Level
	for _, e := range rec.Logs("ui/hero.png") {
		levels = append(levels, e.Level)
		assert.Equal(t, content.BaseBundleName, e.Bundle)
	}
	assert.Equal(t, []events.Level{
		events.LevelInfo, events.LevelVerbose, events.LevelWarning,
		events.LevelError, events.LevelWarning, events.LevelError,
	}, levels)
}

func TestBuildContext_Dependencies(t *testing.T) {
	// --- Arrange ---
	mobile := content.NewBundle("mobile")
	mobile.OutputDir = "platforms/mobile"
	bc, tr, _ := newTestContext(t, mobile)

	// --- Act ---
	require.NoError(t, bc.AddInputDependency("ui/hero.png"))
	require.NoError(t, bc.AddInputDependency(filepath.Join("ui", "palette.act")))
	require.NoError(t, bc.AddOutputDependency("ui/hero.tex"))

	// --- Assert ---
	rec, ok := tr.Record("ui/hero.png")
	require.True(t, ok)
	assert.Equal(t, []string{"ui/hero.png", "ui/palette.act"}, rec.Inputs)
	assert.Equal(t, []string{"platforms/mobile/ui/hero.tex"}, rec.Outputs)
	assert.Equal(t, []string{"platforms/mobile/ui/hero.tex"}, bc.Outputs())
	assert.Equal(t, []string{"ui/hero.png", "ui/palette.act"}, bc.Inputs())
	assert.Equal(t, filepath.Join(filepath.Dir(bc.SourceFolder()), "out", "platforms", "mobile"), bc.OutputFolder())
	v, ok := bc.Parameters().Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestBuildContext_UnknownAsset(t *testing.T) {
	bc, tr, _ := newTestContext(t, nil)
	tr.RemoveAsset(bc.subject)

	var unknown *tracker.UnknownAssetError
	assert.True(t, errors.As(bc.AddOutputDependency("x.bin"), &unknown))
	assert.Empty(t, bc.Outputs())
}
