package passthrough

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/assetforge/internal/events"
	"github.com/vk/assetforge/internal/params"
	"github.com/vk/assetforge/internal/testutil"
	"github.com/vk/assetforge/internal/testutil/pipeline"
)

func TestPassThrough_CopiesFile(t *testing.T) {
	// --- Arrange ---
	f := pipeline.New(t, map[string]string{"data/level1.json": `{"w":3}`}, &Module{})
	f.AddAsset("data/level1.json", Name)

	// --- Act ---
	res := f.Build()

	// --- Assert ---
	assert.Equal(t, events.StatusSuccess, res.Statuses["data/level1.json"])
	assert.Equal(t, `{"w":3}`, testutil.ReadFile(t, f.Output("data/level1.json")))

	rec, ok := f.Record("data/level1.json")
	require.True(t, ok)
	assert.Equal(t, []string{"data/level1.json"}, rec.Inputs)
	assert.Equal(t, []string{"data/level1.json"}, rec.Outputs)
}

func TestPassThrough_OutputExtension(t *testing.T) {
	f := pipeline.New(t, map[string]string{"shaders/basic.glsl": "void main(){}"}, &Module{})
	a := f.AddAsset("shaders/basic.glsl", Name)
	a.Parameters = params.Of("output_extension", "shader")

	res := f.Build()

	assert.Equal(t, events.StatusSuccess, res.Statuses["shaders/basic.glsl"])
	assert.FileExists(t, f.Output("shaders/basic.shader"))
}

func TestPassThrough_MissingSourceFails(t *testing.T) {
	f := pipeline.New(t, nil, &Module{})
	f.AddAsset("ghost.bin", Name)

	res := f.Build()

	assert.Equal(t, events.StatusFailed, res.Statuses["ghost.bin"])
	logs := f.Recorder.Logs("ghost.bin")
	require.NotEmpty(t, logs)
	assert.Contains(t, logs[0].Message, "failed to read source")
}

func TestOutputName(t *testing.T) {
	assert.Equal(t, "a/b.txt", OutputName("a/b.txt", ""))
	assert.Equal(t, "a/b.bin", OutputName("a/b.txt", "bin"))
	assert.Equal(t, "a/b.bin", OutputName("a/b.txt", ".bin"))
	assert.Equal(t, "noext.bin", OutputName("noext", "bin"))
}
