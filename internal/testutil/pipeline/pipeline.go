// Package pipeline runs real builds of small, test-defined contents. It is
// used by processor tests that need a genuine BuildContext.
package pipeline

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/assetforge/internal/builder"
	"github.com/vk/assetforge/internal/content"
	"github.com/vk/assetforge/internal/events"
	"github.com/vk/assetforge/internal/registry"
	"github.com/vk/assetforge/internal/testutil"
	"github.com/vk/assetforge/internal/tracker"
)

// Fixture is a content rooted in a temporary directory.
type Fixture struct {
	T        *testing.T
	Content  *content.Content
	Registry *registry.Registry
	Recorder *events.Recorder
}

// New creates a fixture with the given modules registered and files written
// under the source root.
func New(t *testing.T, files map[string]string, modules ...registry.Module) *Fixture {
	t.Helper()
	root := t.TempDir()
	f := &Fixture{
		T:        t,
		Content:  content.New("Test", filepath.Join(root, "src"), filepath.Join(root, "out")),
		Registry: registry.New(),
	}
	for _, m := range modules {
		require.NoError(t, m.Register(f.Registry))
	}
	testutil.WriteFiles(t, f.Content.SourceRoot, files)
	return f
}

// WriteBytes writes binary source data at rel.
func (f *Fixture) WriteBytes(rel string, data []byte) {
	f.T.Helper()
	testutil.WriteFiles(f.T, f.Content.SourceRoot, map[string]string{rel: string(data)})
}

// AddAsset declares an asset and returns it for further configuration.
func (f *Fixture) AddAsset(path, processor string) *content.Asset {
	f.T.Helper()
	a := content.NewAsset(path, processor)
	require.NoError(f.T, f.Content.AddAsset(a))
	return a
}

// Build runs one build on top of the cache currently on disk.
func (f *Fixture) Build() *builder.Result {
	f.T.Helper()
	f.Recorder = events.NewRecorder()
	tr := tracker.Load(context.Background(), f.Content.SourceRoot, f.Content.OutputRoot, builder.CacheFile(f.Content))
	b := builder.New(f.Content, f.Registry, tr, builder.Options{Listener: f.Recorder})
	res, err := b.Build(context.Background())
	require.NoError(f.T, err)
	return res
}

// Output returns the OS path of an output-root-relative file.
func (f *Fixture) Output(rel string) string {
	return f.Content.OutputPath(rel)
}

// Record returns the tracker record of assetPath as persisted by the last
// build.
func (f *Fixture) Record(assetPath string) (tracker.Record, bool) {
	tr := tracker.Load(context.Background(), f.Content.SourceRoot, f.Content.OutputRoot, builder.CacheFile(f.Content))
	return tr.Record(assetPath)
}
