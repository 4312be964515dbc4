package tracker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// subject is a fixed identity/hash pair.
type subject struct {
	path string
	hash string
}

func (s subject) AssetPath() string   { return s.path }
func (s subject) ContentHash() string { return s.hash }

// fixture is a source and output tree with a tracker on top of it.
type fixture struct {
	src, out string
	tr       *Tracker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{src: filepath.Join(root, "src"), out: filepath.Join(root, "out")}
	require.NoError(t, os.MkdirAll(f.src, 0o755))
	require.NoError(t, os.MkdirAll(f.out, 0o755))
	f.tr = New(f.src, f.out, filepath.Join(f.out, "Game.deps.hcl"))
	return f
}

func writeAt(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

// record builds a complete record for s with one input and one output,
// the output written after the input.
func (f *fixture) record(t *testing.T, s subject) {
	t.Helper()
	base := time.Now().Add(-time.Hour)
	writeAt(t, filepath.Join(f.src, "hero.png"), base)
	writeAt(t, filepath.Join(f.out, "hero.tex"), base.Add(time.Minute))

	f.tr.RemoveAsset(s)
	require.NoError(t, f.tr.AddAssetDependency(s))
	require.NoError(t, f.tr.AddInputDependency(s, "hero.png"))
	require.NoError(t, f.tr.AddOutputDependency(s, "hero.tex"))
}

func TestCheck_NoRecord(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, ReasonNotBuilt, f.tr.Check(subject{"hero.png", "h1"}))
	assert.True(t, f.tr.DoesAssetNeedRebuild(subject{"hero.png", "h1"}))
}

func TestCheck_UpToDate(t *testing.T) {
	f := newFixture(t)
	s := subject{"hero.png", "h1"}
	f.record(t, s)

	assert.Equal(t, ReasonUpToDate, f.tr.Check(s))
	assert.False(t, f.tr.DoesAssetNeedRebuild(s))
}

func TestCheck_HashChanged(t *testing.T) {
	f := newFixture(t)
	f.record(t, subject{"hero.png", "h1"})

	assert.Equal(t, ReasonHashChanged, f.tr.Check(subject{"hero.png", "h2"}))
}

func TestCheck_InputTouched(t *testing.T) {
	f := newFixture(t)
	s := subject{"hero.png", "h1"}
	f.record(t, s)

	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(f.src, "hero.png"), future, future))

	assert.Equal(t, ReasonInputNewer, f.tr.Check(s))
}

func TestCheck_MissingFiles(t *testing.T) {
	t.Run("input", func(t *testing.T) {
		f := newFixture(t)
		s := subject{"hero.png", "h1"}
		f.record(t, s)
		require.NoError(t, os.Remove(filepath.Join(f.src, "hero.png")))
		assert.Equal(t, ReasonInputMissing, f.tr.Check(s))
	})

	t.Run("output", func(t *testing.T) {
		f := newFixture(t)
		s := subject{"hero.png", "h1"}
		f.record(t, s)
		require.NoError(t, os.Remove(filepath.Join(f.out, "hero.tex")))
		assert.Equal(t, ReasonOutputMissing, f.tr.Check(s))
	})
}

func TestCheck_OldestOutputDecides(t *testing.T) {
	// --- Arrange ---
	f := newFixture(t)
	s := subject{"hero.png", "h1"}
	base := time.Now().Add(-time.Hour)
	writeAt(t, filepath.Join(f.src, "hero.png"), base.Add(2*time.Minute))
	writeAt(t, filepath.Join(f.out, "old.tex"), base.Add(time.Minute))
	writeAt(t, filepath.Join(f.out, "new.tex"), base.Add(3*time.Minute))

	require.NoError(t, f.tr.AddAssetDependency(s))
	require.NoError(t, f.tr.AddInputDependency(s, "hero.png"))
	require.NoError(t, f.tr.AddOutputDependency(s, "old.tex"))
	require.NoError(t, f.tr.AddOutputDependency(s, "new.tex"))

	// --- Act & Assert ---
	assert.Equal(t, ReasonInputNewer, f.tr.Check(s), "input newer than the oldest output must force a rebuild")
}

func TestCheck_EmptyRecordIsTrusted(t *testing.T) {
	f := newFixture(t)
	s := subject{"hero.png", "h1"}
	require.NoError(t, f.tr.AddAssetDependency(s))

	assert.False(t, f.tr.DoesAssetNeedRebuild(s))
}

func TestProtocolErrors(t *testing.T) {
	f := newFixture(t)
	s := subject{"hero.png", "h1"}

	var unknown *UnknownAssetError
	require.True(t, errors.As(f.tr.AddInputDependency(s, "hero.png"), &unknown))
	require.True(t, errors.As(f.tr.AddOutputDependency(s, "hero.tex"), &unknown))
	assert.Equal(t, "hero.png", unknown.Path)

	require.NoError(t, f.tr.AddAssetDependency(s))
	var dup *DuplicateAssetError
	require.True(t, errors.As(f.tr.AddAssetDependency(s), &dup))

	f.tr.RemoveAsset(s)
	f.tr.RemoveAsset(s)
	require.NoError(t, f.tr.AddAssetDependency(s))
}

func TestAddDependency_DeduplicatesAndNormalises(t *testing.T) {
	f := newFixture(t)
	s := subject{"hero.png", "h1"}
	require.NoError(t, f.tr.AddAssetDependency(s))
	require.NoError(t, f.tr.AddInputDependency(s, "hero.png"))
	require.NoError(t, f.tr.AddInputDependency(s, "./hero.png"))
	require.NoError(t, f.tr.AddOutputDependency(s, filepath.Join("mobile", "hero.tex")))

	rec, ok := f.tr.Record("hero.png")
	require.True(t, ok)
	assert.Equal(t, []string{"hero.png"}, rec.Inputs)
	assert.Equal(t, []string{"mobile/hero.tex"}, rec.Outputs)
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	// --- Arrange ---
	f := newFixture(t)
	f.record(t, subject{"hero.png", "h1"})
	empty := subject{"b/empty.bin", "h2"}
	require.NoError(t, f.tr.AddAssetDependency(empty))

	// --- Act ---
	require.NoError(t, f.tr.Save())
	loaded := Load(context.Background(), f.src, f.out, f.tr.File())

	// --- Assert ---
	if diff := cmp.Diff(f.tr.Records(), loaded.Records(), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("records mismatch after reload (-want +got):\n%s", diff)
	}
	assert.False(t, loaded.DoesAssetNeedRebuild(subject{"hero.png", "h1"}))
}

func TestSave_IsByteStable(t *testing.T) {
	f := newFixture(t)
	f.record(t, subject{"hero.png", "h1"})
	require.NoError(t, f.tr.AddAssetDependency(subject{"a.png", "h0"}))

	require.NoError(t, f.tr.Save())
	first, err := os.ReadFile(f.tr.File())
	require.NoError(t, err)

	reloaded := Load(context.Background(), f.src, f.out, f.tr.File())
	require.NoError(t, reloaded.Save())
	second, err := os.ReadFile(f.tr.File())
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
	assert.Contains(t, string(first), `asset "hero.png"`)
	assert.Less(t, strings.Index(string(first), `"a.png"`), strings.Index(string(first), `"hero.png"`), "records are sorted by path")
}

func TestLoad_FailSafe(t *testing.T) {
	testCases := map[string]string{
		"corrupt":        "asset \"x\" {",
		"missing hash":   "version = 1\nasset \"x\" {\n}\n",
		"wrong version":  "version = 99\n",
		"duplicate path": "version = 1\nasset \"x\" { hash = \"a\" }\nasset \"x\" { hash = \"b\" }\n",
	}
	for name, body := range testCases {
		t.Run(name, func(t *testing.T) {
			file := filepath.Join(t.TempDir(), "cache.hcl")
			require.NoError(t, os.WriteFile(file, []byte(body), 0o644))

			tr := Load(context.Background(), "src", "out", file)
			assert.Zero(t, tr.Len())
		})
	}

	t.Run("absent", func(t *testing.T) {
		tr := Load(context.Background(), "src", "out", filepath.Join(t.TempDir(), "nope.hcl"))
		assert.Zero(t, tr.Len())
	})
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.tr.Delete(), "deleting a missing file is fine")
	require.NoError(t, f.tr.Save())
	require.NoError(t, f.tr.Delete())
	assert.NoFileExists(t, f.tr.File())
}

// TestTracker_ConcurrentAccess verifies that reads from other goroutines can
// run alongside the writer without races.
func TestTracker_ConcurrentAccess(t *testing.T) {
	f := newFixture(t)
	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				_ = f.tr.Records()
				_ = f.tr.DoesAssetNeedRebuild(subject{"a0", "h"})
			}
		}
	}()

	for i := 0; i < 200; i++ {
		s := subject{path: filepath.ToSlash(filepath.Join("a", string(rune('a'+i%26)))), hash: "h"}
		f.tr.RemoveAsset(s)
		require.NoError(t, f.tr.AddAssetDependency(s))
		require.NoError(t, f.tr.AddInputDependency(s, s.path))
	}
	close(stop)
	wg.Wait()

	assert.Equal(t, 26, f.tr.Len())
}
