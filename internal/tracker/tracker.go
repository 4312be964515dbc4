package tracker

import (
	"fmt"
	"path/filepath"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/vk/assetforge/internal/fsutil"
)

// Subject is anything the tracker can key a record on: an identity path and
// a hash of its declaration.
type Subject interface {
	AssetPath() string
	ContentHash() string
}

// DuplicateAssetError is returned by AddAssetDependency when a record for the
// asset already exists.
type DuplicateAssetError struct {
	Path string
}

// Error implements the error interface for DuplicateAssetError.
func (e *DuplicateAssetError) Error() string {
	return fmt.Sprintf("asset '%s' is already tracked; remove it before adding it again", e.Path)
}

// UnknownAssetError is returned when a dependency is added for an asset that
// has no record.
type UnknownAssetError struct {
	Path string
}

// Error implements the error interface for UnknownAssetError.
func (e *UnknownAssetError) Error() string {
	return fmt.Sprintf("asset '%s' is not tracked", e.Path)
}

// Record is the cache entry of one successfully built asset.
type Record struct {
	Path    string
	Hash    string
	Inputs  []string
	Outputs []string
}

func (r *Record) clone() Record {
	return Record{
		Path:    r.Path,
		Hash:    r.Hash,
		Inputs:  slices.Clone(r.Inputs),
		Outputs: slices.Clone(r.Outputs),
	}
}

// Reason explains the outcome of a rebuild check.
type Reason string

const (
	ReasonUpToDate      Reason = ""
	ReasonNotBuilt      Reason = "no successful build recorded"
	ReasonHashChanged   Reason = "declaration changed"
	ReasonInputMissing  Reason = "input file missing"
	ReasonOutputMissing Reason = "output file missing"
	ReasonInputNewer    Reason = "input newer than outputs"
	ReasonStatFailed    Reason = "file could not be inspected"
)

// Tracker is the mutex-guarded dependency cache of one content build.
type Tracker struct {
	mu         sync.Mutex
	sourceRoot string
	outputRoot string
	file       string
	records    map[string]*Record
}

// New creates an empty tracker. file is where Save writes the cache; input
// paths resolve against sourceRoot and output paths against outputRoot.
func New(sourceRoot, outputRoot, file string) *Tracker {
	return &Tracker{
		sourceRoot: sourceRoot,
		outputRoot: outputRoot,
		file:       file,
		records:    make(map[string]*Record),
	}
}

// File returns the path of the persisted cache.
func (t *Tracker) File() string {
	return t.file
}

// DoesAssetNeedRebuild reports whether s must be rebuilt.
func (t *Tracker) DoesAssetNeedRebuild(s Subject) bool {
	return t.Check(s) != ReasonUpToDate
}

// Check runs the rebuild decision for s and returns why a rebuild is needed,
// or ReasonUpToDate.
func (t *Tracker) Check(s Subject) Reason {
	t.mu.Lock()
	rec, ok := t.records[s.AssetPath()]
	var snapshot Record
	if ok {
		snapshot = rec.clone()
	}
	t.mu.Unlock()

	if !ok {
		return ReasonNotBuilt
	}
	if snapshot.Hash != s.ContentHash() {
		return ReasonHashChanged
	}

	var newestInput time.Time
	for _, in := range snapshot.Inputs {
		mt, exists, err := fsutil.ModTime(t.resolve(t.sourceRoot, in))
		if err != nil {
			return ReasonStatFailed
		}
		if !exists {
			return ReasonInputMissing
		}
		if mt.After(newestInput) {
			newestInput = mt
		}
	}

	var oldestOutput time.Time
	for i, out := range snapshot.Outputs {
		mt, exists, err := fsutil.ModTime(t.resolve(t.outputRoot, out))
		if err != nil {
			return ReasonStatFailed
		}
		if !exists {
			return ReasonOutputMissing
		}
		if i == 0 || mt.Before(oldestOutput) {
			oldestOutput = mt
		}
	}

	if len(snapshot.Inputs) > 0 && len(snapshot.Outputs) > 0 && newestInput.After(oldestOutput) {
		return ReasonInputNewer
	}
	return ReasonUpToDate
}

// RemoveAsset deletes the record of s, if any.
func (t *Tracker) RemoveAsset(s Subject) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.records, s.AssetPath())
}

// AddAssetDependency creates a fresh, empty record for s carrying its current
// content hash.
func (t *Tracker) AddAssetDependency(s Subject) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	path := s.AssetPath()
	if _, exists := t.records[path]; exists {
		return &DuplicateAssetError{Path: path}
	}
	t.records[path] = &Record{Path: path, Hash: s.ContentHash()}
	return nil
}

// AddInputDependency appends a source-root-relative input to the record of s.
func (t *Tracker) AddInputDependency(s Subject, rel string) error {
	return t.appendDependency(s, rel, func(r *Record) *[]string { return &r.Inputs })
}

// AddOutputDependency appends an output-root-relative output to the record of s.
func (t *Tracker) AddOutputDependency(s Subject, rel string) error {
	return t.appendDependency(s, rel, func(r *Record) *[]string { return &r.Outputs })
}

func (t *Tracker) appendDependency(s Subject, rel string, list func(*Record) *[]string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.records[s.AssetPath()]
	if !ok {
		return &UnknownAssetError{Path: s.AssetPath()}
	}
	rel = filepath.ToSlash(filepath.Clean(rel))
	deps := list(rec)
	if !slices.Contains(*deps, rel) {
		*deps = append(*deps, rel)
	}
	return nil
}

// Record returns a copy of the record stored for assetPath.
func (t *Tracker) Record(assetPath string) (Record, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.records[assetPath]
	if !ok {
		return Record{}, false
	}
	return rec.clone(), true
}

// Records returns copies of all records sorted by asset path.
func (t *Tracker) Records() []Record {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Record, 0, len(t.records))
	for _, rec := range t.records {
		out = append(out, rec.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Len returns the number of tracked assets.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.records)
}

// Reset drops every record.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records = make(map[string]*Record)
}

// OutputPath resolves an output-root-relative path to an OS path.
func (t *Tracker) OutputPath(rel string) string {
	return t.resolve(t.outputRoot, rel)
}

func (t *Tracker) resolve(root, rel string) string {
	return filepath.Join(root, filepath.FromSlash(rel))
}
