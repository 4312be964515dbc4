// This file persists tracker records as HCL.
//
//	version = 1
//
//	asset "textures/hero.png" {
//	  hash    = "9f86d0..."
//	  inputs  = ["textures/hero.png"]
//	  outputs = ["textures/hero.tex"]
//	}
//
// Records are written sorted by asset path, so saving an unchanged tracker
// produces a byte-identical file.

package tracker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/vk/assetforge/internal/ctxlog"
	"github.com/vk/assetforge/internal/fsutil"
	"github.com/zclconf/go-cty/cty"
)

// FileSuffix ends the name of every cache file. Content loaders skip files
// carrying it.
const FileSuffix = ".deps.hcl"

// IsCacheFile reports whether path names a dependency cache.
func IsCacheFile(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), FileSuffix)
}

// cacheVersion is bumped whenever the on-disk layout changes. Files with a
// different version are discarded.
const cacheVersion = 1

// cacheFile is the decoding schema of a persisted cache.
type cacheFile struct {
	Version int           `hcl:"version,optional"`
	Assets  []*cacheEntry `hcl:"asset,block"`
}

type cacheEntry struct {
	Path    string   `hcl:"path,label"`
	Hash    string   `hcl:"hash"`
	Inputs  []string `hcl:"inputs,optional"`
	Outputs []string `hcl:"outputs,optional"`
}

// Load creates a tracker hydrated from file. An absent, unparsable or
// outdated file yields an empty tracker; the problem is logged, never returned.
func Load(ctx context.Context, sourceRoot, outputRoot, file string) *Tracker {
	logger := ctxlog.FromContext(ctx).With("cache_file", file)
	t := New(sourceRoot, outputRoot, file)

	data, err := os.ReadFile(file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("No dependency cache found, starting empty.")
		} else {
			logger.Warn("Dependency cache unreadable, starting empty.", "error", err)
		}
		return t
	}

	records, err := decode(data, file)
	if err != nil {
		logger.Warn("Dependency cache is corrupt, starting empty.", "error", err)
		return t
	}
	for _, rec := range records {
		t.records[rec.Path] = rec
	}
	logger.Debug("Dependency cache loaded.", "assets", len(records))
	return t
}

func decode(data []byte, filename string) ([]*Record, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse cache file: %w", diags)
	}

	var root cacheFile
	if diags := gohcl.DecodeBody(f.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode cache file: %w", diags)
	}
	if root.Version != cacheVersion {
		return nil, fmt.Errorf("cache version %d is not supported (want %d)", root.Version, cacheVersion)
	}

	records := make([]*Record, 0, len(root.Assets))
	seen := make(map[string]struct{}, len(root.Assets))
	for _, e := range root.Assets {
		if _, dup := seen[e.Path]; dup {
			return nil, fmt.Errorf("asset '%s' appears more than once", e.Path)
		}
		seen[e.Path] = struct{}{}
		records = append(records, &Record{Path: e.Path, Hash: e.Hash, Inputs: e.Inputs, Outputs: e.Outputs})
	}
	return records, nil
}

// Save writes every record to the tracker's file, replacing it atomically.
func (t *Tracker) Save() error {
	data := t.encode()
	if err := fsutil.WriteFileAtomic(t.file, data, 0o644); err != nil {
		return fmt.Errorf("failed to save dependency cache %s: %w", t.file, err)
	}
	return nil
}

// encode renders the records as a formatted HCL document.
func (t *Tracker) encode() []byte {
	records := t.Records()

	f := hclwrite.NewEmptyFile()
	body := f.Body()
	body.SetAttributeValue("version", cty.NumberIntVal(cacheVersion))

	for _, rec := range records {
		body.AppendNewline()
		block := body.AppendNewBlock("asset", []string{rec.Path})
		blockBody := block.Body()
		blockBody.SetAttributeValue("hash", cty.StringVal(rec.Hash))
		blockBody.SetAttributeValue("inputs", stringList(rec.Inputs))
		blockBody.SetAttributeValue("outputs", stringList(rec.Outputs))
	}
	return hclwrite.Format(f.Bytes())
}

func stringList(items []string) cty.Value {
	if len(items) == 0 {
		return cty.ListValEmpty(cty.String)
	}
	vals := make([]cty.Value, len(items))
	for i, s := range items {
		vals[i] = cty.StringVal(s)
	}
	return cty.ListVal(vals)
}

// Delete removes the persisted cache file. A missing file is not an error.
func (t *Tracker) Delete() error {
	if err := os.Remove(t.file); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
