package hcl_adapter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/assetforge/internal/content"
	"github.com/vk/assetforge/internal/ctxlog"
	"github.com/vk/assetforge/internal/fsutil"
	"github.com/vk/assetforge/internal/processor"
	"github.com/vk/assetforge/internal/tracker"
)

// ProcessorResolver picks processors for assets that do not name one.
type ProcessorResolver interface {
	FindForFile(name string) []*processor.Descriptor
}

// Loader reads content descriptions from HCL files.
type Loader struct {
	resolver ProcessorResolver
}

// NewLoader creates a loader. resolver may be nil, in which case every asset
// must name its processor.
func NewLoader(resolver ProcessorResolver) *Loader {
	return &Loader{resolver: resolver}
}

// decodedFile is one parsed file together with its location.
type decodedFile struct {
	path string
	root fileRoot
}

// Load reads the content declared at path, which is either a single .hcl
// file or a directory searched recursively for .hcl files. Exactly one
// content block must exist across all files.
func (l *Loader) Load(ctx context.Context, path string) (*content.Content, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path", path)

	files, err := findHCLFiles(path)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl files found at %s", path)
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	decoded := make([]decodedFile, 0, len(files))
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}
		decoded = append(decoded, decodedFile{path: file, root: root})
	}

	c, err := l.translateContent(decoded)
	if err != nil {
		return nil, err
	}
	ectx := newEvalContext(os.Environ())
	if err := l.translateBundles(ctx, c, decoded, ectx); err != nil {
		return nil, err
	}
	if err := l.translateAssets(ctx, c, decoded, ectx); err != nil {
		return nil, err
	}
	if err := l.applyBundleAssets(c, decoded, ectx); err != nil {
		return nil, err
	}

	logger.Debug("HCL loading complete.", "content", c.Name, "bundles", len(c.Bundles), "assets", len(c.Assets))
	return c, nil
}

// findHCLFiles returns path itself when it is a file, or every .hcl file below
// it when it is a directory. Dependency caches written by earlier builds are
// not content and are left out.
func findHCLFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing path %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	found, err := fsutil.FindFilesByExtension(path, ".hcl")
	if err != nil {
		return nil, err
	}
	files := found[:0]
	for _, f := range found {
		if !tracker.IsCacheFile(f) {
			files = append(files, f)
		}
	}
	return files, nil
}

func (l *Loader) translateContent(files []decodedFile) (*content.Content, error) {
	var (
		block *ContentBlock
		owner string
	)
	for _, f := range files {
		for _, cb := range f.root.Contents {
			if block != nil {
				return nil, fmt.Errorf("content '%s' in %s: only one content block is allowed, '%s' is already declared in %s", cb.Name, f.path, block.Name, owner)
			}
			block, owner = cb, f.path
		}
	}
	if block == nil {
		return nil, errors.New("no content block found")
	}
	if block.Name == "" {
		return nil, fmt.Errorf("content block in %s must have a non-empty name", owner)
	}

	base, err := filepath.Abs(filepath.Dir(owner))
	if err != nil {
		return nil, err
	}
	root := resolveDir(base, block.Root, ".")
	output := resolveDir(base, block.Output, "build")
	return content.New(block.Name, root, output), nil
}

// resolveDir joins rel onto base unless rel is absolute. An empty rel falls
// back to def.
func resolveDir(base, rel, def string) string {
	if rel == "" {
		rel = def
	}
	rel = filepath.FromSlash(rel)
	if filepath.IsAbs(rel) {
		return filepath.Clean(rel)
	}
	return filepath.Join(base, rel)
}

func (l *Loader) translateBundles(ctx context.Context, c *content.Content, files []decodedFile, ectx *hcl.EvalContext) error {
	logger := ctxlog.FromContext(ctx)
	for _, f := range files {
		for _, bb := range f.root.Bundles {
			b := content.NewBundle(bb.Name)
			b.OutputDir = bb.Output
			set, err := parameterSet(bb.Parameters, ectx)
			if err != nil {
				return fmt.Errorf("in bundle '%s' (%s): %w", bb.Name, f.path, err)
			}
			b.Parameters = set
			if err := c.AddBundle(b); err != nil {
				return fmt.Errorf("%s: %w", f.path, err)
			}
			logger.Debug("Bundle declared.", "bundle", b.Name, "output", b.OutputFolder(), "parameters", set.Len())
		}
	}
	return nil
}

func (l *Loader) translateAssets(ctx context.Context, c *content.Content, files []decodedFile, ectx *hcl.EvalContext) error {
	logger := ctxlog.FromContext(ctx)
	for _, f := range files {
		for _, ab := range f.root.Assets {
			a := content.NewAsset(ab.Path, ab.Processor)
			a.Tag = ab.Tag
			if a.Path == "." || a.Path == "" {
				return fmt.Errorf("%s: asset path must not be empty", f.path)
			}

			set, err := parameterSet(ab.Parameters, ectx)
			if err != nil {
				return fmt.Errorf("in asset '%s' (%s): %w", ab.Path, f.path, err)
			}
			a.Parameters = set

			for _, bo := range ab.Bundles {
				set, err := parameterSet(bo.Parameters, ectx)
				if err != nil {
					return fmt.Errorf("in asset '%s', bundle '%s' (%s): %w", ab.Path, bo.Name, f.path, err)
				}
				if _, declared := c.Bundle(bo.Name); !declared {
					logger.Debug("Asset overrides an undeclared bundle; the override is ignored at build time.", "asset", a.Path, "bundle", bo.Name)
				}
				a.OverrideBundle(bo.Name, set)
			}

			if a.Processor == "" {
				if err := l.resolveProcessor(a); err != nil {
					return fmt.Errorf("%s: %w", f.path, err)
				}
				logger.Debug("Processor resolved from extension.", "asset", a.Path, "processor", a.Processor)
			}

			if err := c.AddAsset(a); err != nil {
				return fmt.Errorf("%s: %w", f.path, err)
			}
		}
	}
	return nil
}

func (l *Loader) resolveProcessor(a *content.Asset) error {
	if l.resolver == nil {
		return fmt.Errorf("asset '%s' does not name a processor", a.Path)
	}
	matches := l.resolver.FindForFile(a.Path)
	if len(matches) == 0 {
		return fmt.Errorf("asset '%s' does not name a processor and none handles its extension", a.Path)
	}
	a.Processor = matches[0].Name
	return nil
}

// applyBundleAssets merges the per-asset overrides declared inside bundle
// blocks. They come after the asset's own bundle blocks.
func (l *Loader) applyBundleAssets(c *content.Content, files []decodedFile, ectx *hcl.EvalContext) error {
	for _, f := range files {
		for _, bb := range f.root.Bundles {
			for _, ba := range bb.Assets {
				a, ok := c.Asset(ba.Path)
				if !ok {
					return fmt.Errorf("bundle '%s' (%s) overrides undeclared asset '%s'", bb.Name, f.path, ba.Path)
				}
				set, err := parameterSet(ba.Parameters, ectx)
				if err != nil {
					return fmt.Errorf("in bundle '%s', asset '%s' (%s): %w", bb.Name, ba.Path, f.path, err)
				}
				a.OverrideBundle(bb.Name, set)
			}
		}
	}
	return nil
}
