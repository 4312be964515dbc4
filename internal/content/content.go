// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines Content and Bundle, the root of the declarative build
// description.
//
// Why are bundles layered instead of being separate contents?
//
// A bundle is a build variant of the same source tree, typically a platform.
// Most parameters are shared with the Base build and only a handful differ, so
// a bundle states just those differences. An asset opts into a bundle by
// naming it in its overrides; the builder then runs the asset's processor
// once for Base and once per opted-in bundle, each time with its own merged
// parameter set and output folder.
package content

import (
	"fmt"
	"path/filepath"

	"github.com/vk/assetforge/internal/params"
)

// BaseBundleName is the name of the implicit base build variant.
const BaseBundleName = "Base"

// Bundle is a named build variant layered on top of the Base build.
type Bundle struct {
	Name string

	// OutputDir is the bundle's output folder relative to the content output
	// root. Empty means the bundle name is used.
	OutputDir string

	// Parameters are bundle-wide defaults applied to every asset that opts
	// into this bundle, before the asset's own bundle overrides.
	Parameters *params.Set
}

// NewBundle creates a bundle with empty parameters.
func NewBundle(name string) *Bundle {
	return &Bundle{Name: name, Parameters: params.New()}
}

// IsBase reports whether b is the implicit Base variant.
func (b *Bundle) IsBase() bool {
	return b == nil || b.Name == BaseBundleName
}

// OutputFolder returns the bundle's output folder relative to the content
// output root, slash-separated. Base outputs go to the root itself.
func (b *Bundle) OutputFolder() string {
	if b.IsBase() {
		return ""
	}
	if b.OutputDir != "" {
		return CleanPath(b.OutputDir)
	}
	return b.Name
}

// Content is the complete declarative description of what to build.
type Content struct {
	Name string

	// SourceRoot is the absolute directory asset paths are relative to.
	SourceRoot string

	// OutputRoot is the absolute directory outputs are written under.
	OutputRoot string

	Bundles []*Bundle
	Assets  []*Asset

	base *Bundle
}

// New creates an empty content description.
func New(name, sourceRoot, outputRoot string) *Content {
	return &Content{
		Name:       name,
		SourceRoot: sourceRoot,
		OutputRoot: outputRoot,
		base:       NewBundle(BaseBundleName),
	}
}

// Base returns the implicit Base bundle.
func (c *Content) Base() *Bundle {
	if c.base == nil {
		c.base = NewBundle(BaseBundleName)
	}
	return c.base
}

// AddBundle appends a custom bundle. Names must be unique and must not
// collide with the Base bundle.
func (c *Content) AddBundle(b *Bundle) error {
	if b.Name == BaseBundleName {
		return fmt.Errorf("bundle name '%s' is reserved", BaseBundleName)
	}
	if _, exists := c.Bundle(b.Name); exists {
		return fmt.Errorf("bundle '%s' is declared more than once", b.Name)
	}
	c.Bundles = append(c.Bundles, b)
	return nil
}

// Bundle looks up a custom bundle by name.
func (c *Content) Bundle(name string) (*Bundle, bool) {
	for _, b := range c.Bundles {
		if b.Name == name {
			return b, true
		}
	}
	return nil, false
}

// AddAsset appends an asset. Paths must be unique.
func (c *Content) AddAsset(a *Asset) error {
	if _, exists := c.Asset(a.Path); exists {
		return fmt.Errorf("asset '%s' is declared more than once", a.Path)
	}
	c.Assets = append(c.Assets, a)
	return nil
}

// Asset looks up an asset by its path.
func (c *Content) Asset(assetPath string) (*Asset, bool) {
	assetPath = CleanPath(assetPath)
	for _, a := range c.Assets {
		if a.Path == assetPath {
			return a, true
		}
	}
	return nil, false
}

// Variants returns the custom bundles a builds for, in the order of the
// asset's override list. Overrides naming an undeclared bundle are skipped.
func (c *Content) Variants(a *Asset) []*Bundle {
	var out []*Bundle
	for _, o := range a.BundleOverrides {
		if b, ok := c.Bundle(o.Bundle); ok {
			out = append(out, b)
		}
	}
	return out
}

// SourcePath resolves a source-root-relative path to an OS path.
func (c *Content) SourcePath(rel string) string {
	return filepath.Join(c.SourceRoot, filepath.FromSlash(rel))
}

// OutputPath resolves an output-root-relative path to an OS path.
func (c *Content) OutputPath(rel string) string {
	return filepath.Join(c.OutputRoot, filepath.FromSlash(rel))
}
