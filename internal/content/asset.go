// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the Asset, the unit of work of the build pipeline: one
// source file, the processor that transforms it, and the parameter overrides
// applied on top of that processor's defaults.
//
// The asset's path doubles as its identity. It is always stored relative to
// the content source root with forward slashes, so a dependency cache written
// on one machine stays valid when read on another.
package content

import (
	"path"
	"strings"

	"github.com/vk/assetforge/internal/params"
)

// BundleOverride holds the parameters an asset overrides for one named bundle.
type BundleOverride struct {
	Bundle     string
	Parameters *params.Set
}

// Asset is a single source file plus its processor assignment and overrides.
type Asset struct {
	// Path is the source-root-relative, slash-separated path of the asset.
	Path string

	// Processor is the registered processor name. It may be empty until the
	// loader resolves it from the file extension.
	Processor string

	// Parameters are the base overrides applied to every variant.
	Parameters *params.Set

	// BundleOverrides are per-bundle overrides in declaration order.
	BundleOverrides []BundleOverride

	// Tag is opaque user data carried for editing tools.
	Tag string
}

// NewAsset creates an asset with a cleaned path and empty parameters.
func NewAsset(assetPath, processor string) *Asset {
	return &Asset{
		Path:       CleanPath(assetPath),
		Processor:  processor,
		Parameters: params.New(),
	}
}

// Extension returns the lower-case file extension without the leading dot.
func (a *Asset) Extension() string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(a.Path), "."))
}

// BundleParameters returns the overrides declared for bundle, if any.
func (a *Asset) BundleParameters(bundle string) (*params.Set, bool) {
	for _, o := range a.BundleOverrides {
		if o.Bundle == bundle {
			return o.Parameters, true
		}
	}
	return nil, false
}

// OverrideBundle merges set into the overrides for bundle, creating the entry
// at the end of the override list when it does not exist yet.
func (a *Asset) OverrideBundle(bundle string, set *params.Set) {
	for i := range a.BundleOverrides {
		if a.BundleOverrides[i].Bundle == bundle {
			a.BundleOverrides[i].Parameters.Merge(set)
			return
		}
	}
	a.BundleOverrides = append(a.BundleOverrides, BundleOverride{Bundle: bundle, Parameters: set.Clone()})
}

// DeclarationHash hashes the asset's own declaration: its path, processor, base
// overrides and every bundle override. The builder hashes the fully merged
// parameter sets instead; see Hash.
func (a *Asset) DeclarationHash() string {
	variants := make([]Variant, 0, len(a.BundleOverrides)+1)
	variants = append(variants, Variant{Name: BaseBundleName, Parameters: a.Parameters})
	for _, o := range a.BundleOverrides {
		variants = append(variants, Variant{Name: o.Bundle, Parameters: o.Parameters})
	}
	return Hash(a.Path, a.Processor, variants...)
}

// CleanPath normalises a relative asset path to its canonical slash form.
func CleanPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean(p)
	return strings.TrimPrefix(p, "./")
}
