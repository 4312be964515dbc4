// This file contains the gohcl decoding schema of a content file.
//
//	content "Game" {
//	  root   = "assets"
//	  output = "build"
//	}
//
//	bundle "mobile" {
//	  output = "mobile"
//	  parameters { max_size = 512 }
//	  asset "textures/hero.png" {
//	    parameters { filter = "nearest" }
//	  }
//	}
//
//	asset "textures/hero.png" {
//	  processor = "Texture2DProcessor"
//	  tag       = "ui"
//	  parameters { generate_mipmaps = true }
//	  bundle "mobile" { parameters { max_size = 256 } }
//	}

package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// fileRoot is used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Contents []*ContentBlock `hcl:"content,block"`
	Bundles  []*BundleBlock  `hcl:"bundle,block"`
	Assets   []*AssetBlock   `hcl:"asset,block"`
}

// ContentBlock names the content and locates its source and output roots,
// both relative to the file that declares the block.
type ContentBlock struct {
	Name   string `hcl:"name,label"`
	Root   string `hcl:"root,optional"`
	Output string `hcl:"output,optional"`
}

// ParametersBlock holds free-form parameter attributes. Its body is kept raw
// so that attribute order can be recovered from source ranges.
type ParametersBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// BundleBlock declares a custom bundle.
type BundleBlock struct {
	Name       string              `hcl:"name,label"`
	Output     string              `hcl:"output,optional"`
	Parameters *ParametersBlock    `hcl:"parameters,block"`
	Assets     []*BundleAssetBlock `hcl:"asset,block"`
}

// BundleAssetBlock is a per-asset override declared inside a bundle.
type BundleAssetBlock struct {
	Path       string           `hcl:"path,label"`
	Parameters *ParametersBlock `hcl:"parameters,block"`
}

// AssetBlock declares an asset.
type AssetBlock struct {
	Path       string              `hcl:"path,label"`
	Processor  string              `hcl:"processor,optional"`
	Tag        string              `hcl:"tag,optional"`
	Parameters *ParametersBlock    `hcl:"parameters,block"`
	Bundles    []*AssetBundleBlock `hcl:"bundle,block"`
}

// AssetBundleBlock is a per-bundle override declared inside an asset.
type AssetBundleBlock struct {
	Name       string           `hcl:"name,label"`
	Parameters *ParametersBlock `hcl:"parameters,block"`
}
