package hcl_adapter

import (
	"fmt"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/vk/assetforge/internal/content"
	"github.com/vk/assetforge/internal/fsutil"
	"github.com/vk/assetforge/internal/params"
	"github.com/zclconf/go-cty/cty"
)

// Encode renders c as a content file located in dir. Source and output roots
// are written relative to dir when possible. Parameter values are written as
// strings, which load back unchanged.
func Encode(c *content.Content, dir string) []byte {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	cb := body.AppendNewBlock("content", []string{c.Name}).Body()
	cb.SetAttributeValue("root", cty.StringVal(relativeTo(dir, c.SourceRoot)))
	cb.SetAttributeValue("output", cty.StringVal(relativeTo(dir, c.OutputRoot)))

	for _, b := range c.Bundles {
		body.AppendNewline()
		bb := body.AppendNewBlock("bundle", []string{b.Name}).Body()
		if b.OutputDir != "" {
			bb.SetAttributeValue("output", cty.StringVal(b.OutputDir))
		}
		appendParameters(bb, b.Parameters)
	}

	for _, a := range c.Assets {
		body.AppendNewline()
		ab := body.AppendNewBlock("asset", []string{a.Path}).Body()
		ab.SetAttributeValue("processor", cty.StringVal(a.Processor))
		if a.Tag != "" {
			ab.SetAttributeValue("tag", cty.StringVal(a.Tag))
		}
		appendParameters(ab, a.Parameters)
		for _, o := range a.BundleOverrides {
			ob := ab.AppendNewBlock("bundle", []string{o.Bundle}).Body()
			appendParameters(ob, o.Parameters)
		}
	}
	return hclwrite.Format(f.Bytes())
}

// Save writes c to file, replacing it atomically.
func Save(c *content.Content, file string) error {
	data := Encode(c, filepath.Dir(file))
	if err := fsutil.WriteFileAtomic(file, data, 0o644); err != nil {
		return fmt.Errorf("failed to save content file %s: %w", file, err)
	}
	return nil
}

func appendParameters(body *hclwrite.Body, set *params.Set) {
	if set.Len() == 0 {
		return
	}
	pb := body.AppendNewBlock("parameters", nil).Body()
	for k, v := range set.All() {
		pb.SetAttributeValue(k, cty.StringVal(v))
	}
}

func relativeTo(dir, target string) string {
	absDir, err1 := filepath.Abs(dir)
	absTarget, err2 := filepath.Abs(target)
	if err1 != nil || err2 != nil {
		return filepath.ToSlash(target)
	}
	rel, err := filepath.Rel(absDir, absTarget)
	if err != nil {
		return filepath.ToSlash(absTarget)
	}
	return filepath.ToSlash(rel)
}
