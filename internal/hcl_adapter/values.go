package hcl_adapter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/assetforge/internal/params"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// parameterSet converts a parameters block into a Set, keeping the order in
// which attributes appear in the source. Expressions are evaluated in ectx.
// A nil block yields an empty Set.
func parameterSet(block *ParametersBlock, ectx *hcl.EvalContext) (*params.Set, error) {
	set := params.New()
	if block == nil || block.Body == nil {
		return set, nil
	}

	attrs, diags := block.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid parameters block: %w", diags)
	}

	ordered := make([]*hcl.Attribute, 0, len(attrs))
	for _, attr := range attrs {
		ordered = append(ordered, attr)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Range.Start.Byte < ordered[j].Range.Start.Byte
	})

	for _, attr := range ordered {
		if err := checkReferences(attr.Expr); err != nil {
			return nil, fmt.Errorf("parameter '%s': %w", attr.Name, err)
		}
		val, diags := attr.Expr.Value(ectx)
		if diags.HasErrors() {
			return nil, fmt.Errorf("parameter '%s': %w", attr.Name, diags)
		}
		s, err := valueString(val)
		if err != nil {
			return nil, fmt.Errorf("parameter '%s': %w", attr.Name, err)
		}
		if err := set.Add(attr.Name, s); err != nil {
			return nil, err
		}
	}
	return set, nil
}

// valueString renders a literal as a parameter string. Primitives convert
// directly; lists and tuples of primitives are joined with commas, which is
// how vector and color parameters are written.
func valueString(val cty.Value) (string, error) {
	if val.IsNull() {
		return "", fmt.Errorf("value must not be null")
	}
	if !val.IsWhollyKnown() {
		return "", fmt.Errorf("value must be known")
	}

	ty := val.Type()
	switch {
	case ty.IsPrimitiveType():
		s, err := convert.Convert(val, cty.String)
		if err != nil {
			return "", err
		}
		return s.AsString(), nil
	case ty.IsTupleType() || ty.IsListType():
		parts := make([]string, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			if !elem.Type().IsPrimitiveType() {
				return "", fmt.Errorf("list elements must be strings, numbers or bools, got %s", elem.Type().FriendlyName())
			}
			s, err := valueString(elem)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, ","), nil
	default:
		return "", fmt.Errorf("unsupported value of type %s", ty.FriendlyName())
	}
}
