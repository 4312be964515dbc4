// This file defines the typed parameter schema of a processor and the mapping
// from parameter types onto cty types.
//
// Parameter values travel through the pipeline as strings so that they can be
// merged, logged and hashed uniformly. The declared type is applied only at
// the two edges: when a descriptor is registered (its defaults must parse)
// and when a processor decodes its effective parameters into a Go struct.

package processor

import (
	"fmt"
	"image/color"
	"slices"
	"strconv"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// ParamType is the declared value type of a processor parameter.
type ParamType int

const (
	TypeString ParamType = iota
	TypeBool
	TypeInt
	TypeFloat
	TypeColor
	TypeVector
	TypeEnum
)

var paramTypeNames = map[ParamType]string{
	TypeString: "string",
	TypeBool:   "bool",
	TypeInt:    "int",
	TypeFloat:  "float",
	TypeColor:  "color",
	TypeVector: "vector",
	TypeEnum:   "enum",
}

// String returns the keyword of the type.
func (t ParamType) String() string {
	if name, ok := paramTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ParamType(%d)", int(t))
}

// ParseParamType converts a type keyword back into a ParamType.
func ParseParamType(s string) (ParamType, error) {
	for t, name := range paramTypeNames {
		if name == strings.ToLower(s) {
			return t, nil
		}
	}
	return TypeString, fmt.Errorf("unknown parameter type %q", s)
}

// CtyType returns the cty type a value of this parameter type converts to.
// Colors, vectors and enums stay strings and are parsed by the processor.
func (t ParamType) CtyType() cty.Type {
	switch t {
	case TypeBool:
		return cty.Bool
	case TypeInt, TypeFloat:
		return cty.Number
	default:
		return cty.String
	}
}

// Parameter declares one configurable input of a processor.
type Parameter struct {
	Name        string
	Description string
	// Category groups parameters for editing tools only.
	Category string
	Type     ParamType
	Default  string
	// Values lists the accepted values of an enum parameter.
	Values []string
}

// Value converts a raw string into a cty value of the parameter's type,
// validating it along the way.
func (p *Parameter) Value(raw string) (cty.Value, error) {
	val, err := convert.Convert(cty.StringVal(raw), p.Type.CtyType())
	if err != nil {
		return cty.NilVal, fmt.Errorf("parameter '%s': %q is not a valid %s", p.Name, raw, p.Type)
	}

	switch p.Type {
	case TypeInt:
		if !val.AsBigFloat().IsInt() {
			return cty.NilVal, fmt.Errorf("parameter '%s': %q is not a valid int", p.Name, raw)
		}
	case TypeColor:
		if _, err := ParseColor(raw); err != nil {
			return cty.NilVal, fmt.Errorf("parameter '%s': %w", p.Name, err)
		}
	case TypeVector:
		if _, err := ParseVector(raw); err != nil {
			return cty.NilVal, fmt.Errorf("parameter '%s': %w", p.Name, err)
		}
	case TypeEnum:
		if !slices.Contains(p.Values, raw) {
			return cty.NilVal, fmt.Errorf("parameter '%s': %q is not one of [%s]", p.Name, raw, strings.Join(p.Values, ", "))
		}
	}
	return val, nil
}

// Validate reports whether raw is acceptable for this parameter.
func (p *Parameter) Validate(raw string) error {
	_, err := p.Value(raw)
	return err
}

// ParseColor parses `#RRGGBB`, `#RRGGBBAA` or `r,g,b[,a]` with 0-255 components.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	if hex, ok := strings.CutPrefix(s, "#"); ok {
		if len(hex) != 6 && len(hex) != 8 {
			return color.NRGBA{}, fmt.Errorf("invalid color %q: expected #RRGGBB or #RRGGBBAA", s)
		}
		if len(hex) == 6 {
			hex += "ff"
		}
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
		}
		return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
	}

	parts := strings.Split(s, ",")
	if len(parts) != 3 && len(parts) != 4 {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: expected 3 or 4 components", s)
	}
	comps := [4]uint8{255, 255, 255, 255}
	for i, part := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(part), 10, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid color %q: component %d: %w", s, i, err)
		}
		comps[i] = uint8(v)
	}
	return color.NRGBA{R: comps[0], G: comps[1], B: comps[2], A: comps[3]}, nil
}

// ParseVector parses 2 to 4 comma-separated floats.
func ParseVector(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) < 2 || len(parts) > 4 {
		return nil, fmt.Errorf("invalid vector %q: expected 2 to 4 components", s)
	}
	out := make([]float64, len(parts))
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid vector %q: component %d: %w", s, i, err)
		}
		out[i] = f
	}
	return out, nil
}
