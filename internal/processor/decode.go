package processor

import (
	"fmt"
	"reflect"

	"github.com/vk/assetforge/internal/params"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Decode fills target, a pointer to a struct whose fields carry `cty:"name"`
// tags, from the effective parameter set. Each tagged field must name a
// parameter declared by d; values missing from set fall back to the
// declared default.
//
//	type options struct {
//		MaxSize int    `cty:"max_size"`
//		Filter  string `cty:"filter"`
//	}
func Decode(set *params.Set, d *Descriptor, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("decode target must be a pointer to a struct, got %T", target)
	}
	structType := rv.Elem().Type()

	attrs := make(map[string]cty.Value)
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		if !field.IsExported() {
			continue
		}
		name := field.Tag.Get("cty")
		if name == "" {
			continue
		}

		p, ok := d.Parameter(name)
		if !ok {
			return fmt.Errorf("field %s: processor '%s' declares no parameter '%s'", field.Name, d.Name, name)
		}
		raw, ok := set.Get(name)
		if !ok {
			raw = p.Default
		}
		val, err := p.Value(raw)
		if err != nil {
			return err
		}

		fieldType, err := gocty.ImpliedType(reflect.Zero(field.Type).Interface())
		if err != nil {
			return fmt.Errorf("field %s: %w", field.Name, err)
		}
		val, err = convert.Convert(val, fieldType)
		if err != nil {
			return fmt.Errorf("parameter '%s' cannot be stored in field %s (%s): %w", name, field.Name, fieldType.FriendlyName(), err)
		}
		attrs[name] = val
	}

	if err := gocty.FromCtyValue(cty.ObjectVal(attrs), target); err != nil {
		return fmt.Errorf("decoding parameters of '%s': %w", d.Name, err)
	}
	return nil
}
