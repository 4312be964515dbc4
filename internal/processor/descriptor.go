package processor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vk/assetforge/internal/params"
)

// Descriptor is the static description of a processor.
type Descriptor struct {
	// Name is the processor's unique key in the registry.
	Name        string
	Description string
	// Icon is cosmetic metadata for editing tools.
	Icon string
	// Parameters are the declared parameters in declaration order.
	Parameters []*Parameter
	// Extensions are the file-extension patterns the processor handles, for
	// example "png", "*.png", "?.dds" or "*".
	Extensions []string
}

// Parameter looks up a declared parameter by name.
func (d *Descriptor) Parameter(name string) (*Parameter, bool) {
	for _, p := range d.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Defaults returns a fresh Set holding every parameter's default value in
// declaration order.
func (d *Descriptor) Defaults() *params.Set {
	s := params.New()
	for _, p := range d.Parameters {
		s.Put(p.Name, p.Default)
	}
	return s
}

// Validate checks the descriptor's internal consistency: a non-empty name,
// unique parameter names, enum values and defaults that parse as the
// declared type.
func (d *Descriptor) Validate() error {
	var errs []error
	if strings.TrimSpace(d.Name) == "" {
		errs = append(errs, errors.New("processor name must not be empty"))
	}
	seen := make(map[string]struct{}, len(d.Parameters))
	for _, p := range d.Parameters {
		if _, dup := seen[p.Name]; dup {
			errs = append(errs, fmt.Errorf("parameter '%s' is declared more than once", p.Name))
			continue
		}
		seen[p.Name] = struct{}{}
		if p.Type == TypeEnum && len(p.Values) == 0 {
			errs = append(errs, fmt.Errorf("enum parameter '%s' declares no values", p.Name))
			continue
		}
		if err := p.Validate(p.Default); err != nil {
			errs = append(errs, fmt.Errorf("invalid default: %w", err))
		}
	}
	return errors.Join(errs...)
}

// CheckParameters validates an effective parameter set against the declared
// parameters. It returns the validation errors of declared parameters and,
// separately, the names of parameters the descriptor does not declare.
func (d *Descriptor) CheckParameters(set *params.Set) (errs []error, undeclared []string) {
	for name, value := range set.All() {
		p, ok := d.Parameter(name)
		if !ok {
			undeclared = append(undeclared, name)
			continue
		}
		if err := p.Validate(value); err != nil {
			errs = append(errs, err)
		}
	}
	return errs, undeclared
}
