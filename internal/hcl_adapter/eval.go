package hcl_adapter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// envRoot is the only variable parameter expressions may reference.
const envRoot = "env"

// newEvalContext exposes environ ("KEY=value" pairs) to parameter
// expressions as env.KEY, together with a few string and number functions:
//
//	parameters {
//	  max_size = max(256, env.TEXTURE_BUDGET)
//	  suffix   = lower(env.PLATFORM)
//	}
func newEvalContext(environ []string) *hcl.EvalContext {
	vars := make(map[string]cty.Value, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || !hclsyntax.ValidIdentifier(k) {
			continue
		}
		vars[k] = cty.StringVal(v)
	}
	env := cty.EmptyObjectVal
	if len(vars) > 0 {
		env = cty.ObjectVal(vars)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{envRoot: env},
		Functions: map[string]function.Function{
			"upper":  stdlib.UpperFunc,
			"lower":  stdlib.LowerFunc,
			"format": stdlib.FormatFunc,
			"join":   stdlib.JoinFunc,
			"min":    stdlib.MinFunc,
			"max":    stdlib.MaxFunc,
		},
	}
}

// checkReferences rejects references to anything but env.
func checkReferences(expr hcl.Expression) error {
	var unknown []string
	for _, traversal := range expr.Variables() {
		if root := traversal.RootName(); root != envRoot {
			unknown = append(unknown, root)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return fmt.Errorf("only %s.* can be referenced, found %s", envRoot, strings.Join(unknown, ", "))
}
