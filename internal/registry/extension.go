package registry

import (
	"path"
	"strings"

	"github.com/vk/assetforge/internal/processor"
)

// Extension patterns come in two forms:
//
//   - extension patterns such as "png", ".png", "t?f" or "*" are matched
//     against a file's extension without its dot. "*.png" is shorthand for
//     "png" and ranks as an exact match.
//   - file name patterns contain a dot after their first character, such as
//     "?.dds" or "hero*.png". They are matched against the base name of a
//     file and only take part in FindForFile.
//
// Matching is case-insensitive. Patterns without `*` or `?` rank before
// patterns with them.

// FindByExtension returns the processors whose extension patterns match ext.
// Within each tier registration order is kept. ext may be given with or
// without its leading dot. No match yields an empty slice.
func (r *Registry) FindByExtension(ext string) []*processor.Descriptor {
	return r.find(normalizeExtension(ext), "")
}

// FindForFile resolves processors for a file, matching extension patterns
// against its extension and file name patterns against its base name.
func (r *Registry) FindForFile(name string) []*processor.Descriptor {
	base := strings.ToLower(path.Base(strings.ReplaceAll(name, "\\", "/")))
	return r.find(normalizeExtension(path.Ext(base)), base)
}

func (r *Registry) find(ext, base string) []*processor.Descriptor {
	exact := make([]*processor.Descriptor, 0)
	var wildcard []*processor.Descriptor
	for _, d := range r.Descriptors() {
		switch matchTier(d.Extensions, ext, base) {
		case tierExact:
			exact = append(exact, d)
		case tierWildcard:
			wildcard = append(wildcard, d)
		}
	}
	return append(exact, wildcard...)
}

type tier int

const (
	tierNone tier = iota
	tierWildcard
	tierExact
)

// matchTier returns the best tier any of the patterns reaches. base is empty
// when only an extension is known.
func matchTier(patterns []string, ext, base string) tier {
	best := tierNone
	for _, raw := range patterns {
		pattern, subject := classify(raw, ext, base)
		if !strings.ContainsAny(pattern, "*?") {
			if pattern == subject {
				return tierExact
			}
			continue
		}
		if ok, err := path.Match(pattern, subject); err == nil && ok {
			best = tierWildcard
		}
	}
	return best
}

// classify normalises raw and picks what it is matched against: the base
// name for file name patterns, the extension otherwise.
func classify(raw, ext, base string) (pattern, subject string) {
	pattern = strings.ToLower(strings.TrimSpace(raw))
	if rest, ok := strings.CutPrefix(pattern, "*."); ok && !strings.ContainsAny(rest, "*?.") {
		return rest, ext
	}
	pattern = strings.TrimPrefix(pattern, ".")
	if strings.Contains(pattern, ".") {
		return pattern, base
	}
	return pattern, ext
}

func normalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}
