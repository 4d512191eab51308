package vars

import "strings"

const defaultMaxDepth = 8

// Resolver expands variable references in a raw value. References it cannot resolve are
// returned untouched.
type Resolver interface {
	Resolve(raw string, scope Scope) string
}

// Interpolator resolves "${name}" references. A value that itself contains references is
// expanded again, up to MaxDepth times. "$${" is left as written.
type Interpolator struct {
	MaxDepth int
}

// NewInterpolator returns an interpolator with the default nesting limit.
func NewInterpolator() *Interpolator {
	return &Interpolator{MaxDepth: defaultMaxDepth}
}

// Resolve substitutes every resolvable reference in raw.
func (in *Interpolator) Resolve(raw string, scope Scope) string {
	depth := in.MaxDepth
	if depth <= 0 {
		depth = defaultMaxDepth
	}
	return in.resolve(raw, scope, depth)
}

func (in *Interpolator) resolve(raw string, scope Scope, depth int) string {
	if scope == nil || !strings.Contains(raw, "${") {
		return raw
	}
	var builder strings.Builder
	for _, part := range split(raw) {
		if part.name == "" {
			builder.WriteString(part.text)
			continue
		}
		value, ok := scope.Lookup(part.name)
		if !ok {
			builder.WriteString(part.text)
			continue
		}
		if depth > 1 {
			value = in.resolve(value, scope, depth-1)
		}
		builder.WriteString(value)
	}
	return builder.String()
}

// References lists the variable names referenced in raw, in order of appearance.
func References(raw string) []string {
	var names []string
	for _, part := range split(raw) {
		if part.name != "" {
			names = append(names, part.name)
		}
	}
	return names
}

type segment struct {
	text string
	name string
}

// split cuts raw into literal segments and "${name}" references.
func split(raw string) []segment {
	var parts []segment
	rest := raw
	for {
		idx := strings.Index(rest, "${")
		if idx < 0 {
			break
		}
		if idx > 0 && rest[idx-1] == '$' {
			parts = append(parts, segment{text: rest[:idx+2]})
			rest = rest[idx+2:]
			continue
		}
		end := strings.IndexByte(rest[idx+2:], '}')
		if end < 0 {
			break
		}
		name := strings.TrimSpace(rest[idx+2 : idx+2+end])
		if idx > 0 {
			parts = append(parts, segment{text: rest[:idx]})
		}
		ref := rest[idx : idx+3+end]
		if name == "" {
			parts = append(parts, segment{text: ref})
		} else {
			parts = append(parts, segment{text: ref, name: name})
		}
		rest = rest[idx+3+end:]
	}
	if rest != "" {
		parts = append(parts, segment{text: rest})
	}
	return parts
}
