package editor

import (
	"fmt"

	"xmledit/src/vars"
)

// ResolvingEditor wraps an Editor and expands variable references in the values it reads.
// It refuses to overwrite a value that still holds an unresolved reference.
type ResolvingEditor struct {
	Editor
	resolver vars.Resolver
	scope    vars.Scope
}

// NewResolvingEditor decorates base with resolver over scope.
func NewResolvingEditor(base Editor, resolver vars.Resolver, scope vars.Scope) *ResolvingEditor {
	return &ResolvingEditor{Editor: base, resolver: resolver, scope: scope}
}

// Get returns the resolved value at path.
func (r *ResolvingEditor) Get(path string) (string, bool, error) {
	value, ok, err := r.Editor.Get(path)
	if err != nil || !ok {
		return value, ok, err
	}
	return r.resolver.Resolve(value, r.scope), true, nil
}

// GetList returns the resolved values at path.
func (r *ResolvingEditor) GetList(path string) ([]string, error) {
	values, err := r.Editor.GetList(path)
	if err != nil {
		return nil, err
	}
	for i, value := range values {
		values[i] = r.resolver.Resolve(value, r.scope)
	}
	return values, nil
}

// GetChildren returns the children below path with resolved values.
func (r *ResolvingEditor) GetChildren(path string) ([]Child, error) {
	children, err := r.Editor.GetChildren(path)
	if err != nil {
		return nil, err
	}
	for i := range children {
		children[i].Value = r.resolver.Resolve(children[i].Value, r.scope)
	}
	return children, nil
}

// Set replaces the value at path unless the current value has an unresolved reference.
func (r *ResolvingEditor) Set(path, value string) (bool, error) {
	current, ok, err := r.Editor.Get(path)
	if err == nil && ok {
		if refs := vars.References(r.resolver.Resolve(current, r.scope)); len(refs) > 0 {
			return false, fmt.Errorf("%w: %s references unresolved variable %s", ErrUnsupportedEdit, NormalizePath(path), refs[0])
		}
	}
	return r.Editor.Set(path, value)
}
