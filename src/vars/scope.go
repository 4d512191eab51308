package vars

import (
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/gjson"
)

// ErrInvalidJSON indicates a JSON scope document that does not parse.
var ErrInvalidJSON = errors.New("invalid json scope")

// Scope looks up variable values by name. Scopes may delegate to a parent.
type Scope interface {
	Lookup(name string) (string, bool)
}

// MapScope holds values in memory on top of an optional parent scope.
type MapScope struct {
	parent Scope
	values map[string]string
}

// NewMapScope builds a scope over values; names it lacks are looked up in parent.
func NewMapScope(parent Scope, values map[string]string) *MapScope {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &MapScope{parent: parent, values: copied}
}

// Set defines name in this scope, shadowing any parent value.
func (s *MapScope) Set(name, value string) {
	s.values[name] = value
}

// Lookup returns the innermost value bound to name.
func (s *MapScope) Lookup(name string) (string, bool) {
	if value, ok := s.values[name]; ok {
		return value, true
	}
	if s.parent != nil {
		return s.parent.Lookup(name)
	}
	return "", false
}

// JSONScope resolves dotted names such as "server.port" against a JSON document.
type JSONScope struct {
	parent Scope
	doc    string
}

// NewJSONScope validates data and builds a scope over it.
func NewJSONScope(parent Scope, data []byte) (*JSONScope, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}
	return &JSONScope{parent: parent, doc: string(data)}, nil
}

// LoadJSONScope reads a JSON scope document from path.
func LoadJSONScope(path string, parent Scope) (*JSONScope, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scope file %s: %w", path, err)
	}
	scope, err := NewJSONScope(parent, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return scope, nil
}

// Lookup returns the value at the gjson path name. Objects and arrays come back as raw JSON.
func (s *JSONScope) Lookup(name string) (string, bool) {
	result := gjson.Get(s.doc, name)
	if result.Exists() {
		return result.String(), true
	}
	if s.parent != nil {
		return s.parent.Lookup(name)
	}
	return "", false
}

// EnvScope resolves names from the process environment.
type EnvScope struct{}

// Lookup returns the environment variable name.
func (EnvScope) Lookup(name string) (string, bool) {
	return os.LookupEnv(name)
}
