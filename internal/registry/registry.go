// Package registry holds the functions the LLM may call and the backend route
// each of them is served by.
//
// Function names are short identifiers because the chat-completion API only
// accepts names matching ^[a-zA-Z0-9_-]{1,64}$, so slash-bearing backend routes
// are aliased ("specialist-find" -> "specialist/find").
package registry

import (
	"regexp"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
)

// ErrUnknownFunction is returned by Resolve for names that were never registered
var ErrUnknownFunction = errors.New("unknown function")

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// Descriptor is what the LLM sees of a function
type Descriptor struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Parameters  *jsonschema.Schema `json:"parameters,omitempty"`
}

// Function binds a descriptor to the backend route that serves it
type Function struct {
	Descriptor
	Path string `json:"-"`
}

// Registry is an immutable, validated lookup table of functions.
// It is safe for concurrent use.
type Registry struct {
	functions []Function
	routes    map[string]string
}

// New validates functions and builds a registry preserving their order
func New(functions ...Function) (*Registry, error) {
	if len(functions) == 0 {
		return nil, errors.New("registry needs at least one function")
	}

	r := &Registry{
		functions: make([]Function, 0, len(functions)),
		routes:    make(map[string]string, len(functions)),
	}
	for _, fn := range functions {
		if !namePattern.MatchString(fn.Name) {
			return nil, errors.Errorf("function name %q does not match %s", fn.Name, namePattern)
		}
		if _, exists := r.routes[fn.Name]; exists {
			return nil, errors.Errorf("function %s registered twice", fn.Name)
		}
		if fn.Path == "" {
			return nil, errors.Errorf("function %s has no backend path", fn.Name)
		}
		if strings.HasPrefix(fn.Path, "/") {
			return nil, errors.Errorf("function %s path %q must be relative to the backend base URL", fn.Name, fn.Path)
		}

		r.functions = append(r.functions, fn)
		r.routes[fn.Name] = fn.Path
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}

	return r, nil
}

// MustNew is New for package-level tables; it panics on an invalid table
func MustNew(functions ...Function) *Registry {
	r, err := New(functions...)
	if err != nil {
		panic(err)
	}
	return r
}

// Descriptors returns the advertised functions in registration order
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, len(r.functions))
	for i, fn := range r.functions {
		out[i] = fn.Descriptor
	}
	return out
}

// Names returns the short names in registration order
func (r *Registry) Names() []string {
	out := make([]string, len(r.functions))
	for i, fn := range r.functions {
		out[i] = fn.Name
	}
	return out
}

// Resolve maps a short name to its backend path
func (r *Registry) Resolve(name string) (string, error) {
	path, ok := r.routes[name]
	if !ok {
		return "", errors.Wrapf(ErrUnknownFunction, "%q", name)
	}
	return path, nil
}

// Validate checks that every advertised descriptor is routable
func (r *Registry) Validate() error {
	for _, d := range r.Descriptors() {
		if _, ok := r.routes[d.Name]; !ok {
			return errors.Errorf("descriptor %s has no route", d.Name)
		}
	}
	return nil
}

// ParametersFor reflects the JSON schema of an argument struct.
// Fields without omitempty are required; descriptions come from the
// jsonschema_description tag.
func ParametersFor(args interface{}, description string) *jsonschema.Schema {
	reflector := &jsonschema.Reflector{
		Anonymous:      true,
		DoNotReference: true,
		ExpandedStruct: true,
	}
	schema := reflector.Reflect(args)
	schema.Version = ""
	schema.Description = description
	return schema
}
