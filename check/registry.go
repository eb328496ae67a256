package check

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Registry maps check type names to their constructors. It is filled once at
// startup and only read afterwards.
type Registry struct {
	ctors map[string]Constructor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{ctors: map[string]Constructor{}}
}

// Register adds a constructor for the given check type.
func (r *Registry) Register(checkType string, ctor Constructor) error {
	if checkType == "" {
		return errors.New("check type must not be empty")
	}

	if ctor == nil {
		return errors.Errorf("nil constructor for check type %s", checkType)
	}

	if _, ok := r.ctors[checkType]; ok {
		return errors.Errorf("check type %s already registered", checkType)
	}

	r.ctors[checkType] = ctor

	return nil
}

// Resolve returns the constructor registered for name.
func (r *Registry) Resolve(name string) (Constructor, error) {
	ctor, ok := r.ctors[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownCheck, "%s (valid check types: %s)",
			name, strings.Join(r.Types(), ", "))
	}

	return ctor, nil
}

// Types returns the registered check types, sorted.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.ctors))
	for t := range r.ctors {
		types = append(types, t)
	}

	sort.Strings(types)

	return types
}
