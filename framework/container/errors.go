package container

import (
	"errors"
	"strings"
)

// ErrCircularDependency matches every CircularDependencyError via errors.Is.
var ErrCircularDependency = errors.New("circular dependency")

// CircularDependencyError reports a service that needs itself to be built.
type CircularDependencyError struct {
	Name  string
	Chain []string // resolution path, ending with Name
}

func newCircularDependencyError(name string, stack *resolution) *CircularDependencyError {
	var chain []string
	if stack != nil {
		chain = append(chain, stack.chain...)
	}
	return &CircularDependencyError{Name: name, Chain: append(chain, name)}
}

func (e *CircularDependencyError) Error() string {
	return "container: circular dependency on [" + e.Name + "]: " + strings.Join(e.Chain, " -> ")
}

func (e *CircularDependencyError) Is(target error) bool {
	return target == ErrCircularDependency
}
