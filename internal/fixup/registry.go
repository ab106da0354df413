// Package fixup applies one-off administrative corrections to the database.
package fixup

import "context"

// Step is a single fix-up action. Steps must be safe to re-run.
type Step interface {
	Name() string
	Run(ctx context.Context) error
}

// Registry keeps steps in the order they run.
type Registry struct {
	steps []Step
}

func NewRegistry(steps ...Step) *Registry {
	registry := &Registry{}
	for _, step := range steps {
		registry.Register(step)
	}
	return registry
}

func (r *Registry) Register(step Step) {
	if step == nil {
		return
	}
	r.steps = append(r.steps, step)
}

// Steps returns a copy of the registered steps.
func (r *Registry) Steps() []Step {
	steps := make([]Step, len(r.steps))
	copy(steps, r.steps)
	return steps
}
