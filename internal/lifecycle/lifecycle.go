// Package lifecycle provides ordered start and stop sequencing for
// long-lived components.
package lifecycle

import (
	"sort"
	"sync"

	"github.com/velnikov/healthbridge/internal/observability"
)

// Priority values for component ordering. Lower values take
// precedence: a component with a lower Order value starts first and
// stops first.
const (
	// PriorityHighest is the highest precedence order value.
	PriorityHighest = -1 << 31

	// PriorityDefault is the order value for components without an
	// explicit ordering requirement.
	PriorityDefault = 0

	// PriorityLowest is the lowest precedence order value.
	PriorityLowest = 1<<31 - 1
)

// Component is a lifecycle-managed object.
type Component interface {
	Start()
	Stop()
	IsRunning() bool
}

// Ordered is implemented by components with an ordering requirement.
type Ordered interface {
	Order() int
}

// Manager starts and stops registered components in priority order.
type Manager struct {
	mu         sync.Mutex
	components []namedComponent
	logger     observability.Logger
}

type namedComponent struct {
	name      string
	component Component
}

// ManagerOption is a functional option for configuring the manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger for the manager.
func WithLogger(logger observability.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates an empty lifecycle manager.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{logger: observability.NopLogger()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Add registers a component under the given name.
func (m *Manager) Add(name string, component Component) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.components = append(m.components, namedComponent{name: name, component: component})
}

// orderOf returns the component's order value, PriorityDefault when
// the component does not implement Ordered.
func orderOf(c Component) int {
	if ordered, ok := c.(Ordered); ok {
		return ordered.Order()
	}
	return PriorityDefault
}

// sorted returns the components sorted by ascending order value.
// Registration order breaks ties.
func (m *Manager) sorted() []namedComponent {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]namedComponent, len(m.components))
	copy(out, m.components)
	sort.SliceStable(out, func(i, j int) bool {
		return orderOf(out[i].component) < orderOf(out[j].component)
	})
	return out
}

// StartAll starts every component, highest precedence first.
func (m *Manager) StartAll() {
	for _, entry := range m.sorted() {
		m.logger.Info("starting component",
			observability.String("component", entry.name))
		entry.component.Start()
	}
}

// StopAll stops every component, highest precedence first, so that
// components suppressing their output during shutdown do so before
// later components act on it.
func (m *Manager) StopAll() {
	for _, entry := range m.sorted() {
		m.logger.Info("stopping component",
			observability.String("component", entry.name))
		entry.component.Stop()
	}
}
