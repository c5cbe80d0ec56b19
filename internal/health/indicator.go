package health

import "context"

// Indicator is a source of one health result, evaluated synchronously.
type Indicator interface {
	Health(ctx context.Context) Health
}

// IndicatorFunc adapts a function to the Indicator interface.
type IndicatorFunc func(ctx context.Context) Health

// Health evaluates the indicator.
func (f IndicatorFunc) Health(ctx context.Context) Health {
	return f(ctx)
}

// ReactiveIndicator is a source of one deferred health result. The
// returned channel yields at most one result and is then closed; a
// channel closed without yielding a result means the indicator has no
// status to contribute. Callers block on the channel with no timeout
// of their own, so any bounding of the wait is the indicator's
// responsibility.
type ReactiveIndicator interface {
	Health(ctx context.Context) <-chan Health
}

// ReactiveIndicatorFunc adapts a function to the ReactiveIndicator
// interface.
type ReactiveIndicatorFunc func(ctx context.Context) <-chan Health

// Health starts the deferred evaluation.
func (f ReactiveIndicatorFunc) Health(ctx context.Context) <-chan Health {
	return f(ctx)
}

// Contributor is a named entry of a composite indicator.
type Contributor struct {
	Name      string
	Indicator Indicator
}

// Composite is an indicator made of named sub-indicators. Evaluating
// the composite directly yields the worst contributor severity; the
// bridge instead flattens composites into their contributors at
// initialization.
type Composite struct {
	contributors []Contributor
}

// NewComposite creates a composite indicator from the given
// contributors, preserving their order.
func NewComposite(contributors ...Contributor) *Composite {
	return &Composite{contributors: contributors}
}

// Add appends a named contributor.
func (c *Composite) Add(name string, indicator Indicator) {
	c.contributors = append(c.contributors, Contributor{Name: name, Indicator: indicator})
}

// Contributors returns the ordered contributor entries.
func (c *Composite) Contributors() []Contributor {
	out := make([]Contributor, len(c.contributors))
	copy(out, c.contributors)
	return out
}

// Health evaluates every contributor and reports the worst severity,
// with per-contributor results in the details.
func (c *Composite) Health(ctx context.Context) Health {
	statuses := make([]Status, 0, len(c.contributors))
	details := make(map[string]any, len(c.contributors))

	for _, entry := range c.contributors {
		h := entry.Indicator.Health(ctx)
		statuses = append(statuses, h.Status)
		details[entry.Name] = h
	}

	return Health{Status: defaultAggregator.Aggregate(statuses), Details: details}
}
