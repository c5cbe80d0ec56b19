package health

// StatusAggregator reduces a set of severities to a single one. The
// input carries distinct severities only; duplicates have already been
// collapsed by the caller.
type StatusAggregator interface {
	Aggregate(statuses []Status) Status
}

// defaultStatusOrder is the worst-first severity precedence used when
// no explicit order is supplied.
var defaultStatusOrder = []Status{
	StatusDown,
	StatusOutOfService,
	StatusUp,
	StatusUnknown,
}

// defaultAggregator is shared by evaluations that do not carry their
// own aggregator. It is immutable after construction.
var defaultAggregator StatusAggregator = NewOrderedStatusAggregator()

// OrderedStatusAggregator picks the highest-precedence severity
// present in the input, following a fixed worst-first order.
type OrderedStatusAggregator struct {
	order []Status
}

// NewOrderedStatusAggregator creates an aggregator with the given
// severity precedence. With no arguments the default worst-first
// order (down, out-of-service, up, unknown) applies.
func NewOrderedStatusAggregator(order ...Status) *OrderedStatusAggregator {
	if len(order) == 0 {
		order = defaultStatusOrder
	}
	return &OrderedStatusAggregator{order: order}
}

// Aggregate returns the first severity of the precedence order present
// in the input. Severities outside the configured order are ignored;
// an empty or fully unordered input aggregates to unknown.
func (a *OrderedStatusAggregator) Aggregate(statuses []Status) Status {
	present := make(map[Status]struct{}, len(statuses))
	for _, s := range statuses {
		present[s] = struct{}{}
	}

	for _, s := range a.order {
		if _, ok := present[s]; ok {
			return s
		}
	}
	return StatusUnknown
}
