package health

// Health carries one indicator result: a severity and optional details.
type Health struct {
	Status  Status         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}

// Up returns a healthy result.
func Up() Health {
	return Health{Status: StatusUp}
}

// Down returns an unhealthy result. A non-nil error is recorded under
// the "error" detail key.
func Down(err error) Health {
	h := Health{Status: StatusDown}
	if err != nil {
		h = h.WithDetail("error", err.Error())
	}
	return h
}

// OutOfService returns an out-of-service result.
func OutOfService() Health {
	return Health{Status: StatusOutOfService}
}

// Unknown returns a result with undetermined severity.
func Unknown() Health {
	return Health{Status: StatusUnknown}
}

// WithStatus returns a copy of the result with the given severity.
func (h Health) WithStatus(status Status) Health {
	h.Status = status
	return h
}

// WithDetail returns a copy of the result with an additional detail.
// The receiver's detail map is not modified.
func (h Health) WithDetail(key string, value any) Health {
	details := make(map[string]any, len(h.Details)+1)
	for k, v := range h.Details {
		details[k] = v
	}
	details[key] = value
	h.Details = details
	return h
}
