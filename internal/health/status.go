package health

// Status represents a health severity level.
type Status string

const (
	// StatusUp indicates the component is functioning as expected.
	StatusUp Status = "up"

	// StatusDown indicates the component has suffered an unexpected failure.
	StatusDown Status = "down"

	// StatusOutOfService indicates the component has been taken out of
	// service and should not be used.
	StatusOutOfService Status = "out-of-service"

	// StatusUnknown indicates the component state cannot be determined.
	StatusUnknown Status = "unknown"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// Known reports whether the status belongs to the closed severity set.
func (s Status) Known() bool {
	switch s {
	case StatusUp, StatusDown, StatusOutOfService, StatusUnknown:
		return true
	default:
		return false
	}
}
