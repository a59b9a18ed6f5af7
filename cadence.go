// Package cadence identifies the Cadence timer scheduler module
package cadence

const (
	// Name is the service name reported by loggers
	Name = "cadence"

	// Version is the module version reported by loggers
	Version = "0.1.0"
)
