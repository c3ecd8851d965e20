package pricing

import "fmt"

// UnknownServiceTypeError is returned when the spec names a service
// type the catalog does not recognize.
type UnknownServiceTypeError struct {
	ServiceType string
}

func (e *UnknownServiceTypeError) Error() string {
	return fmt.Sprintf("unknown service type: %q", e.ServiceType)
}

// MissingRequiredFieldError is returned when a field required for the
// selected service type is absent or zero.
type MissingRequiredFieldError struct {
	Field string
}

func (e *MissingRequiredFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// InvalidPackageError is returned when a referenced package or add-on
// cannot be priced (unknown ID, inactive, or tier mismatch).
type InvalidPackageError struct {
	Reason string
}

func (e *InvalidPackageError) Error() string {
	return e.Reason
}
