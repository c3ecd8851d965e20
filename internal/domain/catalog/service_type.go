package catalog

// ServiceType identifies which line of business a booking belongs to.
type ServiceType string

const (
	ServiceMiniMove         ServiceType = "mini_move"
	ServiceStandardDelivery ServiceType = "standard_delivery"
	ServiceSpecialtyItem    ServiceType = "specialty_item"
	ServiceAirportTransfer  ServiceType = "airport_transfer"
)

// IsValid returns true if the service type is recognized.
func (s ServiceType) IsValid() bool {
	switch s {
	case ServiceMiniMove, ServiceStandardDelivery, ServiceSpecialtyItem, ServiceAirportTransfer:
		return true
	}
	return false
}

// String returns the string representation of the service type.
func (s ServiceType) String() string {
	return string(s)
}
