package pricing

import (
	"time"

	"github.com/BrightMove-Delivery/service-booking/internal/domain/catalog"
	"github.com/google/uuid"
)

// SpecialtySelection references a catalog specialty item with a
// quantity. Duplicate item types with different counts are legal.
type SpecialtySelection struct {
	ItemID   uuid.UUID `json:"item_id"`
	Quantity int       `json:"quantity"`
}

// QuoteSpec is the full input to the pricing engine: service selection,
// date, geography and add-ons. It carries no catalog data; the engine
// resolves references against a catalog snapshot.
type QuoteSpec struct {
	ServiceType catalog.ServiceType `json:"service_type"`

	// Mini move
	PackageID            *uuid.UUID  `json:"package_id,omitempty"`
	OrganizingServiceIDs []uuid.UUID `json:"organizing_service_ids,omitempty"`
	COIRequired          bool        `json:"coi_required"`
	OneHourWindow        bool        `json:"one_hour_window"`

	// Standard delivery
	ItemCount int  `json:"item_count,omitempty"`
	SameDay   bool `json:"same_day"`

	// Specialty items
	SpecialtyItems []SpecialtySelection `json:"specialty_items,omitempty"`

	// Airport transfer
	BagCount int `json:"bag_count,omitempty"`

	// Schedule & geography
	PickupDate         time.Time `json:"pickup_date"`
	PickupPostalCode   string    `json:"pickup_postal_code,omitempty"`
	DeliveryPostalCode string    `json:"delivery_postal_code,omitempty"`

	// OutOfZone is the legacy flat-surcharge flag used when postal
	// codes are absent from older booking records.
	OutOfZone bool `json:"out_of_zone,omitempty"`
}
