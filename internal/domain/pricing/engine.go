package pricing

import (
	"fmt"

	"github.com/BrightMove-Delivery/service-booking/internal/domain"
	"github.com/BrightMove-Delivery/service-booking/internal/domain/catalog"
	"github.com/BrightMove-Delivery/service-booking/internal/domain/geo"
)

const (
	// Organizing services are taxed at 8.25%; the base price never is.
	organizingTaxBasisPoints = 825

	// The petite tier carries a fixed COI surcharge independent of the
	// package's configurable COI fee. Known asymmetry in the current
	// rate card; do not unify with ServicePackage.COIFeeCents.
	petiteCOICents = 5000

	// Fixed surcharge per out-of-core address (pickup and delivery
	// evaluated independently, so 0, 1 or 2 per booking).
	zoneSurchargeCents = 2500

	// One-hour pickup window fee; standard tier only. The full tier
	// includes it, the petite tier does not offer it.
	oneHourWindowCents = 2500

	airportPerBagCents  = 7500
	airportMinimumCents = 15000
)

// Compute produces the deterministic, itemized breakdown for a quote
// spec against a catalog snapshot. It is a pure function: no I/O, no
// mutation of its inputs, integer-cents arithmetic throughout.
//
// Evaluation order is fixed: base price, organizing add-ons plus tax,
// COI fee, geographic surcharge, time-window surcharge, date-based
// surcharge. The discount step is applied separately via
// Breakdown.WithDiscount so that redemption can be deferred until the
// booking is durably persisted.
func Compute(spec QuoteSpec, snap catalog.Snapshot) (Breakdown, error) {
	if !spec.ServiceType.IsValid() {
		return Breakdown{}, &UnknownServiceTypeError{ServiceType: string(spec.ServiceType)}
	}
	if spec.PickupDate.IsZero() {
		return Breakdown{}, &MissingRequiredFieldError{Field: "pickup_date"}
	}

	var bd Breakdown
	var err error

	switch spec.ServiceType {
	case catalog.ServiceMiniMove:
		err = priceMiniMove(spec, snap, &bd)
	case catalog.ServiceStandardDelivery:
		err = priceStandardDelivery(spec, snap, &bd)
	case catalog.ServiceSpecialtyItem:
		err = priceSpecialtyItems(spec, snap, &bd)
	case catalog.ServiceAirportTransfer:
		err = priceAirportTransfer(spec, &bd)
	}
	if err != nil {
		return Breakdown{}, err
	}

	if err := applyGeoSurcharge(spec, &bd); err != nil {
		return Breakdown{}, err
	}

	// Same-day delivery uses a flat rate that already bakes in urgency
	// pricing; stacking date-based surcharges on top would double-charge.
	if !spec.SameDay {
		for _, a := range catalog.ApplicableSurcharges(snap.SurchargeRules, spec.ServiceType, bd.BaseCents, spec.PickupDate) {
			bd.DateSurchargeCents += a.AmountCents
			bd.addLine(a.Rule.Name, a.AmountCents)
		}
	}

	bd.finalize()
	return bd, nil
}

func priceMiniMove(spec QuoteSpec, snap catalog.Snapshot, bd *Breakdown) error {
	if spec.PackageID == nil {
		return &MissingRequiredFieldError{Field: "package_id"}
	}
	pkg, ok := snap.Packages[*spec.PackageID]
	if !ok {
		return &InvalidPackageError{Reason: fmt.Sprintf("unknown package: %s", spec.PackageID)}
	}
	if !pkg.Active {
		return &InvalidPackageError{Reason: fmt.Sprintf("package %q is no longer offered", pkg.Name)}
	}

	bd.BaseCents = pkg.BasePriceCents
	bd.addLine(pkg.Name, pkg.BasePriceCents)

	for _, id := range spec.OrganizingServiceIDs {
		svc, ok := snap.OrganizingServices[id]
		if !ok || !svc.Active {
			return &InvalidPackageError{Reason: fmt.Sprintf("unknown organizing service: %s", id)}
		}
		if svc.Tier != pkg.Tier {
			return &InvalidPackageError{Reason: fmt.Sprintf("organizing service %q is not available for the %s package", svc.Name, pkg.Tier)}
		}
		bd.OrganizingTotalCents += svc.PriceCents
		bd.addLine(svc.Name, svc.PriceCents)
	}
	if bd.OrganizingTotalCents > 0 {
		// Tax applies to organizing services only, never the base price.
		bd.OrganizingTaxCents = bd.OrganizingTotalCents * organizingTaxBasisPoints / 10000
		bd.addLine("Organizing sales tax", bd.OrganizingTaxCents)
	}

	if spec.COIRequired && !pkg.COIIncluded {
		fee := pkg.COIFeeCents
		if pkg.Tier == catalog.TierPetite {
			fee = petiteCOICents
		}
		bd.COIFeeCents = fee
		bd.addLine("Certificate of insurance", fee)
	}

	if spec.OneHourWindow {
		switch pkg.Tier {
		case catalog.TierPetite:
			return domain.NewValidationError("one-hour pickup window is not offered for the petite package")
		case catalog.TierStandard:
			bd.TimeWindowSurchargeCents = oneHourWindowCents
			bd.addLine("One-hour pickup window", oneHourWindowCents)
		case catalog.TierFull:
			bd.Disclaimers = append(bd.Disclaimers, "one-hour pickup window included with the full package")
		}
	}
	return nil
}

func priceStandardDelivery(spec QuoteSpec, snap catalog.Snapshot, bd *Breakdown) error {
	cfg := snap.DeliveryConfig
	if cfg == nil {
		return &InvalidPackageError{Reason: "no active standard delivery configuration"}
	}
	if spec.ItemCount <= 0 {
		return &MissingRequiredFieldError{Field: "item_count"}
	}
	if spec.ItemCount < cfg.MinimumItems {
		return domain.NewValidationError(fmt.Sprintf("standard delivery requires at least %d item(s)", cfg.MinimumItems))
	}

	base := int64(spec.ItemCount) * cfg.PerItemCents
	if base < cfg.MinimumCents {
		base = cfg.MinimumCents
		bd.Disclaimers = append(bd.Disclaimers, "minimum delivery charge applied")
	}
	bd.addLine(fmt.Sprintf("Standard delivery (%d items)", spec.ItemCount), base)

	if spec.SameDay {
		base += cfg.SameDayFlatCents
		bd.addLine("Same-day delivery", cfg.SameDayFlatCents)
	}
	bd.BaseCents = base
	return nil
}

func priceSpecialtyItems(spec QuoteSpec, snap catalog.Snapshot, bd *Breakdown) error {
	if len(spec.SpecialtyItems) == 0 {
		return &MissingRequiredFieldError{Field: "specialty_items"}
	}
	for _, sel := range spec.SpecialtyItems {
		item, ok := snap.SpecialtyItems[sel.ItemID]
		if !ok || !item.Active {
			return &InvalidPackageError{Reason: fmt.Sprintf("unknown specialty item: %s", sel.ItemID)}
		}
		if sel.Quantity <= 0 {
			return domain.NewValidationError(fmt.Sprintf("quantity for %q must be positive", item.Name))
		}
		amount := item.PriceCents * int64(sel.Quantity)
		bd.BaseCents += amount
		bd.addLine(fmt.Sprintf("%s x%d", item.Name, sel.Quantity), amount)
	}
	return nil
}

func priceAirportTransfer(spec QuoteSpec, bd *Breakdown) error {
	if spec.BagCount <= 0 {
		return &MissingRequiredFieldError{Field: "bag_count"}
	}
	base := int64(spec.BagCount) * airportPerBagCents
	// Minimum is enforced even for a single bag.
	if base < airportMinimumCents {
		base = airportMinimumCents
		bd.Disclaimers = append(bd.Disclaimers, "minimum transfer charge applied")
	}
	bd.BaseCents = base
	bd.addLine(fmt.Sprintf("Airport transfer (%d bags)", spec.BagCount), base)
	return nil
}

func applyGeoSurcharge(spec QuoteSpec, bd *Breakdown) error {
	if spec.PickupPostalCode == "" && spec.DeliveryPostalCode == "" {
		// Legacy records predate per-address postal codes and carry a
		// single boolean flag instead.
		if spec.OutOfZone {
			bd.GeoSurchargeCents = zoneSurchargeCents
			bd.addLine("Extended service area", zoneSurchargeCents)
		}
		return nil
	}

	for _, code := range []string{spec.PickupPostalCode, spec.DeliveryPostalCode} {
		if code == "" {
			continue
		}
		cls, err := geo.Classify(code)
		if err != nil {
			return err
		}
		if !cls.Serviceable {
			return &domain.DomainError{Code: domain.CodeNotFound, Message: cls.Message}
		}
		if cls.RequiresSurcharge {
			bd.GeoSurchargeCents += zoneSurchargeCents
		}
	}
	if bd.GeoSurchargeCents > 0 {
		bd.addLine("Extended service area", bd.GeoSurchargeCents)
	}
	return nil
}
