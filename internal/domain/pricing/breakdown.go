package pricing

// LineItem is one labelled component of a priced booking.
type LineItem struct {
	Label       string `json:"label"`
	AmountCents int64  `json:"amount_cents"`
}

// Breakdown is the itemized result of pricing one booking spec. It is
// an immutable value: persistence takes a breakdown and writes it, and
// re-pricing produces a fresh one.
//
// TotalCents always equals
//
//	base + organizing + organizing tax + coi + geo + window + date - discount
//
// clamped at zero.
type Breakdown struct {
	BaseCents                int64      `json:"base_cents"`
	OrganizingTotalCents     int64      `json:"organizing_total_cents"`
	OrganizingTaxCents       int64      `json:"organizing_tax_cents"`
	COIFeeCents              int64      `json:"coi_fee_cents"`
	GeoSurchargeCents        int64      `json:"geo_surcharge_cents"`
	TimeWindowSurchargeCents int64      `json:"time_window_surcharge_cents"`
	DateSurchargeCents       int64      `json:"date_surcharge_cents"`
	DiscountCents            int64      `json:"discount_cents"`
	TotalCents               int64      `json:"total_cents"`
	LineItems                []LineItem `json:"line_items"`
	Disclaimers              []string   `json:"disclaimers,omitempty"`
}

// PreDiscountTotalCents is the sum of all components before the
// discount step. Discount eligibility (minimum order) is checked
// against this amount.
func (b Breakdown) PreDiscountTotalCents() int64 {
	return b.BaseCents +
		b.OrganizingTotalCents +
		b.OrganizingTaxCents +
		b.COIFeeCents +
		b.GeoSurchargeCents +
		b.TimeWindowSurchargeCents +
		b.DateSurchargeCents
}

// WithDiscount returns a copy of the breakdown with the discount
// applied last, clamped so the total never goes negative.
func (b Breakdown) WithDiscount(label string, discountCents int64) Breakdown {
	if discountCents <= 0 {
		return b
	}
	pre := b.PreDiscountTotalCents()
	if discountCents > pre {
		discountCents = pre
	}
	out := b
	out.DiscountCents = discountCents
	out.TotalCents = pre - discountCents
	out.LineItems = append(append([]LineItem(nil), b.LineItems...), LineItem{
		Label:       label,
		AmountCents: -discountCents,
	})
	return out
}

func (b *Breakdown) addLine(label string, amountCents int64) {
	b.LineItems = append(b.LineItems, LineItem{Label: label, AmountCents: amountCents})
}

func (b *Breakdown) finalize() {
	b.TotalCents = b.PreDiscountTotalCents() - b.DiscountCents
	if b.TotalCents < 0 {
		b.TotalCents = 0
	}
}
