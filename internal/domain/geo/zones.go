package geo

import (
	"strings"

	"github.com/BrightMove-Delivery/service-booking/internal/domain"
)

// Zone classifies a serviceable postal code.
type Zone string

const (
	ZoneCore      Zone = "core"
	ZoneSurcharge Zone = "surcharge"
)

// Classification is the result of looking up a postal code. It is a
// pure value: classification performs no I/O and is safe to call
// concurrently.
type Classification struct {
	Serviceable       bool
	RequiresSurcharge bool
	Zone              Zone
	Message           string
}

// Core service area: Manhattan below 110th St plus adjacent zips.
var coreZips = map[string]struct{}{
	"10001": {}, "10002": {}, "10003": {}, "10004": {}, "10005": {},
	"10006": {}, "10007": {}, "10009": {}, "10010": {}, "10011": {},
	"10012": {}, "10013": {}, "10014": {}, "10016": {}, "10017": {},
	"10018": {}, "10019": {}, "10021": {}, "10022": {}, "10023": {},
	"10024": {}, "10025": {}, "10026": {}, "10027": {}, "10028": {},
	"10029": {}, "10036": {}, "10038": {}, "10065": {}, "10069": {},
	"10075": {}, "10128": {}, "10280": {}, "10282": {},
}

// Extended service area: served with a fixed surcharge per address.
var surchargeZips = map[string]struct{}{
	"10030": {}, "10031": {}, "10032": {}, "10033": {}, "10034": {},
	"10035": {}, "10037": {}, "10039": {}, "10040": {}, "10044": {},
	"10451": {}, "10452": {}, "10453": {}, "10454": {}, "10455": {},
	"11101": {}, "11102": {}, "11103": {}, "11104": {}, "11105": {},
	"11106": {}, "11201": {}, "11205": {}, "11206": {}, "11211": {},
	"11215": {}, "11217": {}, "11222": {}, "11231": {}, "11238": {},
	"11249": {}, "11301": {}, "11371": {}, "11430": {},
}

// Classify maps a postal code to its service zone. A trailing ZIP+4
// extension is stripped before lookup. Blank input is an error; an
// unknown code is not serviceable and carries a suggestion message.
func Classify(postalCode string) (Classification, error) {
	code := strings.TrimSpace(postalCode)
	if code == "" {
		return Classification{}, domain.NewValidationError("postal code required")
	}
	if i := strings.Index(code, "-"); i >= 0 {
		code = code[:i]
	}

	if _, ok := coreZips[code]; ok {
		return Classification{
			Serviceable: true,
			Zone:        ZoneCore,
		}, nil
	}
	if _, ok := surchargeZips[code]; ok {
		return Classification{
			Serviceable:       true,
			RequiresSurcharge: true,
			Zone:              ZoneSurcharge,
			Message:           "this address is in our extended service area; a delivery surcharge applies",
		}, nil
	}

	return Classification{
		Serviceable: false,
		Message:     "we don't currently serve this postal code; call us for a custom quote",
	}, nil
}
