package booking

// Effect is a one-time side effect a status transition asks its caller
// to execute. Transitions return the full effect list explicitly so
// "what changed" and "what to do about it" live in one auditable
// place, instead of hook chains reacting to field diffs.
type Effect string

const (
	// EffectNotifyCustomer asks for a fire-and-forget customer
	// notification. Delivery failures must not roll back the transition.
	EffectNotifyCustomer Effect = "notify_customer"

	// EffectRecordStats asks for the customer statistics aggregation.
	// The recorder must be idempotent per booking; the state machine
	// emits it exactly once per transition into completed, but the
	// same transition event may be delivered more than once.
	EffectRecordStats Effect = "record_stats"
)
