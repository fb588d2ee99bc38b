package model

// ReachabilitySignal is the tri-state view of whether the remote service responds.
type ReachabilitySignal string

const (
	// ReachabilityPending holds only until the first outcome is applied.
	ReachabilityPending     ReachabilitySignal = "PENDING"
	ReachabilityReachable   ReachabilitySignal = "REACHABLE"
	ReachabilityUnreachable ReachabilitySignal = "UNREACHABLE"
)

// String returns the string representation of the signal.
func (s ReachabilitySignal) String() string {
	return string(s)
}

// Outcome is the classification of one completed gateway call.
type Outcome int

const (
	// OutcomeSuccess means the call got a successful response.
	OutcomeSuccess Outcome = iota
	// OutcomeService means the service answered with a failure.
	OutcomeService
	// OutcomeTransport means the service could not be reached.
	OutcomeTransport
	// OutcomeLocal means the call failed before any request was sent.
	OutcomeLocal
	// OutcomeCanceled means the caller abandoned the call before it finished.
	OutcomeCanceled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeService:
		return "service_error"
	case OutcomeTransport:
		return "transport_error"
	case OutcomeLocal:
		return "local"
	case OutcomeCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// AffectsReachability reports whether the outcome says anything about the
// remote service. Local and cancelled calls do not.
func (o Outcome) AffectsReachability() bool {
	switch o {
	case OutcomeSuccess, OutcomeService, OutcomeTransport:
		return true
	default:
		return false
	}
}
