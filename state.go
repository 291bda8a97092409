package sipfnode

// BringUpState tracks the device bring-up state machine.  StateAttached
// and StateAttachFailed are terminal; everything between is sequential.
type BringUpState int32

const (
	StateModemOff BringUpState = iota
	StateModemReady
	StateModemTrusted
	StatePDNReady
	StateAttaching
	StatePSMRequest
	StateAttached
	StateAttachFailed
)

func (s BringUpState) String() string {
	switch s {
	case StateModemOff:
		return "ModemOff"
	case StateModemReady:
		return "ModemReady"
	case StateModemTrusted:
		return "ModemTrusted"
	case StatePDNReady:
		return "PdnReady"
	case StateAttaching:
		return "AttachAttempt"
	case StatePSMRequest:
		return "PsmRequest"
	case StateAttached:
		return "Attached"
	case StateAttachFailed:
		return "AttachFailed"
	}
	return "?"
}

// Terminal reports whether the state machine has finished, one way or
// the other.
func (s BringUpState) Terminal() bool {
	return s == StateAttached || s == StateAttachFailed
}
