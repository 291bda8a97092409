package modem

import "strconv"

// EventType discriminates the Event union.
type EventType int

const (
	EventRegStatus EventType = iota
	EventCellUpdate
	EventModeUpdate
	EventModem
)

// RegStatus is the network registration state reported by the modem.
type RegStatus int

const (
	RegNotRegistered RegStatus = iota
	RegSearching
	RegHome
	RegRoaming
	RegDenied
	RegUnknown
)

// Registered reports whether the status satisfies the attach predicate.
// Only home and roaming registration count.
func (s RegStatus) Registered() bool {
	return s == RegHome || s == RegRoaming
}

func (s RegStatus) String() string {
	switch s {
	case RegNotRegistered:
		return "not-registered"
	case RegSearching:
		return "searching"
	case RegHome:
		return "registered-home"
	case RegRoaming:
		return "registered-roaming"
	case RegDenied:
		return "denied"
	}
	return "unknown"
}

// Cell identifies the serving cell as reported by +CEREG: the cell
// identity and the tracking area code.
type Cell struct {
	ID  int
	TAC int
}

// Event is one asynchronous notification from the modem.  Only the field
// selected by Type is meaningful.
type Event struct {
	Type      EventType
	RegStatus RegStatus
	Cell      Cell
	LTEMode   string
	ModemEvt  int
}

func (e Event) String() string {
	switch e.Type {
	case EventRegStatus:
		return "reg-status " + e.RegStatus.String()
	case EventCellUpdate:
		return "cell id=" + strconv.Itoa(e.Cell.ID) + " tac=" + strconv.Itoa(e.Cell.TAC)
	case EventModeUpdate:
		return "lte-mode " + e.LTEMode
	case EventModem:
		return "modem-event " + strconv.Itoa(e.ModemEvt)
	}
	return "event?"
}
