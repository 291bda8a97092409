package modem

import "testing"

func TestRegistered(t *testing.T) {
	for _, s := range []RegStatus{RegHome, RegRoaming} {
		if !s.Registered() {
			t.Errorf("%s should satisfy the attach predicate", s)
		}
	}
	for _, s := range []RegStatus{RegNotRegistered, RegSearching, RegDenied, RegUnknown} {
		if s.Registered() {
			t.Errorf("%s should not satisfy the attach predicate", s)
		}
	}
}

func TestEventString(t *testing.T) {
	e := Event{Type: EventRegStatus, RegStatus: RegHome}
	if got := e.String(); got != "reg-status registered-home" {
		t.Errorf("got %q", got)
	}
	e = Event{Type: EventCellUpdate, Cell: Cell{ID: 0x12BEEF, TAC: 0x2F}}
	if got := e.String(); got != "cell id=1228527 tac=47" {
		t.Errorf("got %q", got)
	}
}
