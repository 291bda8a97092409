package host

import (
	"errors"
	"testing"

	"github.com/sipf/sipfnode/board"
)

func TestReadBeforeInit(t *testing.T) {
	b := New(nil)
	if _, err := b.ReadButton(); !errors.Is(err, board.ErrHardwareUnavailable) {
		t.Errorf("want ErrHardwareUnavailable, got %v", err)
	}
}

func TestInitDrivesEverythingInactive(t *testing.T) {
	b := New(nil)
	b.Press()
	if err := b.Init(); err != nil {
		t.Fatal(err)
	}
	boot, state := b.LEDs()
	if boot || state {
		t.Error("LEDs should be inactive after init")
	}
	if v, err := b.ReadButton(); err != nil || v != 0 {
		t.Errorf("button = %d, %v; want 0, nil", v, err)
	}
}

func TestButtonLevels(t *testing.T) {
	b := New(nil)
	if err := b.Init(); err != nil {
		t.Fatal(err)
	}
	b.Press()
	if v, _ := b.ReadButton(); v != 1 {
		t.Errorf("pressed: got %d", v)
	}
	b.Release()
	if v, _ := b.ReadButton(); v != 0 {
		t.Errorf("released: got %d", v)
	}
}

func TestToggleStateLED(t *testing.T) {
	b := New(nil)
	b.Init()
	b.ToggleStateLED()
	if _, state := b.LEDs(); !state {
		t.Error("state LED should be on after toggle")
	}
	b.ToggleStateLED()
	if _, state := b.LEDs(); state {
		t.Error("state LED should be off after second toggle")
	}
}
