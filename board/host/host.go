// Package host is the board binding for gateway builds running on a
// host OS.  LEDs are tracked in memory and reported at debug level;
// the button level is driven externally through Press and Release.
package host

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/sipf/sipfnode/board"
)

type Board struct {
	log *logrus.Entry

	mu     sync.Mutex
	ready  bool
	boot   bool
	state  bool
	button int
}

var _ board.Board = (*Board)(nil)

func New(log *logrus.Entry) *Board {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Board{log: log}
}

func (b *Board) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ready = true
	b.boot = false
	b.state = false
	b.button = 0
	return nil
}

func (b *Board) SetBootLED(on bool) {
	b.mu.Lock()
	b.boot = on
	b.mu.Unlock()
	b.log.WithField("on", on).Debug("boot led")
}

func (b *Board) SetStateLED(on bool) {
	b.mu.Lock()
	b.state = on
	b.mu.Unlock()
	b.log.WithField("on", on).Debug("state led")
}

func (b *Board) ToggleStateLED() {
	b.mu.Lock()
	b.state = !b.state
	b.mu.Unlock()
}

func (b *Board) ReadButton() (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.ready {
		return 0, board.ErrHardwareUnavailable
	}
	return b.button, nil
}

// Press drives the button level high.
func (b *Board) Press() {
	b.mu.Lock()
	b.button = 1
	b.mu.Unlock()
}

// Release drives the button level low.
func (b *Board) Release() {
	b.mu.Lock()
	b.button = 0
	b.mu.Unlock()
}

// LEDs returns the current boot and state LED levels.
func (b *Board) LEDs() (boot, state bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.boot, b.state
}
