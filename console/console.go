// Package console is the line-oriented status stream the board exposes
// to a connected host.  All bring-up and operational status strings go
// through a Broker; diagnostic logs do not.
package console

import (
	"fmt"
	"io"
	"sync"

	"github.com/tarm/serial"
)

// Broker serializes writes to the console device so that lines from the
// main task and the LTE event context do not interleave mid-line.
type Broker struct {
	mu   sync.Mutex
	out  io.Writer
	taps map[chan string]bool
}

// New returns a Broker writing to out.  out is typically the UART port,
// stdout, or a test buffer.
func New(out io.Writer) *Broker {
	return &Broker{
		out:  out,
		taps: make(map[chan string]bool),
	}
}

// Open opens the serial console device and returns a Broker over it.
func Open(dev string, baud int) (*Broker, io.Closer, error) {
	port, err := serial.OpenPort(&serial.Config{Name: dev, Baud: baud})
	if err != nil {
		return nil, nil, fmt.Errorf("open console %s: %w", dev, err)
	}
	return New(port), port, nil
}

// Print formats and writes one chunk to the console.
func (b *Broker) Print(format string, a ...any) {
	b.Puts(fmt.Sprintf(format, a...))
}

// Puts writes s to the console verbatim.
func (b *Broker) Puts(s string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	io.WriteString(b.out, s)
	for tap := range b.taps {
		select {
		case tap <- s:
		default: // slow tap, drop
		}
	}
}

func (b *Broker) attach() chan string {
	tap := make(chan string, 64)
	b.mu.Lock()
	b.taps[tap] = true
	b.mu.Unlock()
	return tap
}

func (b *Broker) detach(tap chan string) {
	b.mu.Lock()
	delete(b.taps, tap)
	b.mu.Unlock()
}
