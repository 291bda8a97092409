// Package sipfnode is the device logic of the SIPF sample node: it
// brings an LTE-M modem online, authenticates to the SIPF cloud with
// the SIM identity, and then bridges a serial console while serving
// button-triggered file downloads.
package sipfnode

import (
	"context"
	"errors"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sipf/sipfnode/board"
	"github.com/sipf/sipfnode/cloud"
	"github.com/sipf/sipfnode/console"
	"github.com/sipf/sipfnode/modem"
)

const (
	// TLSSecTag is the key store slot holding the SIPF CA chain.
	TLSSecTag = 42

	// RegisterTry bounds LTE attach attempts per boot.
	RegisterTry = 3
	// RegisterTimeout bounds one attach attempt, connect request to
	// registered event.
	RegisterTimeout = 120 * time.Second

	// AuthRetryWait is the back-off between SIM auth attempts.
	AuthRetryWait = 10 * time.Second

	// LEDHeartbeat is the state LED toggle period when idle.
	LEDHeartbeat = 500 * time.Millisecond
	// PacerInterval paces the operational loop and debounces the button.
	PacerInterval = 10 * time.Millisecond
	// BlinkPeriod is the boot LED toggle period in the terminal error
	// state, 10 Hz.
	BlinkPeriod = 100 * time.Millisecond

	workBufSize = 1024

	sampleFileName = "sipf_file_sample.txt"
)

// ErrAttachExhausted reports that all attach attempts timed out.
var ErrAttachExhausted = errors.New("attach to LTE network exhausted")

// Cloud is what the node needs from the SIPF client.
type Cloud interface {
	AuthRequest(ctx context.Context) (cloud.Credentials, error)
	SetAuth(creds cloud.Credentials) error
	FileDownload(ctx context.Context, name string, params url.Values, buf []byte, cb func([]byte) error) (int, error)
}

// Node is the device: its peripherals, modem, cloud client, and the
// session state established during bring-up.  Create with New, then
// call Run, which never returns.
type Node struct {
	Modem   modem.Modem
	Cloud   Cloud
	Board   board.Board
	Console *console.Broker
	Config  Config

	// Timings default to the package constants; scenario tests
	// compress them.
	RegisterTry     int
	RegisterTimeout time.Duration
	AuthRetryWait   time.Duration
	Heartbeat       time.Duration
	Pacer           time.Duration
	Blink           time.Duration

	log          *logrus.Entry
	lteConnected chan struct{}
	state        atomic.Int32
	cid          uint8
	creds        cloud.Credentials
	workBuf      [workBufSize]byte

	// done stops Run; closed only by in-package tests.  The device
	// itself has no shutdown path.
	done chan struct{}
}

func New(cfg Config, m modem.Modem, c Cloud, b board.Board, cons *console.Broker, log *logrus.Entry) *Node {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Node{
		Modem:           m,
		Cloud:           c,
		Board:           b,
		Console:         cons,
		Config:          cfg,
		RegisterTry:     RegisterTry,
		RegisterTimeout: RegisterTimeout,
		AuthRetryWait:   AuthRetryWait,
		Heartbeat:       LEDHeartbeat,
		Pacer:           PacerInterval,
		Blink:           BlinkPeriod,
		log:             log,
		lteConnected:    make(chan struct{}, 1),
		done:            make(chan struct{}),
	}
}

// State returns the bring-up state, safe from any goroutine.
func (n *Node) State() BringUpState {
	return BringUpState(n.state.Load())
}

func (n *Node) setState(s BringUpState) {
	n.state.Store(int32(s))
	n.log.WithField("state", s.String()).Debug("bring-up state")
}

// Run boots the node and enters the operational loop.  Any fatal error
// traps into the terminal blink loop; Run never returns in production.
func (n *Node) Run() {
	n.Console.Puts("*** SIPF SDK Sample for Go\r\n")
	if n.Config.LockPLMN != "" {
		n.Console.Print("* PLMN: %s\r\n", n.Config.LockPLMN)
	}
	if n.Config.AuthDisableSSL {
		n.Console.Puts("* Disable SSL, AUTH endpoint.\r\n")
	}
	if n.Config.ConnectorDisableSSL {
		n.Console.Puts("* Disable SSL, CONNECTOR endpoint.\r\n")
	}

	if err := n.Board.Init(); err != nil {
		n.log.WithError(err).Error("peripheral init failed")
		n.fatal()
		return
	}
	n.Board.SetBootLED(true)

	if err := n.bringUp(); err != nil {
		n.log.WithError(err).Error("network bring-up failed")
		n.fatal()
		return
	}

	creds, ok := n.authenticate()
	if !ok {
		return // stopped while waiting for credentials
	}
	if err := n.Cloud.SetAuth(creds); err != nil {
		n.log.WithError(err).Error("failed to set auth info")
		n.fatal()
		return
	}
	n.creds = creds

	n.Console.Puts("+++ Ready +++\r\n")
	n.Board.SetStateLED(true)
	n.loop()
}

// fatal is the terminal error state: the boot LED blinks at 10 Hz
// forever and no further work is attempted.
func (n *Node) fatal() {
	ticker := time.NewTicker(n.Blink)
	defer ticker.Stop()
	on := false
	for {
		select {
		case <-ticker.C:
			on = !on
			n.Board.SetBootLED(on)
		case <-n.done:
			return
		}
	}
}
