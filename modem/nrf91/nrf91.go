// Package nrf91 drives an nRF91-class LTE-M modem over its AT command
// interface.  It implements modem.Modem using the proprietary %CMNG and
// %XNEWCID commands for the key store and PDN contexts, and the standard
// +CFUN/+CEREG/+CPSMS set for link control.
package nrf91

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/warthog618/modem/at"
	"github.com/warthog618/modem/serial"
	"github.com/warthog618/modem/trace"

	"github.com/sipf/sipfnode/modem"
)

const defaultBaud = 115200

var _ modem.Modem = (*Modem)(nil)

type Modem struct {
	dev        string
	baud       int
	cmdTimeout time.Duration
	traceAT    bool
	log        *logrus.Entry

	open    func() (io.ReadWriteCloser, error)
	port    io.ReadWriteCloser
	a       *at.AT
	handler modem.EventHandler
}

type Option func(*Modem)

// WithBaud overrides the default baud rate of 115200.
func WithBaud(baud int) Option {
	return func(m *Modem) { m.baud = baud }
}

// WithCommandTimeout sets the per-command response timeout.
func WithCommandTimeout(d time.Duration) Option {
	return func(m *Modem) { m.cmdTimeout = d }
}

// WithTrace logs the raw AT dialogue.
func WithTrace() Option {
	return func(m *Modem) { m.traceAT = true }
}

func WithLogger(log *logrus.Entry) Option {
	return func(m *Modem) { m.log = log }
}

func New(dev string, opts ...Option) *Modem {
	m := &Modem{
		dev:        dev,
		baud:       defaultBaud,
		cmdTimeout: 5 * time.Second,
		log:        logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.open = func() (io.ReadWriteCloser, error) {
		return serial.New(serial.WithPort(m.dev), serial.WithBaud(m.baud))
	}
	return m
}

func (m *Modem) Init(mode modem.Mode) error {
	port, err := m.open()
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", modem.ErrInitFailed, m.dev, err)
	}
	var mio io.ReadWriter = port
	if m.traceAT {
		mio = trace.New(port)
	}
	a := at.New(mio, at.WithTimeout(m.cmdTimeout))
	if err := a.Init(); err != nil {
		port.Close()
		return fmt.Errorf("%w: %v", modem.ErrInitFailed, err)
	}
	if mode == modem.ModeOffline {
		if _, err := a.Command("+CFUN=4"); err != nil {
			port.Close()
			return fmt.Errorf("%w: set offline: %v", modem.ErrInitFailed, err)
		}
	}
	m.port = port
	m.a = a
	m.log.WithField("dev", m.dev).Debug("modem initialized")
	return nil
}

// Close releases the serial port.  The modem is left in whatever
// functional mode it was in.
func (m *Modem) Close() error {
	if m.port == nil {
		return nil
	}
	err := m.port.Close()
	m.port = nil
	m.a = nil
	return err
}

// kind maps credential kinds to %CMNG types.
func kind(k modem.KeyKind) int {
	switch k {
	case modem.KeyCAChain:
		return 0
	case modem.KeyClientCert:
		return 1
	case modem.KeyClientKey:
		return 2
	case modem.KeyPSK:
		return 3
	}
	return 0
}

func (m *Modem) KeyExists(tag int, k modem.KeyKind) (bool, error) {
	info, err := m.a.Command(fmt.Sprintf("%%CMNG=1,%d,%d", tag, kind(k)))
	if err != nil {
		return false, fmt.Errorf("%w: %v", modem.ErrKeyQueryFailed, err)
	}
	prefix := fmt.Sprintf("%%CMNG: %d,%d", tag, kind(k))
	for _, l := range info {
		if strings.HasPrefix(strings.TrimSpace(l), prefix) {
			return true, nil
		}
	}
	return false, nil
}

func (m *Modem) KeyDelete(tag int, k modem.KeyKind) error {
	if _, err := m.a.Command(fmt.Sprintf("%%CMNG=3,%d,%d", tag, kind(k))); err != nil {
		return fmt.Errorf("delete credential %d/%d: %w", tag, kind(k), err)
	}
	return nil
}

func (m *Modem) KeyWrite(tag int, k modem.KeyKind, data []byte) error {
	if _, err := m.a.Command(cmngWrite(tag, kind(k), data)); err != nil {
		return fmt.Errorf("%w: tag %d: %v", modem.ErrKeyWriteFailed, tag, err)
	}
	return nil
}

// cmngWrite builds a %CMNG credential write.  The payload goes inside
// the quotes verbatim: %CMNG takes PEM content with literal line
// breaks, so escaping them would store a corrupted credential.
func cmngWrite(tag, typ int, data []byte) string {
	return fmt.Sprintf("%%CMNG=0,%d,%d,\"%s\"", tag, typ, data)
}

func (m *Modem) PDNCreate() (uint8, error) {
	info, err := m.a.Command("%XNEWCID?")
	if err != nil {
		return 0, fmt.Errorf("%w: %v", modem.ErrPDNCreate, err)
	}
	for _, l := range info {
		l = strings.TrimSpace(l)
		if rest, ok := strings.CutPrefix(l, "%XNEWCID:"); ok {
			cid, err := strconv.Atoi(strings.TrimSpace(rest))
			if err != nil || cid < 0 || cid > 255 {
				return 0, fmt.Errorf("%w: bad cid %q", modem.ErrPDNCreate, rest)
			}
			return uint8(cid), nil
		}
	}
	return 0, fmt.Errorf("%w: no cid in response", modem.ErrPDNCreate)
}

func family(f modem.AddrFamily) string {
	switch f {
	case modem.FamilyIPv6:
		return "IPV6"
	case modem.FamilyIPv4v6:
		return "IPV4V6"
	}
	return "IP"
}

func (m *Modem) PDNConfigure(cid uint8, apn string, f modem.AddrFamily, auth modem.PDNAuth) error {
	cmd := fmt.Sprintf("+CGDCONT=%d,%q,%q", cid, family(f), apn)
	if _, err := m.a.Command(cmd); err != nil {
		return fmt.Errorf("%w: %v", modem.ErrPDNConfigure, err)
	}
	if _, err := m.a.Command(fmt.Sprintf("+CGAUTH=%d,%d", cid, int(auth))); err != nil {
		return fmt.Errorf("%w: auth: %v", modem.ErrPDNConfigure, err)
	}
	m.log.WithFields(logrus.Fields{"cid": cid, "apn": apn}).Debug("pdn configured")
	return nil
}

func (m *Modem) LTEInit() error {
	// LTE-M only, no NB-IoT or GNSS.
	if _, err := m.a.Command("%XSYSTEMMODE=1,0,0,0"); err != nil {
		return fmt.Errorf("%w: system mode: %v", modem.ErrLTEInit, err)
	}
	// Unsolicited registration reports with cell identity.
	if _, err := m.a.Command("+CEREG=5"); err != nil {
		return fmt.Errorf("%w: cereg: %v", modem.ErrLTEInit, err)
	}
	return nil
}

func (m *Modem) LTEDeinit() error {
	m.a.CancelIndication("+CEREG:")
	m.a.CancelIndication("%MDMEV:")
	if _, err := m.a.Command("+CFUN=0"); err != nil {
		return fmt.Errorf("lte deinit: %w", err)
	}
	return nil
}

func (m *Modem) LTEOffline() error {
	if _, err := m.a.Command("+CFUN=4"); err != nil {
		return fmt.Errorf("lte offline: %w", err)
	}
	return nil
}

func (m *Modem) EnableModemEvents() error {
	if _, err := m.a.Command("%MDMEV=1"); err != nil {
		return fmt.Errorf("enable modem events: %w", err)
	}
	return m.a.AddIndication("%MDMEV:", m.onModemEvent)
}

func (m *Modem) ConnectAsync(handler modem.EventHandler) error {
	m.handler = handler
	m.a.CancelIndication("+CEREG:")
	if err := m.a.AddIndication("+CEREG:", m.onCereg); err != nil {
		return fmt.Errorf("%w: %v", modem.ErrConnectRequest, err)
	}
	if _, err := m.a.Command("+CFUN=1"); err != nil {
		return fmt.Errorf("%w: %v", modem.ErrConnectRequest, err)
	}
	return nil
}

func (m *Modem) PSMRequest(enable bool) error {
	cmd := "+CPSMS=0"
	if enable {
		cmd = "+CPSMS=1"
	}
	if _, err := m.a.Command(cmd); err != nil {
		return fmt.Errorf("psm request: %w", err)
	}
	return nil
}

// onCereg parses a +CEREG unsolicited report:
//
//	+CEREG: <stat>[,<tac>,<ci>[,<AcT>]]
//
// and fans it out as registration, cell and mode events.
func (m *Modem) onCereg(info []string) {
	if len(info) == 0 || m.handler == nil {
		return
	}
	rest, ok := strings.CutPrefix(strings.TrimSpace(info[0]), "+CEREG:")
	if !ok {
		return
	}
	fields := strings.Split(rest, ",")
	stat, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		m.log.WithField("urc", info[0]).Warn("unparseable +CEREG report")
		return
	}
	m.handler(modem.Event{Type: modem.EventRegStatus, RegStatus: regStatus(stat)})

	if len(fields) >= 3 {
		tac, _ := strconv.ParseInt(unquote(fields[1]), 16, 32)
		ci, _ := strconv.ParseInt(unquote(fields[2]), 16, 64)
		m.handler(modem.Event{
			Type: modem.EventCellUpdate,
			Cell: modem.Cell{TAC: int(tac), ID: int(ci)},
		})
	}
	if len(fields) >= 4 {
		if act, err := strconv.Atoi(strings.TrimSpace(fields[3])); err == nil {
			m.handler(modem.Event{Type: modem.EventModeUpdate, LTEMode: accessTech(act)})
		}
	}
}

func (m *Modem) onModemEvent(info []string) {
	if len(info) == 0 || m.handler == nil {
		return
	}
	rest, _ := strings.CutPrefix(strings.TrimSpace(info[0]), "%MDMEV:")
	evt, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil {
		m.log.WithField("urc", info[0]).Debug("non-numeric modem event")
		return
	}
	m.handler(modem.Event{Type: modem.EventModem, ModemEvt: evt})
}

func regStatus(stat int) modem.RegStatus {
	switch stat {
	case 0:
		return modem.RegNotRegistered
	case 1:
		return modem.RegHome
	case 2:
		return modem.RegSearching
	case 3:
		return modem.RegDenied
	case 5:
		return modem.RegRoaming
	}
	return modem.RegUnknown
}

func accessTech(act int) string {
	switch act {
	case 7:
		return "LTE-M"
	case 9:
		return "NB-IoT"
	}
	return "AcT-" + strconv.Itoa(act)
}

func unquote(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"`)
}
