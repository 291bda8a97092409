package modem

import "errors"

var (
	ErrInitFailed     = errors.New("modem: init failed")
	ErrKeyQueryFailed = errors.New("modem: key store query failed")
	ErrKeyWriteFailed = errors.New("modem: key store write failed")
	ErrPDNCreate      = errors.New("modem: pdn context create failed")
	ErrPDNConfigure   = errors.New("modem: pdn context configure failed")
	ErrLTEInit        = errors.New("modem: lte init failed")
	ErrConnectRequest = errors.New("modem: connect request failed")
)

// Mode selects the functional mode the modem library is initialized in.
type Mode int

const (
	ModeNormal Mode = iota
	ModeOffline
)

// KeyKind identifies a credential type in the modem's persistent key store.
type KeyKind int

const (
	KeyCAChain KeyKind = iota
	KeyClientCert
	KeyClientKey
	KeyPSK
)

// AddrFamily selects the address family of a PDN context.
type AddrFamily int

const (
	FamilyIPv4 AddrFamily = iota
	FamilyIPv6
	FamilyIPv4v6
)

// PDNAuth selects the PDN authentication method.  The SIPF APN uses none.
type PDNAuth int

const (
	PDNAuthNone PDNAuth = iota
	PDNAuthPAP
	PDNAuthCHAP
)

// EventHandler receives asynchronous LTE events.  Handlers run on the
// driver's context, not the caller's.
type EventHandler func(Event)

// Modem is the control surface of the cellular modem: key store, packet
// data contexts and LTE link control.  Implementations are not expected
// to be safe for concurrent callers; the node drives it from one task.
type Modem interface {
	// Init brings the modem library up in the given mode.
	Init(mode Mode) error

	// KeyExists reports whether a credential of kind is stored under tag.
	KeyExists(tag int, kind KeyKind) (bool, error)
	// KeyDelete removes the credential of kind stored under tag.
	KeyDelete(tag int, kind KeyKind) error
	// KeyWrite stores data as the credential of kind under tag.
	KeyWrite(tag int, kind KeyKind, data []byte) error

	// PDNCreate allocates a packet data network context and returns its CID.
	PDNCreate() (uint8, error)
	// PDNConfigure binds the context to an APN, family and auth method.
	PDNConfigure(cid uint8, apn string, family AddrFamily, auth PDNAuth) error

	// LTEInit initializes the link controller.  Required again after
	// LTEDeinit before any further link operation.
	LTEInit() error
	// LTEDeinit tears the link controller down, resetting its state.
	LTEDeinit() error
	// LTEOffline takes the link offline without deinitializing.
	LTEOffline() error
	// EnableModemEvents subscribes to generic modem events.  Call after
	// LTEInit; some modems reset the subscription on init.
	EnableModemEvents() error
	// ConnectAsync starts network selection and registration.  Events,
	// including registration status changes, are delivered to handler.
	ConnectAsync(handler EventHandler) error
	// PSMRequest asks the network for power saving mode.
	PSMRequest(enable bool) error
}
