package sipfnode

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sipf/sipfnode/modem"
)

// bringUp walks the modem from cold boot to Attached: init, certificate
// provisioning, PDN configuration, then up to RegisterTry attach
// attempts of RegisterTimeout each.  A timed-out attempt takes the link
// offline and deinitializes it before retrying.
func (n *Node) bringUp() error {
	n.setState(StateModemOff)
	if err := n.Modem.Init(modem.ModeNormal); err != nil {
		return fmt.Errorf("initialize modem library: %w", err)
	}
	n.setState(StateModemReady)

	// Provision the certificate before connecting to the LTE network.
	if err := n.provisionCert(); err != nil {
		return err
	}
	n.setState(StateModemTrusted)

	cid, err := n.Modem.PDNCreate()
	if err != nil {
		return fmt.Errorf("create pdn context: %w", err)
	}
	if err := n.Modem.PDNConfigure(cid, n.Config.APN, modem.FamilyIPv4, modem.PDNAuthNone); err != nil {
		return fmt.Errorf("configure pdn context %d: %w", cid, err)
	}
	n.cid = cid
	n.log.WithFields(logrus.Fields{"cid": cid, "apn": n.Config.APN}).Debug("setting APN OK")
	n.setState(StatePDNReady)

	for i := 0; i < n.RegisterTry; i++ {
		if err := n.Modem.LTEInit(); err != nil {
			return fmt.Errorf("initialize LTE: %w", err)
		}
		// After LTEInit, before ConnectAsync: some modems reset the
		// subscription on init.
		if err := n.Modem.EnableModemEvents(); err != nil {
			n.log.WithError(err).Warn("modem events unavailable")
		}

		n.setState(StateAttaching)
		n.log.WithField("attempt", i).Infof("Trying to attach to LTE network (TIMEOUT: %d ms)", n.RegisterTimeout.Milliseconds())
		n.Console.Print("Trying to attach to LTE network (TIMEOUT: %d ms)\r\n", n.RegisterTimeout.Milliseconds())
		if err := n.Modem.ConnectAsync(n.lteEvent); err != nil {
			return fmt.Errorf("attach to the LTE network: %w", err)
		}

		select {
		case <-n.lteConnected:
			n.setState(StatePSMRequest)
			if err := n.Modem.PSMRequest(true); err != nil {
				n.log.WithError(err).Error("PSM request failed")
			} else {
				n.log.Debug("PSM is enabled")
			}
			n.setState(StateAttached)
			return nil
		case <-time.After(n.RegisterTimeout):
			n.Console.Puts("TIMEOUT\r\n")
			n.Modem.LTEOffline()
			n.Modem.LTEDeinit()
		case <-n.done:
			return fmt.Errorf("stopped while attaching")
		}
	}

	n.setState(StateAttachFailed)
	return ErrAttachExhausted
}

// lteEvent is the modem's event sink.  It runs on the driver's context;
// the only control effect is the single permit released on a registered
// event.  Everything else is surfaced for a connected operator.
func (n *Node) lteEvent(evt modem.Event) {
	switch evt.Type {
	case modem.EventRegStatus:
		n.log.WithField("status", evt.RegStatus.String()).Debug("registration status")
		if evt.RegStatus == modem.RegSearching {
			n.Console.Puts("SEARCHING\r\n")
			return
		}
		if evt.RegStatus.Registered() {
			n.Console.Puts("REGISTERD\r\n")
			select {
			case n.lteConnected <- struct{}{}:
			default: // permit already pending
			}
		}
	case modem.EventCellUpdate:
		n.log.WithFields(logrus.Fields{"id": evt.Cell.ID, "tac": evt.Cell.TAC}).Debug("cell update")
	case modem.EventModeUpdate:
		n.log.WithField("mode", evt.LTEMode).Debug("lte mode update")
	case modem.EventModem:
		n.log.WithField("event", evt.ModemEvt).Debug("modem event")
	}
}
