package sipfnode

import (
	"bytes"
	"fmt"

	"github.com/sipf/sipfnode/modem"
)

// provisionCert installs the embedded CA chain into the modem key store
// under TLSSecTag.  At most one chain lives under the tag: any prior
// entry is deleted before the write.  Runs once per boot, before any
// TLS-using socket exists.
func (n *Node) provisionCert() error {
	exists, err := n.Modem.KeyExists(TLSSecTag, modem.KeyCAChain)
	if err != nil {
		return fmt.Errorf("check for certificates: %w", err)
	}

	if exists {
		// Delete whatever is provisioned under our tag and start
		// fresh.  A failed delete is not fatal: the write below
		// either overwrites or fails cleanly.
		if err := n.Modem.KeyDelete(TLSSecTag, modem.KeyCAChain); err != nil {
			n.log.WithError(err).Error("failed to delete existing certificate")
		}
	}

	n.log.Debug("provisioning certificate")

	blob := bytes.TrimRight(trustAnchor, "\x00")
	if err := n.Modem.KeyWrite(TLSSecTag, modem.KeyCAChain, blob); err != nil {
		return fmt.Errorf("provision certificate: %w", err)
	}
	return nil
}
