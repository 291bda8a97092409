package sipfnode

import (
	"context"
	"time"

	"github.com/sipf/sipfnode/cloud"
)

// authenticate obtains session credentials from the cloud.  The device
// has no productive role without them and the network is already up, so
// failures are retried forever on a fixed back-off, with a console line
// per attempt so a connected operator sees progress.  Returns ok=false
// only if the node is stopped while waiting.
func (n *Node) authenticate() (creds cloud.Credentials, ok bool) {
	for {
		n.Console.Puts("Set AuthMode to `SIM Auth'... \r\n")
		creds, err := n.Cloud.AuthRequest(context.Background())
		if err == nil {
			n.Console.Puts("OK\r\n")
			return creds, true
		}
		n.log.WithError(err).Debug("auth request failed")
		n.Console.Puts("faild(Retry after 10s)\r\n")
		select {
		case <-time.After(n.AuthRetryWait):
		case <-n.done:
			return creds, false
		}
	}
}
