package sipfnode

import (
	_ "embed"
)

// trustAnchor is the CA chain validating the SIPF endpoints.  It is
// compiled into the image; nothing reads it from the filesystem at
// runtime.
//
//go:embed cert/sipf.iot.sakura.ad.jp.pem
var trustAnchor []byte

// The modem key store rejects oversized credentials late and
// unhelpfully, so refuse to boot with a blob that cannot fit.
const maxTrustAnchorSize = 4 * 1024

func init() {
	if len(trustAnchor) >= maxTrustAnchorSize {
		panic("trust anchor certificate too large")
	}
}

// TrustAnchor returns the embedded CA chain, for handing to the cloud
// client's TLS configuration on host builds.
func TrustAnchor() []byte {
	return trustAnchor
}
