// Package cloud talks to the SIPF managed IoT service: SIM-identity
// authentication and the file endpoint.  Requests ride the cellular
// PDN; auth relies on the carrier network identifying the SIM, so the
// key request itself carries no credentials.
package cloud

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
)

const (
	// MaxUserLen and MaxPasswordLen bound the session credentials.
	MaxUserLen     = 255
	MaxPasswordLen = 255

	defaultAuthHost = "auth.sipf.iot.sakura.ad.jp"
	defaultFileHost = "file.sipf.iot.sakura.ad.jp"
)

var (
	ErrAuthFailed     = errors.New("cloud: auth request failed")
	ErrNoAuth         = errors.New("cloud: auth info not set")
	ErrCredentialSize = errors.New("cloud: credential exceeds size limit")
)

// Credentials is the ephemeral username/password pair issued per
// session by the auth endpoint.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (c Credentials) validate() error {
	if len(c.Username) > MaxUserLen || len(c.Password) > MaxPasswordLen {
		return ErrCredentialSize
	}
	if c.Username == "" || c.Password == "" {
		return fmt.Errorf("%w: empty field", ErrAuthFailed)
	}
	return nil
}

type Client struct {
	authURL string
	fileURL string
	hc      *http.Client
	log     *logrus.Entry

	creds *Credentials
}

type Option func(*Client)

// WithEndpoints overrides the auth and file endpoint base URLs.
func WithEndpoints(authURL, fileURL string) Option {
	return func(c *Client) { c.authURL, c.fileURL = authURL, fileURL }
}

// WithTrustAnchor pins TLS validation to the given PEM-encoded CA.
func WithTrustAnchor(pemCert []byte) Option {
	return func(c *Client) {
		pool := x509.NewCertPool()
		pool.AppendCertsFromPEM(pemCert)
		c.hc.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{RootCAs: pool},
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

func WithLogger(log *logrus.Entry) Option {
	return func(c *Client) { c.log = log }
}

// Endpoints returns the default endpoint base URLs.  The disable-SSL
// build options select plain HTTP per endpoint.
func Endpoints(authDisableSSL, fileDisableSSL bool) (authURL, fileURL string) {
	authURL = "https://" + defaultAuthHost
	if authDisableSSL {
		authURL = "http://" + defaultAuthHost
	}
	fileURL = "https://" + defaultFileHost
	if fileDisableSSL {
		fileURL = "http://" + defaultFileHost
	}
	return
}

func New(opts ...Option) *Client {
	c := &Client{
		hc:  &http.Client{Timeout: 30 * time.Second},
		log: logrus.NewEntry(logrus.StandardLogger()),
	}
	c.authURL, c.fileURL = Endpoints(false, false)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AuthRequest obtains a session credential pair from the auth endpoint.
// The device is identified by its SIM; the request body is empty.  The
// username and password limits are enforced independently.
func (c *Client) AuthRequest(ctx context.Context) (Credentials, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL+"/v0/session_key", nil)
	if err != nil {
		return Credentials{}, fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return Credentials{}, fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Credentials{}, fmt.Errorf("%w: status %d", ErrAuthFailed, resp.StatusCode)
	}
	var creds Credentials
	if err := json.NewDecoder(resp.Body).Decode(&creds); err != nil {
		return Credentials{}, fmt.Errorf("%w: decode: %v", ErrAuthFailed, err)
	}
	if err := creds.validate(); err != nil {
		return Credentials{}, err
	}
	return creds, nil
}

// SetAuth installs the credential pair used by subsequent requests.
func (c *Client) SetAuth(creds Credentials) error {
	if err := creds.validate(); err != nil {
		return err
	}
	c.creds = &creds
	return nil
}

// fileMeta is the file endpoint's download descriptor.
type fileMeta struct {
	URL string `json:"url"`
}

// FileDownload fetches the named file and feeds it to cb in chunks
// sized to buf.  Only the final chunk may be shorter than buf.  Returns
// the total number of bytes received.
func (c *Client) FileDownload(ctx context.Context, name string, params url.Values, buf []byte, cb func([]byte) error) (int, error) {
	if c.creds == nil {
		return 0, ErrNoAuth
	}
	target := c.fileURL + "/v1/files/" + url.PathEscape(name) + "/download/"
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, fmt.Errorf("file %s: %w", name, err)
	}
	req.SetBasicAuth(c.creds.Username, c.creds.Password)
	resp, err := c.hc.Do(req)
	if err != nil {
		return 0, fmt.Errorf("file %s: %w", name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("file %s: status %d", name, resp.StatusCode)
	}
	var meta fileMeta
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return 0, fmt.Errorf("file %s: decode meta: %w", name, err)
	}
	c.log.WithField("file", name).Debug("fetching file object")
	return c.fetch(ctx, meta.URL, buf, cb)
}

// fetch streams the object behind a presigned URL into buf-sized chunks.
func (c *Client) fetch(ctx context.Context, target string, buf []byte, cb func([]byte) error) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("fetch: status %d", resp.StatusCode)
	}

	total := 0
	for {
		n, err := io.ReadFull(resp.Body, buf)
		if n > 0 {
			if cberr := cb(buf[:n]); cberr != nil {
				return total, cberr
			}
			total += n
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}
