package sipfnode

import (
	"fmt"

	"github.com/joeshaw/envdecode"
	"github.com/sirupsen/logrus"
)

// Config is the build/deployment configuration of the node, decoded
// from the environment.
type Config struct {
	// Console UART exposed to the local host.  Empty means stdout.
	ConsoleDevice string `env:"SIPF_UART_DEV" description:"serial console device, empty for stdout"`
	ConsoleBaud   int    `env:"SIPF_UART_BAUD,default=115200"`

	// Modem AT interface.
	ModemDevice string `env:"SIPF_MODEM_DEV,default=/dev/ttyACM1"`
	ModemBaud   int    `env:"SIPF_MODEM_BAUD,default=115200"`

	APN string `env:"SIPF_APN,default=sakura"`

	// LockPLMN is echoed on the boot banner when set.  The pin itself
	// is a modem build option.
	LockPLMN string `env:"LTE_LOCK_PLMN_STRING"`

	AuthDisableSSL      bool `env:"SIPF_AUTH_DISABLE_SSL,default=false"`
	ConnectorDisableSSL bool `env:"SIPF_CONNECTOR_DISABLE_SSL,default=false"`

	LogLevel string `env:"SIPF_LOG_LEVEL,default=info"`

	// TraceAT logs the raw modem AT dialogue.
	TraceAT bool `env:"SIPF_TRACE_AT,default=false"`

	// MirrorAddr serves the console websocket mirror when set,
	// e.g. ":8080".
	MirrorAddr string `env:"SIPF_CONSOLE_MIRROR"`
}

// LoadConfig decodes the configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// LogrusLevel maps the configured level onto logrus, defaulting to info
// on junk input.
func (c Config) LogrusLevel() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}
