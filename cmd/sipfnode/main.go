package main

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/sipf/sipfnode"
	"github.com/sipf/sipfnode/board/host"
	"github.com/sipf/sipfnode/cloud"
	"github.com/sipf/sipfnode/console"
	"github.com/sipf/sipfnode/modem/nrf91"
)

func main() {
	cfg, err := sipfnode.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("bad configuration")
	}

	formatter := new(logrus.TextFormatter)
	formatter.TimestampFormat = "2006-01-02 15:04:05"
	formatter.FullTimestamp = true
	logrus.SetFormatter(formatter)
	logrus.SetLevel(cfg.LogrusLevel())
	log := logrus.WithField("app", "sipfnode")

	// Console first, so later stages can report progress.
	var cons *console.Broker
	if cfg.ConsoleDevice == "" {
		cons = console.New(os.Stdout)
	} else {
		var port io.Closer
		cons, port, err = console.Open(cfg.ConsoleDevice, cfg.ConsoleBaud)
		if err != nil {
			log.WithError(err).Fatal("console unavailable")
		}
		defer port.Close()
	}
	if cfg.MirrorAddr != "" {
		mirror := console.NewMirror(cons)
		go func() {
			if err := mirror.ListenAndServe(cfg.MirrorAddr); err != nil {
				log.WithError(err).Error("console mirror stopped")
			}
		}()
	}

	mopts := []nrf91.Option{
		nrf91.WithBaud(cfg.ModemBaud),
		nrf91.WithLogger(log),
	}
	if cfg.TraceAT {
		mopts = append(mopts, nrf91.WithTrace())
	}
	mdm := nrf91.New(cfg.ModemDevice, mopts...)

	authURL, fileURL := cloud.Endpoints(cfg.AuthDisableSSL, cfg.ConnectorDisableSSL)
	sipf := cloud.New(
		cloud.WithEndpoints(authURL, fileURL),
		cloud.WithTrustAnchor(sipfnode.TrustAnchor()),
		cloud.WithLogger(log),
	)

	node := sipfnode.New(cfg, mdm, sipf, host.New(log), cons, log)
	node.Run()
}
