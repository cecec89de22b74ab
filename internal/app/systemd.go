package app

import (
	"context"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	logx "hwbot/pkg/logx"
)

// notifyReady tells systemd the unit is up (Type=notify). Outside systemd
// SdNotify is a no-op and reports sent=false.
func notifyReady(log logx.Logger) {
	sent, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	if err != nil {
		log.Warn("sd_notify failed", logx.Err(err))
		return
	}
	if sent {
		log.Debug("sd_notify: ready")
	}
}

func notifyStopping(log logx.Logger) {
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
	_ = log
}

// watchdogLoop feeds the systemd watchdog at half the configured interval.
// It exits immediately when no watchdog is configured.
func watchdogLoop(ctx context.Context) error {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil || interval == 0 {
		return nil
	}

	t := time.NewTicker(interval / 2)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			_, _ = daemon.SdNotify(false, daemon.SdNotifyWatchdog)
		}
	}
}
