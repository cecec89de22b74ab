// Package app wires the bot together: configuration, logging, storage, the
// Telegram sink, the poll loop and the background services around it.
package app

import (
	"context"
	"fmt"

	"hwbot/internal/config"
	"hwbot/internal/digest"
	"hwbot/internal/eventbus"
	"hwbot/internal/grader"
	"hwbot/internal/notify"
	"hwbot/internal/poller"
	"hwbot/internal/runtime/supervisor"
	"hwbot/internal/storage"
	"hwbot/internal/transport"
	"hwbot/internal/transport/telegram"
	logx "hwbot/pkg/logx"
)

type App struct {
	secrets  config.Secrets
	watcher  *config.Watcher
	logSvc   *logx.Service
	log      logx.Logger
	bus      eventbus.Bus
	sink     *telegram.Sink
	notifier *notify.Service
	store    storage.Store
	poller   *poller.Poller
	digest   *digest.Service

	sup *supervisor.Supervisor
}

// New builds the full application. Construction failures (bad settings file,
// unreachable Telegram API, broken storage) are fatal by design: the caller
// logs and exits nonzero.
func New(secrets config.Secrets, settingsPath string) (*App, error) {
	watcher := config.NewWatcher(settingsPath, logx.NewConsole("info"))
	settings, err := watcher.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	logSvc, log := logx.New(logCfg(settings))

	sink, err := telegram.New(telegram.Config{Token: secrets.BotToken}, log.With(logx.String("comp", "telegram")))
	if err != nil {
		_ = logSvc.Close()
		return nil, fmt.Errorf("telegram sink: %w", err)
	}

	store, err := storage.Open(storageCfg(settings), log.With(logx.String("comp", "storage")))
	if err != nil {
		_ = logSvc.Close()
		return nil, fmt.Errorf("open storage: %w", err)
	}

	bus := eventbus.New()

	sendTimeout, _ := config.ParseDurationField("notifier.send_timeout", settings.Notifier.SendTimeout)
	notifier := notify.New(notify.Config{
		Target:      transport.ChatTarget{ChatID: secrets.ChatID},
		RatePerSec:  settings.Notifier.RatePerSec,
		SendTimeout: sendTimeout,
	}, sink, log.With(logx.String("comp", "notify")), bus)

	requestTimeout, err := settings.RequestTimeoutDuration()
	if err != nil {
		return nil, err
	}
	client := grader.NewClient(grader.ClientConfig{
		Endpoint: settings.Endpoint,
		Token:    secrets.APIToken,
		Timeout:  requestTimeout,
		Logger:   log.With(logx.String("comp", "grader")),
	})

	interval, err := settings.PollIntervalDuration()
	if err != nil {
		return nil, err
	}
	loop := poller.New(poller.Config{Interval: interval}, client, notifier, bus, log.With(logx.String("comp", "poller")))

	a := &App{
		secrets:  secrets,
		watcher:  watcher,
		logSvc:   logSvc,
		log:      log,
		bus:      bus,
		sink:     sink,
		notifier: notifier,
		store:    store,
		poller:   loop,
	}

	if settings.Digest.Enabled {
		if store == nil {
			log.Warn("digest enabled but storage is disabled; digest will not run")
		} else {
			a.digest = digest.New(digest.Config{Schedule: settings.Digest.Schedule}, store, notifier, log.With(logx.String("comp", "digest")))
		}
	}

	return a, nil
}

func (a *App) Start(ctx context.Context) error {
	a.sup = supervisor.New(ctx, supervisor.WithLogger(a.log))

	a.sup.Go("poller", func(c context.Context) error {
		a.poller.Run(c)
		return nil
	})

	a.sup.Go("settings.watch", a.watcher.Watch)
	a.sup.Go("settings.apply", a.applySettingsLoop)

	if a.store != nil {
		a.sup.Go("recorder", a.recordLoop)
	}

	if a.digest != nil {
		if err := a.digest.Start(); err != nil {
			return err
		}
	}

	notifyReady(a.log)
	a.sup.Go("systemd.watchdog", watchdogLoop)

	a.log.Info("started")
	return nil
}

func (a *App) Stop(ctx context.Context) error {
	notifyStopping(a.log)

	if a.digest != nil {
		a.digest.Stop()
	}
	if a.sup != nil {
		a.sup.Cancel()
		_ = a.sup.Wait(ctx)
	}
	if a.store != nil {
		_ = a.store.Close()
	}
	_ = a.sink.Close(ctx)

	a.log.Info("stopped")
	return a.logSvc.Close()
}

// applySettingsLoop reacts to hot-reloaded settings. Only the knobs that are
// safe to change mid-flight are applied: log level/sinks and poll interval.
func (a *App) applySettingsLoop(ctx context.Context) error {
	ch := a.watcher.Subscribe(1)
	for {
		select {
		case <-ctx.Done():
			return nil
		case s, ok := <-ch:
			if !ok || s == nil {
				return nil
			}
			a.logSvc.Apply(logCfg(s))
			if d, err := s.PollIntervalDuration(); err == nil {
				a.poller.SetInterval(d)
			}
			a.log.Info("settings applied")
		}
	}
}

func logCfg(s *config.Settings) logx.Config {
	return logx.Config{
		Level:   s.Logging.Level,
		Console: s.Logging.ConsoleEnabled(),
		File: logx.FileConfig{
			Enabled: s.Logging.File.Enabled,
			Path:    s.Logging.File.Path,
		},
	}
}

func storageCfg(s *config.Settings) storage.Config {
	busy, _ := config.ParseDurationField("storage.busy_timeout", s.Storage.BusyTimeout)
	return storage.Config{
		Driver:      s.Storage.Driver,
		Path:        s.Storage.Path,
		BusyTimeout: busy,
	}
}
