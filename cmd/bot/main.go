package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"hwbot/internal/app"
	"hwbot/internal/config"
	logx "hwbot/pkg/logx"
)

func main() {
	var (
		settingsPath string
		envPath      string
	)
	flag.StringVar(&settingsPath, "settings", "./settings.yaml", "path to optional settings yaml")
	flag.StringVar(&envPath, "env", ".env", "path to optional .env file")
	flag.Parse()

	// .env is a convenience for local runs; production deployments set real
	// environment variables, so a missing file is not an error.
	_ = godotenv.Load(envPath)

	boot := logx.NewConsole("info")

	secrets, err := config.LoadSecrets()
	if err != nil {
		boot.Error("startup aborted: incomplete configuration", logx.Err(err))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(secrets, settingsPath)
	if err != nil {
		boot.Error("startup aborted", logx.Err(err))
		os.Exit(1)
	}

	if err := a.Start(ctx); err != nil {
		boot.Error("start failed", logx.Err(err))
		os.Exit(1)
	}

	<-ctx.Done()
	_ = a.Stop(context.Background())
}
