package clicmds

import (
	"context"
	"io/ioutil"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pelletier/go-toml"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"gitlab.com/pagevet/pagevet"
	"gitlab.com/pagevet/verifier"
)

// VerifyFlags for the verify command. Everything has a default; a bare
// `pagevet verify` runs the full walk against localhost.
func VerifyFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "frontend",
			Usage: "frontend origin to verify",
			Value: "http://localhost:3000",
		},
		&cli.StringFlag{
			Name:  "backend",
			Usage: "backend origin for the health probe",
			Value: "http://localhost:8000",
		},
		&cli.StringFlag{
			Name:  "results",
			Usage: "directory for screenshots, audit trail and the session record",
			Value: "pagevet-results",
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: "toml config with suppression allowlist and timing overrides",
			Value: "",
		},
		&cli.IntFlag{
			Name:  "navtimeout",
			Usage: "seconds to wait for a page load",
			Value: 15,
		},
		&cli.IntFlag{
			Name:  "elementwait",
			Usage: "seconds to wait for an element or dialog to appear",
			Value: 5,
		},
		&cli.IntFlag{
			Name:  "settle",
			Usage: "milliseconds to wait after load before the screenshot",
			Value: 1500,
		},
	}
}

// Verify runs one verification session and exits non-zero on a Fail verdict
func Verify(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	vet := verifier.New(cfg)
	runCtx := context.Background()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		log.Info().Msg("interrupt, shutting down")
		if err := vet.Stop(); err != nil {
			log.Error().Err(err).Msg("failed to stop cleanly")
		}
		os.Exit(1)
	}()

	if err := vet.Init(runCtx); err != nil {
		log.Error().Err(err).Msg("failed to init engine")
		return err
	}

	verdict, err := vet.Run(runCtx)
	if err != nil {
		vet.Stop()
		return err
	}

	vet.Summary(os.Stdout)
	if err := vet.Stop(); err != nil {
		log.Warn().Err(err).Msg("shutdown was not clean")
	}

	if !verdict.Exitable() {
		return cli.Exit("verification failed", 1)
	}
	return nil
}

func loadConfig(ctx *cli.Context) (*pagevet.Config, error) {
	cfg := &pagevet.Config{}

	if path := ctx.String("config"); path != "" {
		data, err := ioutil.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := toml.NewDecoder(strings.NewReader(string(data))).Decode(cfg); err != nil {
			return nil, err
		}
	}

	// a flag passed on the command line beats the config file; an untouched
	// flag only fills in what the file left empty
	if ctx.IsSet("frontend") || cfg.FrontendURL == "" {
		cfg.FrontendURL = ctx.String("frontend")
	}
	if ctx.IsSet("backend") || cfg.BackendURL == "" {
		cfg.BackendURL = ctx.String("backend")
	}
	if ctx.IsSet("results") || cfg.ResultsPath == "" {
		cfg.ResultsPath = ctx.String("results")
	}
	if ctx.IsSet("navtimeout") || cfg.NavTimeoutSec == 0 {
		cfg.NavTimeoutSec = ctx.Int("navtimeout")
	}
	if ctx.IsSet("elementwait") || cfg.ElementSec == 0 {
		cfg.ElementSec = ctx.Int("elementwait")
	}
	if ctx.IsSet("settle") || cfg.SettleMs == 0 {
		cfg.SettleMs = ctx.Int("settle")
	}
	cfg.ApplyDefaults()
	return cfg, nil
}
