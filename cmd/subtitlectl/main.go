package main

import (
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"

	"subtitle-merger/internal/config"
	"subtitle-merger/internal/logger"
	"subtitle-merger/internal/settings"
)

// CLI defines the subtitlectl command structure.
type CLI struct {
	EnvFile string `name:"env-file" type:"existingfile" help:"Load environment variables from this file instead of ./.env"`

	Submit   SubmitCmd   `cmd:"" help:"Submit one batch to the processing backend"`
	Settings SettingsCmd `cmd:"" help:"Inspect or edit saved settings"`
	Doctor   DoctorCmd   `cmd:"" help:"Check the data directory, saved settings and backend"`
}

// env carries what every command needs once configuration is loaded.
type env struct {
	cfg   *config.Config
	log   *logrus.Logger
	store *settings.Store
	out   io.Writer
}

func newEnv(envFile string, out io.Writer) (*env, error) {
	var files []string
	if envFile != "" {
		files = append(files, envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return nil, err
	}

	return &env{
		cfg:   cfg,
		log:   logger.New(cfg),
		store: settings.NewFileStore(cfg.DataDir),
		out:   out,
	}, nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("subtitlectl"),
		kong.Description("Merge or remove subtitle tracks for a directory of videos."),
		kong.UsageOnError(),
	)

	e, err := newEnv(cli.EnvFile, os.Stdout)
	ctx.FatalIfErrorf(err)

	ctx.FatalIfErrorf(ctx.Run(e))
}
