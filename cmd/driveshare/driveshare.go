package driveshare

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/driveshare/driveshare/pkg/api"
	"github.com/driveshare/driveshare/pkg/auth"
	"github.com/driveshare/driveshare/pkg/config"
	"github.com/driveshare/driveshare/pkg/storage"
)

func setupLogs(logConfig config.Logging) {
	// Equivalent of Lshortfile
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		short := file
		for i := len(file) - 1; i > 0; i-- {
			if file[i] == '/' {
				short = file[i+1:]
				break
			}
		}
		file = short
		return file + ":" + strconv.Itoa(line)
	}

	// Set log level
	logLevel := zerolog.TraceLevel
	switch logConfig.Level {
	case "panic":
		logLevel = zerolog.PanicLevel
	case "fatal":
		logLevel = zerolog.FatalLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "info":
		logLevel = zerolog.InfoLevel
	case "debug":
		logLevel = zerolog.DebugLevel
	case "trace":
		logLevel = zerolog.TraceLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	// Set log output format
	if logConfig.JSONFormat {
		log.Logger = log.With().Caller().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).With().Caller().Logger()
	}
}

func Run(c config.Config) {
	setupLogs(c.Logging)

	log.Debug().Msg("Starting Drive Share")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	services, err := storage.New(c)
	if err != nil {
		log.Fatal().Err(err).Msg("Unable to set up storage services")
	}

	provider := auth.NewGoogleProvider(c.Auth)

	apiServer, err := api.NewAPI(c, services, provider)
	if err != nil {
		log.Fatal().Err(err).Msg("Unable to set up API")
	}

	mux := api.CreateMux(c, apiServer)
	api.RunAPI(ctx, c.API, mux)
}
