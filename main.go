package main

import (
	"flag"

	"github.com/rs/zerolog/log"

	"github.com/driveshare/driveshare/cmd/driveshare"
	"github.com/driveshare/driveshare/pkg/config"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	c, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Unable to load config file")
	}

	driveshare.Run(c)
}
