package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/jinzhu/configor"
	"github.com/rs/zerolog"

	"github.com/xdbsoft/polystore"
)

func loadConfig(path string) (polystore.Config, error) {

	var cfg polystore.Config
	if err := configor.New(&configor.Config{ENVPrefix: "POLYSTORE"}).Load(&cfg, path); err != nil {
		return cfg, err
	}

	return cfg, nil
}

var configPath = flag.String("config", "polystore.yml", "path to the configuration file")
var listenAddr = flag.String("addr", ":9889", "address and port to listen on")

func main() {

	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("unable to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	log.Info().Str("backend", string(cfg.Backend)).Msg("starting")

	handler, err := polystore.Server(context.Background(), cfg, polystore.WithLogger(log))
	if err != nil {
		log.Fatal().Err(err).Msg("unable to start server")
	}

	cors := handlers.CORS(
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)

	s := &http.Server{
		Addr:           *listenAddr,
		Handler:        handlers.LoggingHandler(os.Stdout, cors(handler)),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Info().Str("addr", *listenAddr).Msg("listening")
	log.Fatal().Err(s.ListenAndServe()).Msg("server stopped")
}
