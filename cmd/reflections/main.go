package main

import (
	"context"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/labstack/gommon/color"
	"github.com/memora/reflections/internal/pkg/audio"
	"github.com/memora/reflections/internal/pkg/auth"
	"github.com/memora/reflections/internal/pkg/filer"
	"github.com/memora/reflections/internal/pkg/openai"
	"github.com/memora/reflections/internal/pkg/postgres"
	"github.com/memora/reflections/internal/pkg/reflections"
	"github.com/memora/reflections/internal/pkg/utils"
)

func main() {
	goapp.StartWithDefault()

	printBanner()

	cfg := goapp.Config
	data := &reflections.Data{}
	data.Port = cfg.GetInt("port")
	data.MarkFailedOnError = cfg.GetBool("markFailedOnError")
	data.Debug = cfg.GetBool("debug")
	var err error

	ctx := context.Background()

	dbConfig, err := pgxpool.ParseConfig(cfg.GetString("db.url"))
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init db pool")
	}
	dbConfig.ConnConfig.Tracer = &tracelog.TraceLog{Logger: utils.NewDBLogAdapter(),
		LogLevel: tracelog.LogLevelWarn}

	dbPool, err := pgxpool.NewWithConfig(ctx, dbConfig)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init db pool")
	}
	defer dbPool.Close()

	db, err := postgres.NewDB(dbPool)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init db")
	}
	data.DB = db

	data.Filer, err = filer.NewFiler(cfg)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init filer")
	}

	oai, err := openai.NewClient(cfg)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init openai client")
	}
	data.Transcriber = oai
	data.Analyzer = oai

	data.Converter, err = audio.NewConverter(cfg)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init audio converter")
	}

	data.Auth, err = auth.NewResolver(db)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init auth resolver")
	}

	go utils.RunPerfEndpoint()

	err = reflections.StartWebServer(data)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't start web server")
	}
}

var (
	version = "DEV"
)

func printBanner() {
	banner := `
   __  ___
  /  |/  /__ ____ _  ___  _______ _
 / /|_/ / -_)  ' \/ _ \/ __/ _ ` + "`" + `/
/_/  /_/\__/_/_/_/\___/_/  \_,_/

              ___          __  _
   ________  / _/__  _____/ /_(_)__  ___  ___
  / __/ -_) / _/ / -_) __/ __/ / _ \/ _ \(_-<
 /_/  \__/_/ /_/\__/\__/\__/_/\___/_//_/___/  v: %s

%s
________________________________________________________

`
	cl := color.New()
	cl.Printf(banner, cl.Red(version), cl.Green("https://github.com/memora/reflections"))
}
