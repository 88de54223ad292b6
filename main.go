package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/wordduel/server/internal/game"
	"github.com/wordduel/server/internal/httpserver"
	"github.com/wordduel/server/internal/words"
	"github.com/wordduel/server/internal/ws"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	if err := words.Init(); err != nil {
		log.Fatal().Err(err).Msg("failed to load word lists")
	}

	db, err := openDB(getEnv("DATABASE_PATH", "./data/duel.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	if err := migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	hub := ws.NewHub(log.Logger)
	checker := words.NewChecker(os.Getenv("DICTIONARY_API_URL"))
	coord := game.NewCoordinator(game.NewRegistry(), checker, hub, &matchRecorder{db: db}, log.Logger)
	hub.SetCoordinator(coord)

	srv := httpserver.New(hub, db)
	port := getEnv("PORT", "8080")
	log.Info().Str("port", port).Msg("starting wordduel server")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
