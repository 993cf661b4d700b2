package main

import (
	"io"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/motdevine/assets"
	"github.com/robalobadob/motdevine/internal/catalog"
	"github.com/robalobadob/motdevine/internal/httpserver"
	"github.com/robalobadob/motdevine/internal/store"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	cat, err := loadCatalog(getEnv("CATALOG_FILE", ""))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load catalog")
	}
	log.Info().Int("words", cat.Len()).Msg("catalog loaded")

	st, closeStore := openStore(getEnv("DB_PATH", "./data/app.db"))
	defer closeStore()

	srv := httpserver.New(cat, st, httpserver.Options{
		AdvanceDelay:  time.Duration(envInt("ADVANCE_DELAY_MS", 2500)) * time.Millisecond,
		FallbackDelay: time.Duration(envInt("FALLBACK_DELAY_MS", 2000)) * time.Millisecond,
	})
	port := getEnv("PORT", "5175")
	log.Info().Str("port", port).Msg("starting motdevine server")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// loadCatalog reads path, or the embedded catalog when path is empty.
func loadCatalog(path string) (*catalog.Catalog, error) {
	var (
		r   io.ReadCloser
		err error
	)
	if path == "" {
		r, err = assets.Catalog()
	} else {
		r, err = os.Open(path)
	}
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return catalog.Load(r, catalog.DefaultCategories)
}

// openStore opens SQLite at path; "memory" keeps everything in process.
func openStore(path string) (store.Store, func()) {
	if path == "memory" {
		log.Warn().Msg("using in-memory store, progress is lost on restart")
		return store.NewMemoryStore(), func() {}
	}
	db, err := store.OpenSQLite(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("failed to open database")
	}
	log.Info().Str("path", path).Msg("database ready")
	return db, func() { _ = db.Close() }
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
