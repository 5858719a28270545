// Command fasttripsd is a demo/integration harness for the core: it
// wires a NetworkModel (in-memory by default, or loaded from Postgres
// when FASTTRIPS_DATABASE_URL is set) and a CostEngine into a
// dispatch.Dispatcher and exposes find_paths over HTTP, the way the
// teacher's main.go wired its Raptor engine into a chi router.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"

	"github.com/fast-trips/fast-trips-core/internal/api"
	"github.com/fast-trips/fast-trips-core/internal/config"
	"github.com/fast-trips/fast-trips-core/internal/cost"
	"github.com/fast-trips/fast-trips-core/internal/dispatch"
	"github.com/fast-trips/fast-trips-core/internal/netmodel"
	"github.com/fast-trips/fast-trips-core/internal/netmodel/pgload"
	"github.com/fast-trips/fast-trips-core/internal/obslog"
)

func main() {
	obslog.Setup(os.Getenv("FASTTRIPS_LOG_LEVEL"), os.Getenv("FASTTRIPS_LOG_FORMAT"))

	cfg, err := config.Load(os.Getenv("FASTTRIPS_CONFIG_FILE"))
	if err != nil {
		slog.Error("loading config", "err", err)
		os.Exit(1)
	}

	nm, eng, closeDB, err := buildNetwork(context.Background())
	if err != nil {
		slog.Error("building network model", "err", err)
		os.Exit(1)
	}
	if closeDB != nil {
		defer closeDB()
	}

	disp := dispatch.New(nm, eng, cfg, nil)
	h := api.NewHandler(disp)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/pathset", h.PostPathset)
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	slog.Info("fasttripsd starting", "port", port, "pathfinding_type", cfg.PathfindingType)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		slog.Error("server exited", "err", err)
		os.Exit(1)
	}
}

// buildNetwork loads the NetworkModel and CostEngine from Postgres when
// FASTTRIPS_DATABASE_URL is set, falling back to the in-memory demo
// network otherwise. It returns a close func for the pool, nil when
// there is none to close.
func buildNetwork(ctx context.Context) (*netmodel.NetworkModel, *cost.Engine, func(), error) {
	dbURL := os.Getenv("FASTTRIPS_DATABASE_URL")
	if dbURL == "" {
		slog.Info("FASTTRIPS_DATABASE_URL not set, using in-memory demo network")
		nm, eng, err := demoNetwork()
		return nm, eng, nil, err
	}

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, nil, err
	}

	nm, err := pgload.New(pool).Load(ctx)
	if err != nil {
		pool.Close()
		return nil, nil, nil, err
	}

	// pgload has no weights table to source a WeightBook from (the
	// teacher's schema never carried one), so the demo server still runs
	// the loaded network against the same demo weight set the in-memory
	// fixture uses until a deployment supplies its own.
	_, eng, err := demoNetwork()
	if err != nil {
		pool.Close()
		return nil, nil, nil, err
	}

	return nm, eng, pool.Close, nil
}
