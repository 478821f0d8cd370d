package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/Simplici0/shopcost/internal/config"
	"github.com/Simplici0/shopcost/internal/library"
	"github.com/Simplici0/shopcost/internal/pricing"
	"github.com/Simplici0/shopcost/internal/project"
	"github.com/Simplici0/shopcost/internal/store"
)

const maxBodyBytes = 1 << 20

type server struct {
	store  *store.Store
	symbol string
	newID  project.IDFunc
	now    func() time.Time
}

func newServer(st *store.Store, symbol string) *server {
	return &server{
		store:  st,
		symbol: symbol,
		newID:  project.NewID,
		now:    time.Now,
	}
}

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the estimator HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			database, err := a.openDB(ctx, a.cfg.IsDev())
			if err != nil {
				return err
			}
			defer database.Close()

			stats, err := a.runSeed(ctx, database)
			if err != nil {
				return err
			}
			if stats.Inserts > 0 || stats.Updates > 0 {
				log.Printf("seeded %d rows, updated %d", stats.Inserts, stats.Updates)
			}

			srv := newServer(store.New(database), a.cfg.CurrencySymbol)
			return listenAndServe(ctx, ":"+a.cfg.Port, srv.routes())
		},
	}

	cmd.Flags().String("port", "", "HTTP port (env SHOPCOST_PORT)")
	_ = a.v.BindPFlag(config.KeyPort, cmd.Flags().Lookup("port"))
	return cmd
}

func listenAndServe(ctx context.Context, addr string, h http.Handler) error {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Print("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/library", s.handleLibraryList)
		r.Post("/totals", s.handleTotalsCompute)

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", s.handleProjectsList)
			r.Post("/", s.handleProjectCreate)
			r.Get("/active", s.handleProjectActive)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleProjectGet)
				r.Put("/", s.handleProjectReplace)
				r.Delete("/", s.handleProjectDelete)
				r.Post("/activate", s.handleProjectActivate)
				r.Get("/totals", s.handleProjectTotals)
				r.Get("/boq", s.handleProjectBOQ)

				r.Get("/rows", s.handleRowsList)
				r.Post("/rows", s.handleRowAdd)
				r.Patch("/rows/{rowID}", s.handleRowUpdate)
				r.Delete("/rows/{rowID}", s.handleRowDelete)
				r.Post("/rows/{rowID}/duplicate", s.handleRowDuplicate)
				r.Post("/presets/{index}", s.handlePresetInsert)
			})
		})
	})

	return r
}

// projectView is the project plus everything the UI renders from it.
type projectView struct {
	Project   pricing.Project     `json:"project"`
	Totals    pricing.Totals      `json:"totals"`
	Labor     pricing.LaborResult `json:"labor"`
	Subtotals map[string]float64  `json:"subtotals"`
	Stats     project.Stats       `json:"stats"`
}

func newProjectView(p pricing.Project) projectView {
	subtotals := make(map[string]float64, len(p.Rows))
	for _, r := range p.Rows {
		subtotals[r.ID] = pricing.RowSubtotal(r)
	}
	if p.Rows == nil {
		p.Rows = []pricing.Row{}
	}
	return projectView{
		Project:   p,
		Totals:    pricing.ComputeTotals(p),
		Labor:     pricing.ComputeLabor(p),
		Subtotals: subtotals,
		Stats:     project.RowStats(p),
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeStoreError maps domain errors to HTTP statuses.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "project not found")
	case errors.Is(err, project.ErrRowNotFound):
		writeError(w, http.StatusNotFound, "row not found")
	case errors.Is(err, library.ErrEmpty):
		writeError(w, http.StatusConflict, "preset library is empty")
	default:
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return dec.Decode(v)
}
