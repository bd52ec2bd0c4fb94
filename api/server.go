package api

import (
	"context"
	"net/http"
	"time"

	"goldhouse/config"
	"goldhouse/service"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// Services bundles everything the HTTP layer fronts
type Services struct {
	Accounts service.AccountService
	Roulette service.RouletteService
	BetBook  service.BetBookService
	Promos   service.PromoService
	Admin    service.AdminService
}

// Start runs the HTTP server until the context is cancelled, then shuts it
// down gracefully
func Start(ctx context.Context, cfg *config.Config, services Services) error {
	h := &handler{
		router:   mux.NewRouter(),
		accounts: services.Accounts,
		roulette: services.Roulette,
		betBook:  services.BetBook,
		promos:   services.Promos,
		admin:    services.Admin,
	}
	h.initRouter(&middleware{cfg: cfg})

	s := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      h,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		err := s.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	log.WithField("addr", cfg.ListenAddr).Info("Server started")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Trying graceful shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
		return err
	}

	log.Info("Server stopped")
	return nil
}
