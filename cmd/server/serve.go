package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"reviere_back_end/internal/database"
	"reviere_back_end/internal/offer"
	"reviere_back_end/internal/routes"
)

const shutdownTimeout = 15 * time.Second

func routesRegister(r *gin.Engine, a *application) {
	routes.RegisterRoutes(r, a.handler, a.cache, routes.Options{
		CORSOrigins:        a.cfg.CORSOrigins,
		RateLimitPerMinute: a.cfg.RateLimitPerMinute,
	})
}

func serve(c *cli.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := buildApplication(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	go offer.NewSweeper(app.offers, cfg.OfferSweepInterval).Run(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).Info("🚀 Serveur Reviere lancé")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("🛑 Arrêt demandé, fermeture des connexions")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func migrateCmd(c *cli.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.MemoryStore() {
		log.Info("ℹ️ STORE_DRIVER=memory : aucune migration à appliquer")
		return nil
	}
	if err := database.EnsureKeyspace(cfg.Scylla); err != nil {
		return err
	}
	session, err := database.ConnectScylla(cfg.Scylla)
	if err != nil {
		return err
	}
	defer session.Close()
	return database.Migrate(session, cfg.Scylla.Keyspace)
}

func sweepCmd(c *cli.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	app, err := buildApplication(c.Context, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	res, err := app.offers.Sweep(c.Context)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"expired": res.Expired,
		"failed":  res.Failed,
	}).Info("🧹 Balayage terminé")
	return nil
}
