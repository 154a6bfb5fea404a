package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mkolodiy/go-auth-shell/internal/api"
	"github.com/mkolodiy/go-auth-shell/internal/auth"
	"github.com/mkolodiy/go-auth-shell/internal/config"
	"github.com/mkolodiy/go-auth-shell/internal/query"
	"github.com/mkolodiy/go-auth-shell/internal/routes"
	log "github.com/sirupsen/logrus"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	log.SetLevel(cfg.LogLevel)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	queryClient := query.NewClient(
		query.WithGCTime(cfg.MutationGCTime),
		query.WithLogger(log.WithField("component", "query")),
	)
	defer queryClient.Close()

	forms := auth.NewStore(cfg.FormTTL, cfg.FormLimit)
	defer forms.Close()

	r := routes.NewRouter(routes.Deps{
		Client:        queryClient,
		API:           api.NewClient(cfg.AuthAPIURL, api.WithTimeout(cfg.AuthAPITimeout)),
		Forms:         forms,
		Log:           log.WithField("component", "http"),
		AssetsDir:     cfg.AssetsDir,
		SecureCookies: cfg.SecureCookies,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(l net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("shutdown")
		}
	}()

	log.WithFields(log.Fields{"addr": cfg.Addr, "authApi": cfg.AuthAPIURL}).Info("start")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	log.Info("stopped")
}
