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

	"github.com/mkolodiy/go-auth-shell/internal/config"
	"github.com/mkolodiy/go-auth-shell/internal/db"
	"github.com/mkolodiy/go-auth-shell/internal/devapi"
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

	sqlDb, err := db.Setup(ctx, cfg.DevAPIDB)
	if err != nil {
		log.Fatal(err)
	}
	defer sqlDb.Close()

	api := devapi.New(sqlDb, cfg.DevAPISessionTTL, log.WithField("component", "devapi"))
	go api.CleanUpSessions(ctx, 10*time.Second)

	srv := &http.Server{
		Addr:              cfg.DevAPIAddr,
		Handler:           api.Routes(),
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

	log.WithFields(log.Fields{"addr": cfg.DevAPIAddr, "db": cfg.DevAPIDB}).Info("start")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
