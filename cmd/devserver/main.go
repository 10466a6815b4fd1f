// Command devserver serves the schedule backend's HTTP contract from memory
// so the client can be run without the real service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/sadopc/agenda/internal/datekey"
	"github.com/sadopc/agenda/internal/devserver"
	"github.com/sadopc/agenda/internal/model"
)

func main() {
	seed := flag.Bool("seed", true, "create a demo user with a few events")
	flag.Parse()

	_ = godotenv.Load()

	log, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	zone, err := datekey.NewZone(getEnv("AGENDA_TIMEZONE", ""))
	if err != nil {
		log.Fatal("time zone", zap.Error(err))
	}

	opts := []devserver.Option{devserver.WithZone(zone), devserver.WithLogger(log)}
	if secret := os.Getenv("DEVSERVER_SECRET"); secret != "" {
		opts = append(opts, devserver.WithSecret([]byte(secret)))
	}
	if ttl := os.Getenv("DEVSERVER_TOKEN_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			log.Fatal("DEVSERVER_TOKEN_TTL", zap.Error(err))
		}
		opts = append(opts, devserver.WithTokenTTL(d))
	}
	srv := devserver.New(opts...)

	if *seed {
		seedDemo(srv, zone)
		log.Info("seeded demo user", zap.String("username", "demo"), zap.String("password", "demo"))
	}

	port := getEnv("PORT", "8000")
	httpSrv := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("listening", zap.String("addr", "http://localhost:"+port))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
		return
	}
	log.Info("server stopped")
}

func seedDemo(srv *devserver.Server, zone datekey.Zone) {
	u := srv.SeedUser("demo", "demo@example.com", "demo")
	today, _ := datekey.ParseKey(zone.Today(time.Now()))
	at := func(days, hour, minute int) string {
		d := today.AddDate(0, 0, days)
		return zone.Wire(time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, zone.Location()))
	}

	srv.SeedEvent(model.Event{UserID: u.ID, Name: "Họp nhóm", StartTime: at(0, 9, 0), EndTime: model.StringPtr(at(0, 10, 0)), Location: model.StringPtr("Phòng 2"), TimeReminder: model.IntPtr(15)})
	srv.SeedEvent(model.Event{UserID: u.ID, Name: "Ăn trưa", StartTime: at(0, 12, 0)})
	srv.SeedEvent(model.Event{UserID: u.ID, Name: "Gym", StartTime: at(1, 18, 0), EndTime: model.StringPtr(at(1, 19, 30))})
	srv.SeedEvent(model.Event{UserID: u.ID, Name: "Đà Lạt trip", StartTime: at(3, 7, 0), EndTime: model.StringPtr(at(5, 20, 0)), Location: model.StringPtr("Đà Lạt")})
	srv.SeedEvent(model.Event{UserID: u.ID, Name: "Dentist", StartTime: at(-2, 15, 30)})
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
