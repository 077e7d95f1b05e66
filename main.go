package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/spencer-p/tidedash/pkg/config"
	"github.com/spencer-p/tidedash/pkg/dashboard"
	"github.com/spencer-p/tidedash/pkg/handlers"
	"github.com/spencer-p/tidedash/pkg/noaa"
	"github.com/spencer-p/tidedash/pkg/schedule"
)

func main() {
	env, err := config.Load()
	if err != nil {
		log.Fatal(err.Error())
	}

	for _, dir := range []string{env.AssetsPath, env.PlotPath} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatal(err.Error())
		}
	}

	client := noaa.NewClient(env.Gateway())
	dash, err := dashboard.FromKinds(client, env.Location(), env.Kinds(), env.Settings)
	if err != nil {
		log.Fatal(err.Error())
	}

	sched := schedule.New(env.Location(), env.Interval, 0, dash.RunCycle)
	if err := sched.Start(); err != nil {
		log.Fatal(err.Error())
	}
	defer sched.Stop()

	r := mux.NewRouter().StrictSlash(true)
	s := r.PathPrefix(env.Prefix).Subrouter()
	handlers.Register(s, env.Prefix, env.AssetsPath, dash)

	srv := &http.Server{
		Handler:      r,
		Addr:         "0.0.0.0:" + env.Port,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdown); err != nil {
			log.Printf("Failed to shut down: %v", err)
		}
	}()

	log.Printf("Listening and serving on %s/%s", srv.Addr, env.Prefix[1:])
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
