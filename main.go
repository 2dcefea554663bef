package main

import (
	"log"

	"github.com/fasthttp/router"
	"github.com/joho/godotenv"
	"github.com/valyala/fasthttp"

	"eventlistener/internal/config"
	"eventlistener/internal/db"
	"eventlistener/internal/http/handlers"
	"eventlistener/internal/retention"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	gormDB, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	store := db.NewGormStore(gormDB)

	handlers.InitPrometheusMetrics()
	retention.InitPrometheusMetrics()

	sweeper := retention.NewSweeper(store, cfg.RetentionDays)
	sweeper.Start()

	r := router.New()

	r.GET("/healthz", func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBodyString("ok")
	})

	r.POST("/eventlistener", handlers.IngestHandler(store))

	r.GET("/events", handlers.ListEvents(store, sweeper))
	r.GET("/events/{page}", handlers.ListEventsPage(store, sweeper))
	r.GET("/event/{eventId}", handlers.EventDetail(store))

	r.POST("/eventdelete/{eventId}", handlers.DeleteEvent(store))
	r.POST("/deleteallevents", handlers.DeleteAllEvents(store))
	r.POST("/eventsearch", handlers.SearchEvents(store))

	r.GET("/metrics", handlers.MetricsHandler())

	handler := handlers.RequestLogger(r.Handler)

	log.Printf("eventlistener listening on %s (retention %d days)", cfg.ListenAddr, cfg.RetentionDays)
	if err := fasthttp.ListenAndServe(cfg.ListenAddr, handler); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
