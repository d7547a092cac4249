package main

import (
	"flag"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/avolkhin/sqlarena/internal/app"
	"github.com/avolkhin/sqlarena/internal/handlers"
)

func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	flag.Parse()

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}
	defer service.Close()

	competitionHandler := handlers.NewCompetitionHandler(service)
	taskHandler := handlers.NewTaskHandler(service)

	http.HandleFunc("POST /api/v1/competitions", competitionHandler.HandleCreate)
	http.HandleFunc("GET /api/v1/competitions", competitionHandler.HandleList)
	http.HandleFunc("GET /api/v1/competitions/{id}", competitionHandler.HandleGet)
	http.HandleFunc("PUT /api/v1/competitions/{id}", competitionHandler.HandleUpdate)
	http.HandleFunc("DELETE /api/v1/competitions/{id}", competitionHandler.HandleDelete)
	http.HandleFunc("GET /api/v1/competitions/{id}/state", competitionHandler.HandleState)
	http.HandleFunc("POST /api/v1/competitions/{id}/query", competitionHandler.HandleQuery)
	http.HandleFunc("GET /api/v1/competitions/{id}/leaderboard", competitionHandler.HandleLeaderboard)
	http.HandleFunc("GET /api/v1/competitions/{id}/tasks", taskHandler.HandleList)
	http.HandleFunc("GET /api/v1/time", competitionHandler.HandleTime)

	http.HandleFunc("POST /api/v1/tasks", taskHandler.HandleCreate)
	http.HandleFunc("GET /api/v1/tasks/{id}", taskHandler.HandleGet)
	http.HandleFunc("PUT /api/v1/tasks/{id}", taskHandler.HandleUpdate)
	http.HandleFunc("DELETE /api/v1/tasks/{id}", taskHandler.HandleDelete)
	http.HandleFunc("POST /api/v1/tasks/{id}/check", taskHandler.HandleCheck)
	http.HandleFunc("GET /api/v1/tasks/{id}/answer", taskHandler.HandleOwnAnswer)

	http.Handle("/metrics", promhttp.Handler())

	logger.Info.Printf("Starting sqlarena server on %s", service.Config.Server.Port)
	if err := http.ListenAndServe(service.Config.Server.Port, nil); err != nil {
		logger.Error.Fatalf("Sqlarena server failed: %v", err)
	}
}
