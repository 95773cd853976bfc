package main

import (
	"context"
	"log"
	"net/http"

	"fleet_monitor/internal/auth"
	"fleet_monitor/internal/config"
	"fleet_monitor/internal/controllers"
	"fleet_monitor/internal/geo"
	"fleet_monitor/internal/logger"
	"fleet_monitor/internal/middleware"
	"fleet_monitor/internal/persist"
	"fleet_monitor/internal/routes"
	"fleet_monitor/internal/rowstore"
	"fleet_monitor/internal/store"
)

func main() {
	// Initialize structured logging to file
	logger.Setup()

	cfg := config.Load()

	// Durable slot store: local files, or the managed Postgres.
	var slots persist.SlotStore
	var profiles *rowstore.AdminUsers
	switch cfg.SlotBackend {
	case "postgres":
		db := config.InitDB()
		var err error
		slots, err = persist.NewGormSlotStore(db)
		if err != nil {
			log.Fatalf("slot store migration failed: %v", err)
		}
		profiles, err = rowstore.New(db)
		if err != nil {
			log.Fatalf("admin_users migration failed: %v", err)
		}
	default:
		fs, err := persist.NewFileSlotStore(cfg.DataDir)
		if err != nil {
			log.Fatalf("could not open data directory: %v", err)
		}
		slots = fs
	}

	// Rehydrate the entity store before anything can render from it.
	st := store.New(slots)

	// Authentication collaborator: the managed backend, or the mock
	// fallback in the permissive variant.
	var provider auth.Provider
	if cfg.UseMock() {
		mock := auth.NewMockProvider()
		if _, err := mock.AddUser("admin@fleet.local", "admin"); err != nil {
			log.Fatalf("could not seed mock admin: %v", err)
		}
		log.Println("SERVICE_URL not set – running against the mock auth backend")
		provider = mock
	} else {
		provider = auth.NewHTTPProvider(cfg.ServiceURL, cfg.ServiceKey)
	}

	var fetcher auth.ProfileFetcher
	if profiles != nil {
		fetcher = profiles
	}
	gate := auth.NewGate(provider, fetcher)
	gate.Start(context.Background())
	defer gate.Stop()

	geoProvider := geo.NewSimulatedProvider(51.505, -0.09)

	hub := controllers.NewPositionHub(st)
	defer hub.Close()

	var lastLogins controllers.LastLoginRecorder
	if profiles != nil {
		lastLogins = profiles
	}

	r := routes.SetupRouter(routes.Controllers{
		Auth:     controllers.NewAuthController(gate, lastLogins),
		Bus:      controllers.NewBusController(st),
		Terminal: controllers.NewTerminalController(st),
		Route:    controllers.NewRouteController(st, geoProvider),
		Map:      controllers.NewMapController(st),
		Hub:      hub,
	})

	// Wrap with CORS
	handler := middleware.EnableCORS(r)

	log.Printf("🚀 Server running at %s", cfg.ListenAddr)
	log.Fatal(http.ListenAndServe(cfg.ListenAddr, handler))
}
