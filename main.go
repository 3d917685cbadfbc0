package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"

	"stagepass/auth"
	"stagepass/booking"
	"stagepass/cache"
	"stagepass/config"
	"stagepass/middleware"
	"stagepass/ratelim"
	"stagepass/routes"
	"stagepass/session"
	"stagepass/store"
)

// securityHeaders applies a set of recommended HTTP security headers.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "frame-ancestors 'none'")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs each request method, path, remote address, and duration.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s from %s – %v", r.Method, r.RequestURI, r.RemoteAddr, time.Since(start))
	})
}

// Index is a simple health check handler.
func Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "200")
}

// openStore probes the durable store once. The choice made here holds for the
// process lifetime: a store that fails later causes request-level errors, not
// automatic failover.
func openStore(cfg *config.Config) store.Inventory {
	mongoStore, err := store.ConnectMongo(cfg.Mongo)
	if err != nil {
		log.Printf("✗ MongoDB failed: %v — using in-memory fallback store", err)
		return store.NewMemory(store.SampleShows())
	}
	log.Println("✓ MongoDB connected")
	if err := mongoStore.Init(context.Background()); err != nil {
		log.Printf("✗ Init failed: %v", err)
	}
	return mongoStore
}

func main() {
	// load .env if present
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("❌ Config error: %v", err)
	}
	port := cfg.Port
	if port == "" {
		port = ":8080"
	} else if port[0] != ':' {
		port = ":" + port
	}

	inventory := openStore(cfg)
	cacheTier := cache.New(cfg.Redis)
	sessions := session.NewRegistry(cacheTier, cfg.SessionTTLDuration())

	hub := booking.NewHub()
	svc := booking.NewService(inventory, cacheTier, hub)
	bookingAPI := booking.NewAPI(svc)
	ticketPrinter := booking.NewTicketPrinter(svc, cfg.TicketSecret)
	authAPI := auth.NewAPI(inventory, sessions)
	authMW := middleware.NewAuth(sessions)
	rateLimiter := ratelim.NewRateLimiter()

	router := httprouter.New()
	router.GET("/health", Index)
	routes.AddAuthRoutes(router, authAPI, rateLimiter)
	routes.AddShowRoutes(router, bookingAPI, hub)
	routes.AddBookingRoutes(router, bookingAPI, ticketPrinter, authMW, rateLimiter)

	// apply middleware: CORS → security headers → logging → router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // lock down in production
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(router)

	handler := loggingMiddleware(securityHeaders(corsHandler))

	server := &http.Server{
		Addr:              port,
		Handler:           handler,
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	go func() {
		log.Printf("🚀 Server listening on %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ ListenAndServe error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("🛑 Shutdown signal received; shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Graceful shutdown failed: %v", err)
	}
	if m, ok := inventory.(*store.Mongo); ok {
		if err := m.Close(context.Background()); err != nil {
			log.Printf("✗ Mongo disconnect: %v", err)
		}
	}

	log.Println("✅ Server stopped cleanly")
}
