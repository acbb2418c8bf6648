// main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"portalbackend/internal/academics"
	"portalbackend/internal/activity"
	"portalbackend/internal/catalog"
	"portalbackend/internal/config"
	"portalbackend/internal/data"
	"portalbackend/internal/export"
	"portalbackend/internal/hostel"
	"portalbackend/internal/ledger"
	"portalbackend/internal/library"
	"portalbackend/internal/logger"
	"portalbackend/internal/middleware"
	"portalbackend/internal/payment"
	"portalbackend/internal/portal"
	"portalbackend/internal/receipt"
	"portalbackend/internal/security"
	"portalbackend/internal/session"
)

type App struct {
	addr          string
	mux           *http.ServeMux
	connections   sync.WaitGroup
	totalRequests int64
}

func init() {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err == nil {
		time.Local = loc // This affects the standard log package
	}
}

func main() {
	// Step 1: Setup configuration first
	config.LoadEnv()
	config.ConfigurePaths()

	// Step 2: Setup logging
	loggerConfig := config.LoggerConfig()
	if err := logger.SetupLogger(loggerConfig); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Only NOW is logging safe to use!
	logger.LogInfo("Environment and paths loaded. Logger ready.")
	config.LogCurrentEnvironment()
	config.LoadCORSConfig()

	// Step 3: Open the database and create tables
	if err := data.InitDB(config.DatabasePath); err != nil {
		logger.LogFatal("Failed to initialize database: %v", err)
	}
	defer data.CloseDB()

	if err := data.CreateTables(); err != nil {
		logger.LogFatal("Failed to create tables: %v", err)
	}

	// Step 4: Build services and reload persisted state
	ctx := context.Background()

	catalogSvc := catalog.NewService()
	if err := catalogSvc.LoadFromFile(config.CatalogPath); err != nil {
		logger.LogWarn("Catalog load reported: %v", err)
	}

	receiptStore := receipt.NewStore(data.NewReceiptRepository())
	receiptStore.Load(ctx)

	hostelSvc := hostel.NewService()
	if err := hostelSvc.LoadFromFile(config.RoomsPath); err != nil {
		logger.LogWarn("Rooms load reported: %v", err)
	}

	librarySvc := library.NewService(data.NewReservationRepository())
	librarySvc.Load(ctx)

	activitySvc := activity.NewService(data.NewActivityRepository())
	activitySvc.Load(ctx)

	syllabusTracker := academics.NewTracker(data.NewSyllabusRepository())
	syllabusTracker.Load(ctx)

	handlers := &portal.Handlers{
		Catalog:  catalogSvc,
		Receipts: receiptStore,
		Sessions: session.NewManager(catalogSvc, receiptStore, data.NewCartRepository()),
		Checkout: payment.NewCheckout(catalogSvc, receiptStore, ledger.DefaultRules()),
		Hostel:   hostelSvc,
		Library:  librarySvc,
		Activity: activitySvc,
		Syllabus: syllabusTracker,
		Renderer: export.NewRenderer(config.ExportDirectory),
	}

	// Step 5: Setup app
	app := &App{
		addr: serverAddress(),
		mux:  routes(handlers),
	}

	// Step 6: Start background tasks
	go security.CleanExpiredTokens(time.Hour)

	// Step 7: Run server
	app.Run()
}

// serverAddress builds the server address from environment variables
func serverAddress() string {
	host := os.Getenv("SERVER_HOST")
	if host == "" {
		host = "127.0.0.1"
	}
	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "5052"
	}
	return host + ":" + port
}

// routes sets up all API routes
func routes(h *portal.Handlers) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	apiMux := http.NewServeMux()

	// Public: session bootstrap, menu and CSRF
	apiMux.HandleFunc("/session", middleware.PublicMiddleware(h.StartSessionHandler))
	apiMux.HandleFunc("/catalog", middleware.PublicMiddleware(h.CatalogHandler))
	apiMux.HandleFunc("/csrf-token", security.CSRFTokenHandler)

	// Session-scoped
	apiMux.HandleFunc("/session/end", middleware.APIMiddleware(h.EndSessionHandler))
	apiMux.HandleFunc("/cart", middleware.APIMiddleware(h.CartHandler))
	apiMux.HandleFunc("/cart/add", middleware.APIMiddleware(h.CartAddHandler))
	apiMux.HandleFunc("/cart/remove", middleware.APIMiddleware(h.CartRemoveHandler))
	apiMux.HandleFunc("/cart/quantity", middleware.APIMiddleware(h.CartQuantityHandler))
	apiMux.HandleFunc("/checkout", middleware.APIMiddleware(h.CheckoutHandler))

	apiMux.HandleFunc("/admission/stages", middleware.APIMiddleware(h.StagesHandler))
	apiMux.HandleFunc("/admission/pay", middleware.APIMiddleware(h.StagePayHandler))
	apiMux.HandleFunc("/receipts", middleware.APIMiddleware(h.ReceiptsHandler))
	apiMux.HandleFunc("/receipts/download", middleware.APIMiddleware(h.ReceiptDownloadHandler))

	apiMux.HandleFunc("/hostel/rooms", middleware.APIMiddleware(h.RoomsHandler))
	apiMux.HandleFunc("/hostel/allocate", middleware.APIMiddleware(h.RoomAllocateHandler))

	apiMux.HandleFunc("/library/books", middleware.APIMiddleware(h.BooksHandler))
	apiMux.HandleFunc("/library/reserve", middleware.APIMiddleware(h.ReserveHandler))
	apiMux.HandleFunc("/library/reservations", middleware.APIMiddleware(h.ReservationsHandler))

	apiMux.HandleFunc("/activity/events", middleware.APIMiddleware(h.EventsHandler))
	apiMux.HandleFunc("/activity/record", middleware.APIMiddleware(h.EventRecordHandler))
	apiMux.HandleFunc("/activity/points", middleware.APIMiddleware(h.PointsHandler))

	apiMux.HandleFunc("/academics/attendance", middleware.APIMiddleware(h.AttendanceHandler))
	apiMux.HandleFunc("/academics/calendar", middleware.APIMiddleware(h.CalendarHandler))
	apiMux.HandleFunc("/academics/syllabus", middleware.APIMiddleware(h.SyllabusHandler))
	apiMux.HandleFunc("/academics/syllabus/toggle", middleware.APIMiddleware(h.SyllabusToggleHandler))
	apiMux.HandleFunc("/academics/syllabus/all", middleware.APIMiddleware(h.SyllabusBulkHandler))

	apiMux.HandleFunc("/summary", middleware.APIMiddleware(h.SummaryHandler))

	mux.Handle("/api/", http.StripPrefix("/api", apiMux))

	return mux
}

// Run starts the HTTP server
func (a *App) Run() {
	server := &http.Server{
		Addr:         a.addr,
		Handler:      a.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for shutdown signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Start server in a separate goroutine
	go func() {
		logger.LogInfo("Starting server on %s", a.addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.LogFatal("Server failed: %v", err)
		}
	}()

	// Wait for a shutdown signal
	<-stop
	logger.LogInfo("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.LogError("Server shutdown error: %v", err)
	}

	logger.LogInfo("Waiting for active connections to finish...")
	a.connections.Wait()
	logger.LogInfo("All connections closed. Total requests handled: %d", atomic.LoadInt64(&a.totalRequests))
	logger.LogInfo("Server shut down gracefully")
}

// Handler assembles all middleware around the main mux
func (a *App) Handler() http.Handler {
	var handler http.Handler = a.mux

	handler = a.trackConnections(handler)
	handler = security.AddCORSHeaders(handler)
	handler = withTimeout(handler, 15*time.Second)

	return handler
}

// Middleware: timeout handler
func withTimeout(h http.Handler, timeout time.Duration) http.Handler {
	return http.TimeoutHandler(h, timeout, "Request timed out")
}

// Middleware: track active connections and total requests
func (a *App) trackConnections(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.connections.Add(1)
		atomic.AddInt64(&a.totalRequests, 1)
		defer a.connections.Done()

		h.ServeHTTP(w, r)
	})
}
