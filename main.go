// Command duelgrid starts the matchmaking and game server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing the REST API, WebSocket gameplay, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs the MCP inspection server over stdio against the same game service
//
// Flags control host/port, debug logging, version output, in-memory dev
// mode, and optional ngrok tunneling for easy external access during
// development.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/duelgrid/duelgrid/api"
	"github.com/duelgrid/duelgrid/auth"
	"github.com/duelgrid/duelgrid/config"
	"github.com/duelgrid/duelgrid/game/queue"
	"github.com/duelgrid/duelgrid/game/service"
	"github.com/duelgrid/duelgrid/game/session"
	"github.com/duelgrid/duelgrid/game/sweep"
	"github.com/duelgrid/duelgrid/transport/mcp"
	"github.com/duelgrid/duelgrid/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "duelgrid server"
)

// Configuration flags control how the server starts and which services are enabled.
var (
	port         = flag.Int("port", 8080, "HTTP server port")
	host         = flag.String("host", "localhost", "HTTP server host")
	debug        = flag.Bool("debug", false, "Enable debug logging")
	version      = flag.Bool("version", false, "Show version information")
	dev          = flag.Bool("dev", false, "Development mode: in-memory persistence and query-parameter identity")
	ngrokEnabled = flag.Bool("ngrok", false, "Enable ngrok tunnel")
	ngrokAuth    = flag.String("ngrok-auth", "", "Ngrok auth token (or use NGROK_AUTHTOKEN env var)")
	ngrokDomain  = flag.String("ngrok-domain", "", "Custom ngrok domain (optional)")
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] [MODE]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "%s v%s\n\n", AppName, Version)
		fmt.Fprintf(os.Stderr, "Available modes:\n")
		fmt.Fprintf(os.Stderr, "  server, http     Run HTTP server with API, WebSocket, and MCP endpoint (default)\n")
		fmt.Fprintf(os.Stderr, "  stdio-mcp        Run MCP inspection server on stdio\n")
		fmt.Fprintf(os.Stderr, "  mcp              Alias for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                    # Run HTTP server on default port 8080\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -dev -port 9090    # Run without postgres on port 9090\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s stdio-mcp          # Run MCP inspection server on stdio\n", os.Args[0])
	}
}

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	flag.Parse()

	if *version {
		fmt.Printf("%s v%s\n", AppName, Version)
		os.Exit(0)
	}

	if *debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}

	args := flag.Args()
	mode := "server" // default
	if len(args) > 0 {
		mode = args[0]
	}

	log.Printf("Starting %s v%s (mode: %s)", AppName, Version, mode)

	cfg := config.Load()

	gameService, err := initializeServices(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	switch mode {
	case "stdio-mcp", "mcp-stdio", "mcp":
		runStdioMCP(gameService, cfg)

	case "server", "http":
		runHTTPServer(gameService, cfg)

	default:
		log.Fatalf("Unknown mode: %s. Use 'server' (default) or 'stdio-mcp'", mode)
	}
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, the
// expiry sweeper, and the /mcp endpoint. If ngrok is enabled (via flag or
// environment), it also provisions a public tunnel.
func runHTTPServer(gameService service.GameService, cfg *config.Config) {
	hub := websocket.NewHub(gameService)

	var resolver auth.Resolver = auth.NewJWTResolver(cfg.JWTSecret)
	if *dev {
		resolver = auth.QueryResolver{}
		log.Println("Development mode: identities taken from query parameters")
	}

	inspector := mcp.NewInspector(gameService)
	apiServer := api.NewServer(gameService, hub, resolver, inspector)

	sweeper := sweep.New(gameService, hub, cfg.SweepInterval)
	if err := sweeper.Start(); err != nil {
		log.Fatalf("Failed to start expiry sweeper: %v", err)
	}
	defer sweeper.Stop()

	addr := fmt.Sprintf("%s:%d", *host, *port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      apiServer,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Setup graceful shutdown context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Printf("HTTP server listening on %s", addr)
		log.Printf("REST API: http://%s/api", addr)
		log.Printf("WebSocket: ws://%s/ws", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Check if ngrok should be enabled (from flag or environment)
	ngrokShouldRun := *ngrokEnabled
	if !ngrokShouldRun {
		if envEnabled := os.Getenv("NGROK_ENABLED"); envEnabled == "true" || envEnabled == "1" {
			ngrokShouldRun = true
		}
	}

	if ngrokShouldRun {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, apiServer)
		}()
	}

	// Wait for shutdown signal
	sig := <-stop
	log.Printf("Received signal: %v. Shutting down...", sig)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("Server stopped")
}

// runNgrokTunnel serves the API through a public ngrok endpoint.
func runNgrokTunnel(ctx context.Context, handler http.Handler) {
	// Get auth token from flag or environment
	authToken := *ngrokAuth
	if authToken == "" {
		authToken = os.Getenv("NGROK_AUTHTOKEN")
	}
	if authToken == "" {
		log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN env var)")
		return
	}

	log.Println("Starting ngrok tunnel...")

	domain := *ngrokDomain
	if domain == "" {
		domain = os.Getenv("NGROK_DOMAIN")
	}

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.Printf("Using custom ngrok domain: %s", domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}
	defer func() {
		if err := tun.Close(); err != nil {
			log.Printf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	ngrokURL := tun.URL()
	log.Printf("Ngrok tunnel established: %s", ngrokURL)
	log.Printf("  REST API (ngrok): %s/api", ngrokURL)
	log.Printf("  WebSocket (ngrok): %s/ws", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}

// runStdioMCP serves the inspection tools over stdio. The sweeper still
// runs so clocks settle while an agent is watching.
func runStdioMCP(gameService service.GameService, cfg *config.Config) {
	// Stdio carries the protocol, so logs must go to stderr
	log.SetOutput(os.Stderr)

	sweeper := sweep.New(gameService, nil, cfg.SweepInterval)
	if err := sweeper.Start(); err != nil {
		log.Fatalf("Failed to start expiry sweeper: %v", err)
	}
	defer sweeper.Stop()

	inspector := mcp.NewInspector(gameService)
	log.Println("MCP stdio server ready")
	if err := mcpserver.ServeStdio(inspector.Server()); err != nil {
		log.Fatalf("MCP stdio server failed: %v", err)
	}
}

// initializeServices wires persistence, the session store, matchmaking,
// and the game service, recovering persisted sessions on startup.
func initializeServices(cfg *config.Config) (service.GameService, error) {
	var persistence session.Persistence
	if *dev {
		log.Println("Development mode: using in-memory persistence")
		persistence = session.NewMemoryPersistence()
	} else {
		gp, err := session.OpenGorm(cfg.DSN())
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres: %w", err)
		}
		persistence = gp
	}

	store := session.NewStore()

	// Recover persisted sessions so matches survive a restart. Sessions
	// whose clock ran out while the server was down settle on the first
	// sweep after a player or the sweeper looks at them.
	recovered, err := persistence.LoadSessions()
	if err != nil {
		log.Printf("Warning: Failed to load persisted sessions: %v", err)
	} else {
		for _, s := range recovered {
			store.Put(s)
		}
		if len(recovered) > 0 {
			log.Printf("Recovered %d persisted session(s)", len(recovered))
		}
	}

	return service.New(store, persistence, queue.NewMatchmaker(), cfg.ClockBudget), nil
}
