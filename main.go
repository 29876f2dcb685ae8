// Command micromouse starts the micromouse maze-run server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing the REST API, live run events over WebSocket, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Sessions are persisted to a directory or, with -redis-addr, to Redis. Pass
// results are recorded in a SQLite database. Optional ngrok tunneling exposes the
// server during development.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/redis/go-redis/v9"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/micromouse/api"
	"github.com/wricardo/micromouse/game/config"
	"github.com/wricardo/micromouse/game/history"
	"github.com/wricardo/micromouse/game/service"
	"github.com/wricardo/micromouse/game/session"
	"github.com/wricardo/micromouse/transport/mcp"
	"github.com/wricardo/micromouse/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Micromouse Server"
)

// Configuration flags control how the server starts and which services are enabled.
var (
	port         = flag.Int("port", 8080, "HTTP server port")
	host         = flag.String("host", "localhost", "HTTP server host")
	configDir    = flag.String("config-dir", envDefault("CONFIG_DIR", "configs"), "Directory containing maze configurations")
	sessionsDir  = flag.String("sessions-dir", envDefault("SESSIONS_DIR", "sessions"), "Directory for persisted sessions")
	historyDB    = flag.String("history-db", envDefault("HISTORY_DB", "history.db"), "SQLite database for pass history (empty disables)")
	redisAddr    = flag.String("redis-addr", envDefault("REDIS_ADDR", ""), "Redis address for session persistence (overrides -sessions-dir)")
	sessionTTL   = flag.Duration("session-ttl", 24*time.Hour, "Evict sessions not accessed for this long")
	debug        = flag.Bool("debug", false, "Enable debug logging")
	version      = flag.Bool("version", false, "Show version information")
	ngrokEnabled = flag.Bool("ngrok", false, "Enable ngrok tunnel")
	ngrokAuth    = flag.String("ngrok-auth", "", "Ngrok auth token (or use NGROK_AUTHTOKEN env var)")
	ngrokDomain  = flag.String("ngrok-domain", "", "Custom ngrok domain (optional)")
)

// envDefault returns the environment variable key, or fallback when it is unset.
func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] [MODE]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "%s v%s\n\n", AppName, Version)
		fmt.Fprintf(os.Stderr, "Available modes:\n")
		fmt.Fprintf(os.Stderr, "  server, http     Run HTTP server with API, WebSocket, and MCP endpoint (default)\n")
		fmt.Fprintf(os.Stderr, "  stdio-mcp        Run MCP stdio server with internal HTTP server\n")
		fmt.Fprintf(os.Stderr, "  mcp-stdio, mcp   Aliases for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                              # Run HTTP server on default port 8080\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -redis-addr localhost:6379   # Keep sessions in Redis\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s stdio-mcp                    # Run MCP stdio server\n", os.Args[0])
	}
}

// main parses flags, initializes services, and starts the selected mode.
func main() {
	// Load .env file if it exists
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
	mode := "server"
	if len(args) > 0 {
		mode = args[0]
	}

	log.Printf("Starting %s v%s (mode: %s)", AppName, Version, mode)

	hub := websocket.NewHub()
	go hub.Run()

	svcs, err := initializeServices(hub)
	if err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}
	defer svcs.Close()

	switch mode {
	case "stdio-mcp", "mcp-stdio", "mcp":
		runStdioMCPWithInternalServer(svcs.maze, hub)

	case "server", "http":
		runHTTPServer(svcs.maze, hub)

	default:
		log.Fatalf("Unknown mode: %s. Use 'server' (default) or 'stdio-mcp'", mode)
	}
}

// services holds what initializeServices wired so it can be shut down in order.
type services struct {
	maze     service.MazeService
	sessions *session.Manager
	history  *history.Store
	redis    *redis.Client
	hub      *websocket.Hub
}

// Close saves every session and releases the stores.
func (s *services) Close() {
	if err := s.sessions.SaveAllSessions(); err != nil {
		log.Printf("Warning: %v", err)
	}
	if s.hub != nil {
		s.hub.Stop()
	}
	if s.history != nil {
		if err := s.history.Close(); err != nil {
			log.Printf("Warning: Failed to close history database: %v", err)
		}
	}
	if s.redis != nil {
		s.redis.Close()
	}
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled (via flag or environment), it also provisions a public tunnel.
func runHTTPServer(mazeService service.MazeService, hub *websocket.Hub) {
	apiServer := api.NewServer(mazeService, hub)

	addr := fmt.Sprintf("%s:%d", *host, *port)
	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr))

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", mcpHandler(mcpClient))

	httpServer := &http.Server{
		Addr:        addr,
		Handler:     mainRouter,
		ReadTimeout: 15 * time.Second,
		// Explore requests on large mazes run many passes
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Printf("HTTP server listening on %s", addr)
		log.Printf("REST API: http://%s/api", addr)
		log.Printf("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	ngrokShouldRun := *ngrokEnabled
	if envEnabled := os.Getenv("NGROK_ENABLED"); envEnabled == "true" || envEnabled == "1" {
		ngrokShouldRun = true
	}

	if ngrokShouldRun {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, mainRouter)
		}()
	}

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

// mcpHandler answers single JSON-RPC MCP messages posted to /mcp.
func mcpHandler(client *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := client.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// runNgrokTunnel serves handler on a public ngrok endpoint until ctx is done.
func runNgrokTunnel(ctx context.Context, handler http.Handler) {
	authToken := *ngrokAuth
	if authToken == "" {
		authToken = envDefault("NGROK_AUTHTOKEN", os.Getenv("NGROK_AUTH_TOKEN"))
	}
	if authToken == "" {
		log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
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
	log.Printf("  WebSocket (ngrok): %s/ws?session=<session_id>", ngrokURL)
	log.Printf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	go func() {
		<-ctx.Done()
		tun.Close()
	}()

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}

// newPersistence picks Redis when an address is configured, else the sessions directory.
func newPersistence(configManager *config.Manager) (session.SessionPersistence, *redis.Client, error) {
	if *redisAddr == "" {
		persistence, err := session.NewFilePersistence(*sessionsDir, configManager)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create session persistence: %w", err)
		}
		return persistence, nil, nil
	}

	client := redis.NewClient(&redis.Options{Addr: *redisAddr})
	persistence := session.NewRedisPersistence(client, 0, configManager)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := persistence.Ping(ctx); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", *redisAddr, err)
	}
	log.Printf("Persisting sessions in redis at %s", *redisAddr)
	return persistence, client, nil
}

// initializeServices wires the config, session and history stores into the maze service.
// It also starts background routines that evict stale sessions.
func initializeServices(hub *websocket.Hub) (*services, error) {
	configManager, err := config.NewManager(*configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	persistence, redisClient, err := newPersistence(configManager)
	if err != nil {
		return nil, err
	}

	sessionManager := session.NewManagerWithPersistence(persistence)
	if err := sessionManager.LoadPersistedSessions(); err != nil {
		log.Printf("Warning: Failed to load persisted sessions: %v", err)
	}

	svcs := &services{sessions: sessionManager, redis: redisClient, hub: hub}
	opts := []service.Option{}
	if hub != nil {
		opts = append(opts, service.WithEventSink(hub))
	}
	if *historyDB != "" {
		store, err := history.Open(*historyDB)
		if err != nil {
			if redisClient != nil {
				redisClient.Close()
			}
			return nil, fmt.Errorf("failed to open history database: %w", err)
		}
		svcs.history = store
		opts = append(opts, service.WithHistory(store))
	}

	svcs.maze = service.NewMazeService(sessionManager, configManager, opts...)

	go sessionCleanupRoutine(sessionManager)
	go persistenceSyncRoutine(sessionManager, persistence)

	return svcs, nil
}

// sessionCleanupRoutine periodically evicts sessions that have not been accessed
// within the retention window. Evicted sessions stay in persistence.
func sessionCleanupRoutine(manager *session.Manager) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		removed := manager.CleanupExpiredSessions(*sessionTTL)
		if removed > 0 {
			log.Printf("Evicted %d idle sessions", removed)
		}
	}
}

// persistenceSyncRoutine removes sessions from memory when their stored copy was deleted.
func persistenceSyncRoutine(manager *session.Manager, persistence session.SessionPersistence) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		pruned := 0
		for _, sess := range manager.List() {
			if !persistence.Exists(sess.ID) {
				if err := manager.DeleteFromMemory(sess.ID); err == nil {
					pruned++
					log.Printf("Pruned session %s from memory (stored copy deleted)", sess.ID)
				}
			}
		}

		if pruned > 0 {
			log.Printf("Persistence sync: pruned %d orphaned sessions from memory", pruned)
		}
	}
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It tries to reuse an external API at http://localhost:8080; if unavailable, it
// starts an internal HTTP API bound to a random loopback port and targets that.
func runStdioMCPWithInternalServer(mazeService service.MazeService, hub *websocket.Hub) {
	externalURL := "http://localhost:8080"
	baseURL := externalURL
	log.Printf("Checking for external API server at %s...", externalURL)

	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/api/health")
	if err == nil && resp.StatusCode < 500 {
		resp.Body.Close()
		log.Printf("External API server found at %s, using it for MCP", externalURL)
	} else {
		log.Printf("No external API server found, starting internal HTTP server")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			log.Fatalf("Failed to get available port: %v", err)
		}
		internalAddr := listener.Addr().String()
		log.Printf("Starting internal HTTP server on %s for MCP stdio", internalAddr)

		httpServer := &http.Server{Handler: api.NewServer(mazeService, hub)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Printf("Internal HTTP server error: %v", err)
			}
		}()
		baseURL = fmt.Sprintf("http://%s", internalAddr)
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Printf("MCP stdio server ready (API at %s)", baseURL)

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		log.Fatalf("MCP stdio server error: %v", err)
	}
}
