// Command valor-lanes starts the Legends of Valor game server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Settings come from the environment (and a .env file); flags override them.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
	"github.com/wricardo/valor-lanes/api"
	"github.com/wricardo/valor-lanes/game/catalog"
	"github.com/wricardo/valor-lanes/game/config"
	"github.com/wricardo/valor-lanes/game/service"
	"github.com/wricardo/valor-lanes/game/session"
	"github.com/wricardo/valor-lanes/pkg/logger"
	"github.com/wricardo/valor-lanes/transport/mcp"
	"github.com/wricardo/valor-lanes/transport/websocket"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Legends of Valor Server"
)

var log = logger.Component("main")

// registerFlags binds command-line flags onto settings so that flags win
// over environment values
func registerFlags(fset *flag.FlagSet, s *config.Settings) *bool {
	fset.IntVar(&s.Port, "port", s.Port, "HTTP server port")
	fset.StringVar(&s.Host, "host", s.Host, "HTTP server host")
	fset.StringVar(&s.ConfigDir, "config-dir", s.ConfigDir, "Directory containing game configurations")
	fset.StringVar(&s.CatalogPath, "catalog", s.CatalogPath, "YAML hero/monster catalog (embedded default when empty)")
	fset.DurationVar(&s.SessionTTL, "session-ttl", s.SessionTTL, "Remove sessions idle for longer than this")
	fset.StringVar(&s.LogLevel, "log-level", s.LogLevel, "Log level (debug, info, warn, error)")
	fset.StringVar(&s.LogFormat, "log-format", s.LogFormat, "Log format (text or json)")
	fset.BoolVar(&s.Ngrok.Enabled, "ngrok", s.Ngrok.Enabled, "Enable ngrok tunnel")
	fset.StringVar(&s.Ngrok.AuthToken, "ngrok-auth", s.Ngrok.AuthToken, "Ngrok auth token (or use NGROK_AUTHTOKEN env var)")
	fset.StringVar(&s.Ngrok.Domain, "ngrok-domain", s.Ngrok.Domain, "Custom ngrok domain (optional)")
	return fset.Bool("version", false, "Show version information")
}

func usage(fset *flag.FlagSet) func() {
	return func() {
		out := fset.Output()
		fmt.Fprintf(out, "Usage: %s [OPTIONS] [MODE]\n\n", os.Args[0])
		fmt.Fprintf(out, "%s v%s\n\n", AppName, Version)
		fmt.Fprintf(out, "Available modes:\n")
		fmt.Fprintf(out, "  server, http     Run HTTP server with API, WebSocket, and MCP endpoint (default)\n")
		fmt.Fprintf(out, "  stdio-mcp        Run MCP stdio server with internal HTTP server\n")
		fmt.Fprintf(out, "  mcp-stdio, mcp   Aliases for stdio-mcp\n")
		fmt.Fprintf(out, "\nOptions:\n")
		fset.PrintDefaults()
		fmt.Fprintf(out, "\nExamples:\n")
		fmt.Fprintf(out, "  %s                    # Run HTTP server on default port 8080\n", os.Args[0])
		fmt.Fprintf(out, "  %s -port 9090         # Run HTTP server on port 9090\n", os.Args[0])
		fmt.Fprintf(out, "  %s stdio-mcp          # Run MCP stdio server\n", os.Args[0])
	}
}

// main loads settings, initializes services, and starts the selected mode.
func main() {
	// Load .env file if it exists (ignore error if not found)
	envErr := godotenv.Load()

	settings, err := config.LoadSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid environment: %v\n", err)
		os.Exit(2)
	}

	fset := flag.CommandLine
	showVersion := registerFlags(fset, settings)
	fset.Usage = usage(fset)
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s v%s\n", AppName, Version)
		os.Exit(0)
	}

	// Determine mode from command
	mode := "server"
	if args := flag.Args(); len(args) > 0 {
		mode = args[0]
	}

	// stdout carries the MCP protocol in stdio mode
	logOut := io.Writer(os.Stdout)
	if isStdioMode(mode) {
		logOut = os.Stderr
	}
	logger.Configure(settings.LogLevel, settings.LogFormat, logOut)

	switch {
	case envErr == nil:
		log.Info("Loaded environment variables from .env file")
	case !errors.Is(envErr, fs.ErrNotExist):
		log.WithError(envErr).Warn("Error loading .env file")
	}

	log.WithFields(logrus.Fields{"version": Version, "mode": mode}).Infof("Starting %s", AppName)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	gameService, sessions, err := initializeServices(settings)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize services")
	}
	go sessionCleanupRoutine(ctx, sessions, settings.SessionTTL)

	switch {
	case isStdioMode(mode):
		runStdioMCPWithInternalServer(ctx, gameService, settings)

	case mode == "server" || mode == "http":
		runHTTPServer(ctx, gameService, settings)

	default:
		log.Fatalf("Unknown mode: %s. Use 'server' (default) or 'stdio-mcp'", mode)
	}
}

func isStdioMode(mode string) bool {
	return mode == "stdio-mcp" || mode == "mcp-stdio" || mode == "mcp"
}

// initializeServices loads the catalog and configs and wires the session
// manager into the game service
func initializeServices(settings *config.Settings) (service.GameService, *session.Manager, error) {
	cat, err := loadCatalog(settings.CatalogPath)
	if err != nil {
		return nil, nil, err
	}

	configManager, err := config.NewManager(settings.ConfigDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	sessionManager := session.NewManager(cat)
	return service.NewGameService(sessionManager, configManager), sessionManager, nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	cat, err := catalog.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog %s: %w", path, err)
	}
	log.WithField("path", path).Info("Loaded character catalog")
	return cat, nil
}

// sessionCleanupRoutine periodically removes sessions idle for longer
// than ttl until ctx is done
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	interval := ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(ttl); removed > 0 {
				log.WithField("removed", removed).Info("Cleaned up expired sessions")
			}
		}
	}
}

// newMCPHandler serves single JSON-RPC messages over HTTP POST
func newMCPHandler(mcpClient *mcp.Client) http.HandlerFunc {
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

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// newRouter mounts the REST API at the root and the MCP endpoint at /mcp
func newRouter(apiServer *api.Server, mcpClient *mcp.Client) *http.ServeMux {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", newMCPHandler(mcpClient))
	return mainRouter
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled it also provisions a public tunnel.
func runHTTPServer(ctx context.Context, gameService service.GameService, settings *config.Settings) {
	hub := websocket.NewHub()
	go hub.Run(ctx)

	apiServer := api.NewServer(gameService, hub)

	addr := settings.Addr()
	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr))
	mainRouter := newRouter(apiServer, mcpClient)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.WithFields(logrus.Fields{
			"rest":      fmt.Sprintf("http://%s/api", addr),
			"websocket": fmt.Sprintf("ws://%s/ws?session=<session_id>", addr),
			"mcp":       fmt.Sprintf("http://%s/mcp", addr),
		}).Infof("HTTP server listening on %s", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	if settings.Ngrok.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, settings.Ngrok, mainRouter)
		}()
	}

	<-ctx.Done()
	log.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown error")
	}

	wg.Wait()
	log.Info("Server stopped")
}

// runNgrokTunnel serves handler through an ngrok endpoint until ctx is done
func runNgrokTunnel(ctx context.Context, settings config.NgrokSettings, handler http.Handler) {
	authToken := settings.AuthToken
	if authToken == "" {
		// Also support the underscore spelling
		authToken = os.Getenv("NGROK_AUTH_TOKEN")
	}
	if authToken == "" {
		log.Warn("Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	log.Info("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if settings.Domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(settings.Domain))
		log.WithField("domain", settings.Domain).Info("Using custom ngrok domain")
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.WithError(err).Error("Failed to start ngrok tunnel")
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.WithError(err).Warn("Failed to close ngrok tunnel")
		}
	}()

	ngrokURL := tun.URL()
	log.WithFields(logrus.Fields{
		"rest":      ngrokURL + "/api",
		"websocket": ngrokURL + "/ws?session=<session_id>",
		"mcp":       ngrokURL + "/mcp",
	}).Infof("Ngrok tunnel established: %s", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed && ctx.Err() == nil {
		log.WithError(err).Error("Ngrok server error")
	}
	log.Info("Ngrok tunnel closed")
}

// externalAPIAvailable reports whether an API server answers health checks
// at baseURL
func externalAPIAvailable(baseURL string) bool {
	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(baseURL + "/api/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It reuses an external API at the configured address when one answers;
// otherwise it starts an internal HTTP API on a random loopback port.
func runStdioMCPWithInternalServer(ctx context.Context, gameService service.GameService, settings *config.Settings) {
	externalURL := fmt.Sprintf("http://%s", settings.Addr())
	log.WithField("url", externalURL).Info("Checking for external API server")

	baseURL := externalURL
	if externalAPIAvailable(externalURL) {
		log.WithField("url", externalURL).Info("External API server found, using it for MCP")
	} else {
		log.Info("No external API server found, starting internal HTTP server")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			log.WithError(err).Fatal("Failed to get available port")
		}
		internalAddr := listener.Addr().String()

		hub := websocket.NewHub()
		go hub.Run(ctx)

		httpServer := &http.Server{Handler: api.NewServer(gameService, hub)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.WithError(err).Error("Internal HTTP server error")
			}
		}()
		defer httpServer.Close()

		baseURL = fmt.Sprintf("http://%s", internalAddr)
		log.WithField("addr", internalAddr).Info("Internal HTTP server started for MCP stdio")
	}

	mcpClient := mcp.NewClient(baseURL)
	log.WithField("api", baseURL).Info("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		log.WithError(err).Fatal("MCP stdio server error")
	}
}
