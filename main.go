package main

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"roweditor/pkg/api"
	"roweditor/pkg/config"
	"roweditor/pkg/sheets"
)

func main() {
	verbose := flag.Bool("v", false, "Verbose logging")
	addr := flag.String("addr", "", "Listen address (overrides LISTEN_ADDRESS)")

	flag.Parse()
	if *verbose {
		// Set the log level to debug
		log.SetLevel(log.DebugLevel)
	}
	// Set the log format to include a leading timestamp in ISO8601 format
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warnf("Could not read .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if *addr != "" {
		cfg.ListenAddress = *addr
	}

	router := api.GetRouter(newHandler(cfg))
	go startServer(cfg.ListenAddress, router)

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)

	// In all cases, just exit and let the container restart from scratch.
	<-signalChan
	log.Info("Signalled, shutting down")
}

func newHandler(cfg *config.Config) *api.Handler {
	return &api.Handler{
		Proxy: &api.Proxy{
			Auth: &api.SupabaseAuthenticator{
				BaseURL:    cfg.SupabaseURL,
				AnonKey:    cfg.SupabaseAnonKey,
				HTTPClient: http.DefaultClient,
			},
			HTTPClient:   &http.Client{Timeout: cfg.DownstreamTimeout},
			AllowedHosts: cfg.ScriptAllowedHosts,
			ScriptToken:  cfg.ScriptToken,
		},
		Loader: sheets.NewLoader(cfg.ExportURL),
	}
}

func startServer(addr string, router http.Handler) {
	server := http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
	}
	log.Infof("listening for HTTP on: %s", server.Addr)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal("ListenAndServeError: ", err)
	}
}
