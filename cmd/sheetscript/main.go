package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"roweditor/pkg/api"
	"roweditor/pkg/config"
	"roweditor/pkg/sheets"
)

func main() {
	verbose := flag.Bool("v", false, "Verbose logging")

	flag.Parse()
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warnf("Could not read .env: %v", err)
	}

	cfg, err := config.LoadScript()
	if err != nil {
		log.Error(err)
		flag.Usage()
		os.Exit(1)
	}
	if cfg.Token == "" {
		log.Warn("SCRIPT_TOKEN is not set, any caller can write rows")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	writer, err := sheets.NewSheetClient(context.Background(), cfg.SpreadsheetID, cfg.SheetName, opts...)
	if err != nil {
		log.Fatalf("Failed to create Sheets client: %v", err)
	}

	server := http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           api.GetScriptRouter(&api.ScriptHandler{Writer: writer, Token: cfg.Token}),
		ReadHeaderTimeout: 2 * time.Second,
	}
	log.Infof("script endpoint listening on: %s (sheet %q)", server.Addr, cfg.SheetName)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal("ListenAndServeError: ", err)
	}
}
