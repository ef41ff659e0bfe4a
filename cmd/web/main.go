package main

import (
	_ "embed"
	"html/template"
	"net/http"
	"os"

	"github.com/charmbracelet/log"

	"github.com/tomz197/sshtris/internal/config"
)

//go:embed index.html
var htmlPage string

var page = template.Must(template.New("index").Parse(htmlPage))

type pageData struct {
	SSHHost string
	SSHPort string
}

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "web",
	})

	var cfg config.Web
	if err := config.ParseEnv(&cfg); err != nil {
		logger.Fatal("invalid configuration", "err", err)
	}
	logger.SetLevel(config.Level(cfg.LogLevel))

	data := pageData{SSHHost: cfg.SSHDisplayHost, SSHPort: cfg.SSHDisplayPort}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := page.Execute(w, data); err != nil {
			logger.Error("render page", "err", err)
		}
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	logger.Info("starting web server", "addr", "http://"+cfg.Addr())
	if err := http.ListenAndServe(cfg.Addr(), mux); err != nil {
		logger.Fatal("server error", "err", err)
	}
}
