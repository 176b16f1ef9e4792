package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"pvhealth-cloud/internal/audit"
	"pvhealth-cloud/internal/auth"
	"pvhealth-cloud/internal/degradation"
	"pvhealth-cloud/internal/ingest"
	"pvhealth-cloud/internal/observability/metrics"
	panelapp "pvhealth-cloud/internal/panel/application"
	panel "pvhealth-cloud/internal/panel/domain"
	panelmemory "pvhealth-cloud/internal/panel/infrastructure/memory"
	panelpostgres "pvhealth-cloud/internal/panel/infrastructure/postgres"
	panelhttp "pvhealth-cloud/internal/panel/interfaces/http"
	profileapp "pvhealth-cloud/internal/profile/application"
	profileinterfaces "pvhealth-cloud/internal/profile/interfaces"
	profilehttp "pvhealth-cloud/internal/profile/interfaces/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	var repo panel.Repository
	var auditLogger audit.Logger
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("db open error: %v", err)
		}
		defer db.Close()

		if err := db.Ping(); err != nil {
			logger.Fatalf("db ping error: %v", err)
		}
		repo = panelpostgres.NewPanelRepository(db)
		auditLogger = audit.NewRepository(db)
	} else {
		logger.Printf("no DATABASE_URL configured, using in-memory panel store")
		repo = panelmemory.NewPanelRepository()
	}

	metrics.Init()

	estimatorCfg, err := profileapp.LoadEstimatorConfig()
	if err != nil {
		logger.Fatalf("estimator config error: %v", err)
	}
	estimator, err := degradation.NewEstimator(degradation.WithReferenceIrradiance(estimatorCfg.ReferenceIrradianceWPerM2))
	if err != nil {
		logger.Fatalf("estimator error: %v", err)
	}

	panelService, err := panelapp.NewPanelService(repo, panelapp.SystemClock{})
	if err != nil {
		logger.Fatalf("panel service error: %v", err)
	}
	profileService, err := profileapp.NewProfileService(repo, estimator, profileapp.SystemClock{})
	if err != nil {
		logger.Fatalf("profile service error: %v", err)
	}

	panelHandler, err := panelhttp.NewHandler(panelService, auditLogger)
	if err != nil {
		logger.Fatalf("panel handler error: %v", err)
	}
	reportMeta := profileinterfaces.ReportMeta{Title: estimatorCfg.ReportTitle, Issuer: estimatorCfg.ReportIssuer}
	profileHandler, err := profilehttp.NewHandler(profileService, repo, reportMeta, auditLogger)
	if err != nil {
		logger.Fatalf("profile handler error: %v", err)
	}
	ingestHandler, err := ingest.NewHandler(panelService, profileService, logger)
	if err != nil {
		logger.Fatalf("ingest handler error: %v", err)
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, []string{"/ingest/"})
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/ingest/field-report", ingestHandler)
	mux.Handle("/api/v1/panels", panelHandler)
	mux.HandleFunc("/api/v1/panels/", func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/profiles") {
			profileHandler.ServeHTTP(w, r)
			return
		}
		panelHandler.ServeHTTP(w, r)
	})
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s (reference irradiance %.0f W/m2)", cfg.HTTPAddr, estimator.ReferenceIrradiance())
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL string
	HTTPAddr    string
	JWTSecret   string
}

func loadConfig() config {
	cfg := config{
		DatabaseURL: getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:    getenvDefault("HTTP_ADDR", ":8080"),
		JWTSecret:   getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
