// Package main is the entry point for the wallet flow analyzer, an HTTP
// service that aggregates a wallet's transaction flow across chains and
// reports net balances in native units and USD.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/yourorg/walletflow/internal/analyze"
	"github.com/yourorg/walletflow/internal/circuitbreaker"
	"github.com/yourorg/walletflow/internal/config"
	"github.com/yourorg/walletflow/internal/model"
	"github.com/yourorg/walletflow/internal/otelsetup"
	"github.com/yourorg/walletflow/internal/price"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// startTime records when the service was initialized for uptime reporting
var startTime = time.Now()

// Server represents the analyzer HTTP server instance
type Server struct {
	cfg     config.Config
	service *analyze.Service
	breaker *circuitbreaker.Breaker
	limiter *rate.Limiter
	metrics *serverMetrics
	server  *http.Server
}

// serverMetrics holds Prometheus metrics for the server
type serverMetrics struct {
	requestCounter  *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	providerErrors  *prometheus.CounterVec
	breakerState    prometheus.Gauge
}

// registerMetrics sets up Prometheus metrics collection
func registerMetrics() *serverMetrics {
	m := &serverMetrics{
		requestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletflow_requests_total",
				Help: "Total number of analysis requests processed",
			},
			[]string{"status", "coin"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "walletflow_request_duration_seconds",
				Help:    "Analysis request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"status"},
		),
		providerErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletflow_provider_errors_total",
				Help: "Total number of upstream provider errors",
			},
			[]string{"provider"},
		),
		breakerState: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "walletflow_circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
			},
		),
	}

	prometheus.MustRegister(
		m.requestCounter,
		m.requestDuration,
		m.providerErrors,
		m.breakerState,
	)

	return m
}

// main is the entry point for the application
func main() {
	// Optional .env for local development; real deployments use the
	// environment directly
	_ = godotenv.Load()

	setupLogging()

	cfg := config.Load()
	if cfg.MoralisAPIKey == "" {
		logrus.Warn("MORALIS_API_KEY not set; EVM and Solana provider calls will be rejected upstream")
	}

	shutdownTracer := otelsetup.InitTracer(cfg.OtelEndpoint)
	defer shutdownTracer()

	cache := price.NewCache(cfg.PriceCacheTTL)
	resolver := price.NewResolver(cache, price.Sources(cfg)...)
	service := analyze.NewService(cfg, resolver)

	server := NewServer(cfg, service)
	server.Start()
}

// setupLogging configures the logging for the application
func setupLogging() {
	logFormat := strings.ToLower(os.Getenv("LOG_FORMAT"))
	logLevel := strings.ToLower(os.Getenv("LOG_LEVEL"))

	switch logFormat {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	switch logLevel {
	case "debug":
		logrus.SetLevel(logrus.DebugLevel)
	case "info":
		logrus.SetLevel(logrus.InfoLevel)
	case "warn", "warning":
		logrus.SetLevel(logrus.WarnLevel)
	case "error":
		logrus.SetLevel(logrus.ErrorLevel)
	default:
		logrus.SetLevel(logrus.InfoLevel)
	}

	logrus.Info("Logging configured")
}

// NewServer creates a new server instance with the analysis service,
// circuit breaker and rate limiter wired in
func NewServer(cfg config.Config, service *analyze.Service) *Server {
	metrics := registerMetrics()

	breaker := circuitbreaker.New(circuitbreaker.Options{
		FailureThreshold: cfg.BreakerThreshold,
		Cooldown:         cfg.BreakerCooldown,
		OnTrip: func(reason string) {
			logrus.Warnf("Transaction provider circuit opened: %s", reason)
		},
	})

	logrus.WithFields(logrus.Fields{
		"port":              cfg.Port,
		"price_cache_ttl":   cfg.PriceCacheTTL,
		"request_timeout":   cfg.RequestTimeout,
		"default_tx_limit":  cfg.DefaultTxLimit,
		"rate_limit_rps":    cfg.RateLimitRPS,
		"breaker_threshold": cfg.BreakerThreshold,
	}).Info("Server initialized")

	return &Server{
		cfg:     cfg,
		service: service,
		breaker: breaker,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst),
		metrics: metrics,
	}
}

// Start begins the HTTP server and sets up graceful shutdown
func (s *Server) Start() {
	mux := http.NewServeMux()
	mux.HandleFunc("/analyze", s.handleAnalyze)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/status", s.handleStatus)
	mux.Handle("/metrics", promhttp.Handler())

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "Accept"},
	})

	s.server = &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      corsHandler.Handler(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.Infof("Server starting on port %s", s.cfg.Port)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Error starting server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		logrus.Fatalf("Server shutdown failed: %v", err)
	}

	logrus.Info("Server stopped")
}

// analyzeRequest is the wire shape of the analysis request. Limit is a
// pointer so an omitted field gets the configured default while an
// explicit 0 still means "all records".
type analyzeRequest struct {
	Wallet string `json:"wallet"`
	Coin   string `json:"coin"`
	Limit  *int   `json:"limit"`
}

// handleAnalyze processes a wallet analysis request. A failed analysis is
// converted into an error response; it never takes down the process.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if r.Method != http.MethodPost {
		s.errorResponse(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}

	if !s.limiter.Allow() {
		s.errorResponse(w, http.StatusTooManyRequests, "rate limit exceeded", "")
		return
	}

	if !s.breaker.Allow() {
		s.updateBreakerGauge()
		s.errorResponse(w, http.StatusServiceUnavailable,
			"transaction provider temporarily unavailable, please retry later", "")
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body", "")
		return
	}

	limit := s.cfg.DefaultTxLimit
	if req.Limit != nil {
		limit = *req.Limit
	}

	ctx, span := otelsetup.Tracer().Start(r.Context(), "analyze")
	defer span.End()

	result, err := s.service.Analyze(ctx, model.AnalyzeRequest{
		Wallet: req.Wallet,
		Coin:   req.Coin,
		Limit:  limit,
	})
	if err != nil {
		span.RecordError(err)
		s.analyzeError(w, req.Coin, err)
		s.metrics.requestDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		return
	}

	s.breaker.RecordSuccess()
	s.updateBreakerGauge()
	s.metrics.requestCounter.WithLabelValues("success", strings.ToUpper(req.Coin)).Inc()
	s.metrics.requestDuration.WithLabelValues("success").Observe(time.Since(start).Seconds())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// analyzeError maps an analysis failure onto an HTTP status, recording
// provider failures with the circuit breaker and rewriting rate-limit
// errors into a user-facing retry message.
func (s *Server) analyzeError(w http.ResponseWriter, coin string, err error) {
	var unsupported *model.UnsupportedAssetError
	var providerErr *model.ProviderError

	switch {
	case errors.Is(err, model.ErrInvalidInput):
		s.errorResponse(w, http.StatusBadRequest, err.Error(), coin)
	case errors.As(err, &unsupported):
		s.errorResponse(w, http.StatusBadRequest, unsupported.Error(), coin)
	case model.IsRateLimited(err):
		if errors.As(err, &providerErr) {
			s.metrics.providerErrors.WithLabelValues(providerErr.Provider).Inc()
		}
		s.breaker.RecordFailure(err.Error())
		s.updateBreakerGauge()
		s.errorResponse(w, http.StatusTooManyRequests,
			"provider under high demand, please retry in a moment", coin)
	case errors.As(err, &providerErr):
		s.metrics.providerErrors.WithLabelValues(providerErr.Provider).Inc()
		s.breaker.RecordFailure(err.Error())
		s.updateBreakerGauge()
		s.errorResponse(w, http.StatusBadGateway, err.Error(), coin)
	default:
		s.errorResponse(w, http.StatusInternalServerError, err.Error(), coin)
	}
}

// errorResponse returns a formatted error response
func (s *Server) errorResponse(w http.ResponseWriter, statusCode int, errorMsg, coin string) {
	logrus.Warn(errorMsg)

	s.metrics.requestCounter.WithLabelValues("error", strings.ToUpper(coin)).Inc()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": errorMsg})
}

// handleHealth is a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":    "OK",
		"version":   "1.0.0",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleStatus provides detailed service status information
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":        "operational",
		"uptime":        time.Since(startTime).String(),
		"version":       "1.0.0",
		"circuit_state": s.breaker.State().String(),
		"configuration": map[string]interface{}{
			"price_cache_ttl":  s.cfg.PriceCacheTTL.String(),
			"default_tx_limit": s.cfg.DefaultTxLimit,
			"request_timeout":  s.cfg.RequestTimeout.String(),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}

// updateBreakerGauge mirrors the breaker state into Prometheus.
func (s *Server) updateBreakerGauge() {
	s.metrics.breakerState.Set(float64(s.breaker.State()))
}
