// Package server exposes the loan engine over a JSON HTTP API.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iwvelando/loan-calculator/internal/config"
	"github.com/iwvelando/loan-calculator/internal/optimizer"
	"github.com/iwvelando/loan-calculator/internal/report"
	"github.com/iwvelando/loan-calculator/pkg/analysis"
	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/iwvelando/loan-calculator/pkg/loans"
	"github.com/iwvelando/loan-calculator/pkg/mathutil"
	"github.com/iwvelando/loan-calculator/pkg/metrics"
	"github.com/iwvelando/loan-calculator/pkg/output"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// errBadRequest marks failures caused by the request itself.
var errBadRequest = errors.New("bad request")

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
	calc          *loans.Calculator
	analyzer      *analysis.Analyzer
	runner        *optimizer.Runner
	cache         Cache
}

type errorResponse struct {
	Error string `json:"error"`
}

type loanRequest struct {
	loans.LoanParameters
	Method string `json:"method,omitempty"`
}

type prepaymentRequest struct {
	loans.LoanParameters
	Prepayment struct {
		Month  int             `json:"month"`
		Amount decimal.Decimal `json:"amount"`
		Method string          `json:"method"`
	} `json:"prepayment"`
}

type prepaymentResponse struct {
	Result  loans.PrepaymentResult `json:"result"`
	Benefit metrics.Benefit        `json:"benefit"`
}

type combinedRequest struct {
	Commercial    loans.LoanLeg `json:"commercial"`
	ProvidentFund loans.LoanLeg `json:"providentFund"`
	TermYears     int           `json:"termYears"`
	Method        string        `json:"method,omitempty"`
}

type sensitivityRequest struct {
	loans.LoanParameters
	analysis.SensitivitySweepConfig
}

type scenariosRequest struct {
	Scenarios []analysis.Scenario `json:"scenarios"`
}

type metricsRequest struct {
	loans.LoanParameters
	Method  string          `json:"method,omitempty"`
	Context metrics.Context `json:"context"`
}

type affordabilityRequest struct {
	loans.LoanParameters
	Method    string           `json:"method,omitempty"`
	Context   metrics.Context  `json:"context"`
	Optimizer optimizer.Config `json:"optimizer"`
}

type reportResponse struct {
	Report   *report.Report `json:"report"`
	CSV      string         `json:"csv"`
	Warnings []string       `json:"warnings,omitempty"`
	Duration string         `json:"duration"`
}

// computeFunc evaluates a request body into a response value.
type computeFunc func(ctx context.Context, body []byte) (interface{}, error)

// NewHandler constructs the HTTP handler serving the loan API. A nil cache
// disables response caching.
func NewHandler(logger *zap.Logger, maxUploadSize int64, version string, cache Cache) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:        logger,
		maxUploadSize: maxUploadSize,
		version:       trimmedVersion,
		calc:          loans.NewCalculator(logger),
		analyzer:      analysis.NewAnalyzer(logger, constants.DefaultBatchWorkers),
		runner:        optimizer.NewRunner(logger),
		cache:         cache,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/calculate", h.compute("server.handleCalculate", h.calculate))
	mux.HandleFunc("/api/prepayment", h.compute("server.handlePrepayment", h.prepayment))
	mux.HandleFunc("/api/combined", h.compute("server.handleCombined", h.combined))
	mux.HandleFunc("/api/sensitivity", h.compute("server.handleSensitivity", h.sensitivity))
	mux.HandleFunc("/api/scenarios", h.compute("server.handleScenarios", h.scenarios))
	mux.HandleFunc("/api/metrics", h.compute("server.handleMetrics", h.evaluateMetrics))
	mux.HandleFunc("/api/affordability", h.compute("server.handleAffordability", h.affordability))

	// Full configuration evaluation (file upload)
	mux.HandleFunc("/api/report", h.handleReport)

	mux.HandleFunc("/api/version", h.handleVersion)

	return mux
}

// compute wraps a pure endpoint: it reads the JSON body, serves cached
// responses and caches fresh ones.
func (h *handler) compute(op string, fn computeFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		start := time.Now()
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxUploadSize))
		if err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				h.respondError(w, http.StatusRequestEntityTooLarge,
					fmt.Sprintf("request exceeds limit of %d bytes", h.maxUploadSize), op)
				return
			}
			h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to read request: %v", err), op)
			return
		}

		key := CacheKey(r.URL.Path, bytes.TrimSpace(body))
		if h.cache != nil {
			if cached, ok := h.cache.Get(r.Context(), key); ok {
				h.logger.Info("request served from cache",
					zap.String("op", op),
					zap.Duration("duration", time.Since(start)),
				)
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("X-Cache", "HIT")
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write(cached)
				return
			}
		}

		result, err := fn(r.Context(), body)
		if err != nil {
			h.respondError(w, statusFor(err), err.Error(), op)
			return
		}

		encoded, err := json.Marshal(result)
		if err != nil {
			h.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to encode response: %v", err), op)
			return
		}
		encoded = append(encoded, '\n')

		if h.cache != nil {
			if err := h.cache.Set(r.Context(), key, encoded); err != nil {
				h.logger.Warn("failed to cache response",
					zap.String("op", op),
					zap.Error(err),
				)
			}
		}

		h.logger.Info("request computed",
			zap.String("op", op),
			zap.Duration("duration", time.Since(start)),
		)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "MISS")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(encoded)
	}
}

func decodeBody(body []byte, v interface{}) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return fmt.Errorf("%w: empty request body", errBadRequest)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: failed to decode request: %v", errBadRequest, err)
	}
	return nil
}

func parseMethod(value string) (loans.PaymentMethod, error) {
	method, err := loans.ParsePaymentMethod(value)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return method, nil
}

func (h *handler) calculate(_ context.Context, body []byte) (interface{}, error) {
	var req loanRequest
	if err := decodeBody(body, &req); err != nil {
		return nil, err
	}
	method, err := parseMethod(req.Method)
	if err != nil {
		return nil, err
	}
	return h.calc.Calculate(req.LoanParameters, method)
}

func (h *handler) prepayment(_ context.Context, body []byte) (interface{}, error) {
	var req prepaymentRequest
	if err := decodeBody(body, &req); err != nil {
		return nil, err
	}
	option := loans.PrepaymentOption{Month: req.Prepayment.Month, Amount: req.Prepayment.Amount}
	method, err := loans.ParsePrepaymentMethod(req.Prepayment.Method)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	option.Method = method

	result, err := h.calc.ApplyPrepayment(req.LoanParameters, option)
	if err != nil {
		return nil, err
	}
	return prepaymentResponse{Result: result, Benefit: metrics.PrepaymentBenefit(result)}, nil
}

func (h *handler) combined(_ context.Context, body []byte) (interface{}, error) {
	var req combinedRequest
	if err := decodeBody(body, &req); err != nil {
		return nil, err
	}
	method, err := parseMethod(req.Method)
	if err != nil {
		return nil, err
	}
	return h.calc.CalculateCombined(loans.CombinedLoanParameters{
		Commercial:    req.Commercial,
		ProvidentFund: req.ProvidentFund,
		TermYears:     req.TermYears,
		Method:        method,
	})
}

func (h *handler) sensitivity(_ context.Context, body []byte) (interface{}, error) {
	var req sensitivityRequest
	if err := decodeBody(body, &req); err != nil {
		return nil, err
	}
	return h.analyzer.AnalyzeSensitivity(req.Principal, req.AnnualRatePercent, req.TermYears, req.SensitivitySweepConfig)
}

func (h *handler) scenarios(ctx context.Context, body []byte) (interface{}, error) {
	var req scenariosRequest
	if err := decodeBody(body, &req); err != nil {
		return nil, err
	}
	for i := range req.Scenarios {
		req.Scenarios[i].Result = nil
	}
	return h.analyzer.AnalyzeScenarios(ctx, req.Scenarios)
}

func (h *handler) evaluateMetrics(_ context.Context, body []byte) (interface{}, error) {
	var req metricsRequest
	if err := decodeBody(body, &req); err != nil {
		return nil, err
	}
	method, err := parseMethod(req.Method)
	if err != nil {
		return nil, err
	}
	result, err := h.calc.Calculate(req.LoanParameters, method)
	if err != nil {
		return nil, err
	}
	return metrics.Evaluate(req.LoanParameters, result, req.Context), nil
}

func (h *handler) affordability(_ context.Context, body []byte) (interface{}, error) {
	var req affordabilityRequest
	if err := decodeBody(body, &req); err != nil {
		return nil, err
	}
	method, err := parseMethod(req.Method)
	if err != nil {
		return nil, err
	}
	return h.runner.Optimize(optimizer.Target{
		Params:  req.LoanParameters,
		Method:  method,
		Context: req.Context,
		Config:  req.Optimizer,
	})
}

func (h *handler) handleReport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleReport"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), op)
			return
		}
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err), op)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "missing configuration file", op)
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", op),
				zap.Error(closeErr),
			)
		}
	}()

	conf, err := config.LoadConfigurationFromReader(file)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	rep, err := report.GetReport(r.Context(), h.logger, *conf)
	if err != nil {
		h.respondError(w, statusFor(err), err.Error(), op)
		return
	}

	var csv bytes.Buffer
	if err := output.CsvFormat(&csv, rep); err != nil {
		h.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render csv: %v", err), op)
		return
	}

	elapsed := time.Since(start)
	h.logger.Info("report computed",
		zap.String("op", op),
		zap.Int("loans", len(rep.Loans)),
		zap.Int("warnings", len(rep.Warnings)),
		zap.Duration("duration", elapsed),
	)

	writeJSON(w, h.logger, http.StatusOK, reportResponse{
		Report:   rep,
		CSV:      csv.String(),
		Warnings: rep.Warnings,
		Duration: elapsed.String(),
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// statusFor maps engine errors caused by bad input to 400.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, loans.ErrInvalidLoanParameters),
		errors.Is(err, loans.ErrInvalidPrepayment),
		errors.Is(err, mathutil.ErrDivisionByZero),
		errors.Is(err, analysis.ErrNoScenarios),
		errors.Is(err, report.ErrPrepaymentMethod),
		errors.Is(err, optimizer.ErrMissingIncome),
		errors.Is(err, optimizer.ErrInvalidConfig):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *handler) respondError(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	writeJSON(w, h.logger, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to write JSON response", zap.Error(err))
	}
}

// Server is the HTTP API with its rate limiter and response cache.
type Server struct {
	logger  *zap.Logger
	srv     *http.Server
	limiter *RateLimiter
	cache   Cache
}

// New builds a Server from cfg. Rate limiting wraps every /api/ route when a
// positive capacity is configured.
func New(logger *zap.Logger, cfg *Config, version string) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}

	cache, err := NewCache(cfg.Cache)
	if err != nil {
		return nil, err
	}

	s := &Server{logger: logger, cache: cache}
	handler := NewHandler(logger, cfg.UploadSizeBytes(), version, cache)
	if cfg.RateLimit.Capacity > 0 {
		s.limiter = NewRateLimiter(cfg.RateLimit.Capacity, cfg.RefillInterval())
		handler = RateLimitMiddleware(s.limiter, logger, handler)
	}

	s.srv = &http.Server{
		Addr:              cfg.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Handler returns the root handler, middleware included.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening",
			zap.String("op", "server.Run"),
			zap.String("address", s.srv.Addr),
		)
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.release()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := s.srv.Shutdown(shutdownCtx)
	s.release()
	return err
}

func (s *Server) release() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
	if closer, ok := s.cache.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			s.logger.Warn("failed to close cache",
				zap.String("op", "server.Run"),
				zap.Error(err),
			)
		}
	}
}
