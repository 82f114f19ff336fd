package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/iwvelando/fi-forecast/internal/config"
	"github.com/iwvelando/fi-forecast/internal/host"
	"github.com/iwvelando/fi-forecast/internal/optimizer"
	"github.com/iwvelando/fi-forecast/pkg/constants"
	"github.com/iwvelando/fi-forecast/pkg/optimization"
	"github.com/iwvelando/fi-forecast/pkg/output"
	"github.com/iwvelando/fi-forecast/pkg/planning"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type handler struct {
	logger      *zap.Logger
	runner      *optimizer.Runner
	host        *host.Host
	maxBodySize int64
	version     string
}

// NewHandler constructs the HTTP handler that serves the planning API.
func NewHandler(logger *zap.Logger, runner *optimizer.Runner, h *host.Host, maxBodySize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxBodySize <= 0 {
		maxBodySize = constants.DefaultMaxBodySizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	hd := &handler{logger: logger, runner: runner, host: h, maxBodySize: maxBodySize, version: trimmedVersion}

	mux := http.NewServeMux()

	// Baseline projection and per-age breakdown
	mux.HandleFunc("/api/plan", hd.handlePlan)

	// Scenario search with recommendation
	mux.HandleFunc("/api/optimize", hd.handleOptimize)

	mux.HandleFunc("/api/version", hd.handleVersion)
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

// planRequest mirrors the plan section of the configuration file.
type planRequest struct {
	CurrentAge                int     `json:"currentAge"`
	MonthlyExpense            float64 `json:"monthlyExpense"`
	MonthlyInvestment         float64 `json:"monthlyInvestment"`
	HealthStatus              string  `json:"healthStatus"`
	ExistingFixedIncomeCorpus float64 `json:"existingFixedIncomeCorpus"`
	ExistingGrowthCorpus      float64 `json:"existingGrowthCorpus"`
}

func (p planRequest) plan() config.PlanConfig {
	return config.PlanConfig{
		CurrentAge:                p.CurrentAge,
		MonthlyExpense:            p.MonthlyExpense,
		MonthlyInvestment:         p.MonthlyInvestment,
		HealthStatus:              p.HealthStatus,
		ExistingFixedIncomeCorpus: p.ExistingFixedIncomeCorpus,
		ExistingGrowthCorpus:      p.ExistingGrowthCorpus,
	}
}

type planResponse struct {
	Inputs        planning.Inputs               `json:"inputs"`
	BaselineFIAge *int                          `json:"baselineFiAge"`
	Breakdown     []planning.YearlyBreakdownRow `json:"breakdown"`
	CSV           string                        `json:"csv"`
	Warnings      []string                      `json:"warnings,omitempty"`
	Duration      string                        `json:"duration"`
}

type optimizeResponse struct {
	Inputs       planning.Inputs               `json:"inputs"`
	Optimization optimization.Result           `json:"optimization"`
	Breakdown    []planning.YearlyBreakdownRow `json:"breakdown"`
	Warnings     []string                      `json:"warnings,omitempty"`
	Synchronous  bool                          `json:"synchronous"`
	Duration     string                        `json:"duration"`
}

func (h *handler) handlePlan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	const op = "server.handlePlan"
	start := time.Now()
	inputs, warnings, ok := h.decodeInputs(w, r, op)
	if !ok {
		return
	}

	rows := h.runner.Breakdown(inputs)
	report := output.Report{
		Inputs:        inputs,
		BaselineFIAge: h.runner.BaselineFIAge(inputs),
		Breakdown:     rows,
		Warnings:      warnings,
	}

	h.writeJSON(w, http.StatusOK, planResponse{
		Inputs:        inputs,
		BaselineFIAge: report.BaselineFIAge,
		Breakdown:     rows,
		CSV:           output.CsvString(report),
		Warnings:      warnings,
		Duration:      time.Since(start).String(),
	})
}

func (h *handler) handleOptimize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	const op = "server.handleOptimize"
	start := time.Now()
	inputs, warnings, ok := h.decodeInputs(w, r, op)
	if !ok {
		return
	}

	session := h.host.Session()
	defer session.Close()

	run := session.Submit(r.Context(), func(ctx context.Context) optimization.Result {
		return h.runner.Run(ctx, inputs)
	})
	result, err := run.Wait(r.Context())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusServiceUnavailable
		}
		h.respondErrorWithOp(w, status, fmt.Sprintf("optimizer execution failed: %v", err), op)
		return
	}

	rows := h.runner.Breakdown(inputs)

	if strings.EqualFold(r.URL.Query().Get("format"), constants.OutputFormatYAML) {
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(http.StatusOK)
		report := output.Report{
			Inputs:        inputs,
			BaselineFIAge: result.BaselineFIAge,
			Breakdown:     rows,
			Optimization:  &result,
			Warnings:      warnings,
		}
		if err := output.YamlFormat(w, report); err != nil {
			h.logger.Error("failed to write YAML response", zap.String("op", op), zap.Error(err))
		}
		return
	}

	h.writeJSON(w, http.StatusOK, optimizeResponse{
		Inputs:       inputs,
		Optimization: result,
		Breakdown:    rows,
		Warnings:     warnings,
		Synchronous:  run.Synchronous(),
		Duration:     time.Since(start).String(),
	})
}

// decodeInputs reads a planRequest body. It writes the error response itself
// and reports false when the request cannot be used.
func (h *handler) decodeInputs(w http.ResponseWriter, r *http.Request, op string) (planning.Inputs, []string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	var req planRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds limit of %d bytes", h.maxBodySize), op)
			return planning.Inputs{}, nil, false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode plan: %v", err), op)
		return planning.Inputs{}, nil, false
	}

	inputs, warnings := req.plan().Inputs()
	if !inputs.Valid() {
		msg := optimizer.MessageInvalidInput
		if len(warnings) > 0 {
			msg = fmt.Sprintf("%s %s", msg, strings.Join(warnings, "; "))
		}
		h.respondErrorWithOp(w, http.StatusUnprocessableEntity, msg, op)
		return planning.Inputs{}, nil, false
	}
	return inputs, warnings, true
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	if h.logger != nil {
		h.logger.Error("plan request failed",
			zap.String("op", op),
			zap.Int("status", status),
			zap.String("error", msg),
		)
	}

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && h.logger != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
