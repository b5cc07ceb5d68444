package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Trading-Analytics-Engine/internal/api/request"
	"github.com/ndewijer/Trading-Analytics-Engine/internal/api/response"
	"github.com/ndewijer/Trading-Analytics-Engine/internal/model"
	"github.com/ndewijer/Trading-Analytics-Engine/internal/service"
)

// AnalyticsHandler handles HTTP requests for agent analytics endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// calculations and storage to the analyticsService.
type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
	reportService    *service.ReportService
}

// NewAnalyticsHandler creates a new AnalyticsHandler with the provided service dependencies.
func NewAnalyticsHandler(analyticsService *service.AnalyticsService, reportService *service.ReportService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		reportService:    reportService,
	}
}

// Performance handles POST requests computing performance metrics from closed trades.
//
// Endpoint: POST /api/analytics/{agentId}/performance
// Request Body: PerformanceRequest (period, trades)
// Response: 200 OK with PerformanceMetrics
// Error: 400 Bad Request if the body or agent ID is invalid
// Error: 500 Internal Server Error if storing the result fails
func (h *AnalyticsHandler) Performance(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentId")

	req, err := parseJSON[request.PerformanceRequest](w, r)
	if err != nil {
		respondParseError(w, err)
		return
	}

	period, err := model.ParseReportingPeriod(req.Period)
	if err != nil {
		respondServiceError(w, err, "invalid reporting period")
		return
	}

	metrics, err := h.analyticsService.AnalyzePerformance(r.Context(), agentID, request.Trades(req.Trades), period)
	if err != nil {
		respondServiceError(w, err, "failed to analyze performance")
		return
	}

	response.RespondJSON(w, http.StatusOK, metrics)
}

// Risk handles POST requests assessing the risk of an agent's portfolio.
//
// Endpoint: POST /api/analytics/{agentId}/risk
// Request Body: RiskRequest (holdings, prices, confidence, benchmark)
// Response: 200 OK with RiskMetrics
// Error: 400 Bad Request if the portfolio is malformed
// Error: 500 Internal Server Error if storing the result fails
func (h *AnalyticsHandler) Risk(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentId")

	req, err := parseJSON[request.RiskRequest](w, r)
	if err != nil {
		respondParseError(w, err)
		return
	}

	risk, err := h.analyticsService.AssessRisk(r.Context(), agentID,
		request.Portfolio(req.Holdings),
		request.PriceHistory(req.Prices),
		req.Confidence,
		req.Benchmark,
	)
	if err != nil {
		respondServiceError(w, err, "failed to assess risk")
		return
	}

	response.RespondJSON(w, http.StatusOK, risk)
}

// Attribution handles POST requests decomposing an agent's return against its benchmark.
//
// Endpoint: POST /api/analytics/{agentId}/attribution
// Request Body: AttributionRequest (return series, strategy and asset weights)
// Response: 200 OK with PerformanceAttribution
// Error: 400 Bad Request if a weight map does not sum to 1
// Error: 500 Internal Server Error if storing the result fails
func (h *AnalyticsHandler) Attribution(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentId")

	req, err := parseJSON[request.AttributionRequest](w, r)
	if err != nil {
		respondParseError(w, err)
		return
	}

	attribution, err := h.analyticsService.AnalyzeAttribution(r.Context(), agentID,
		request.ReturnSeries(req.PortfolioReturns),
		request.ReturnSeries(req.BenchmarkReturns),
		req.StrategyWeights,
		req.AssetWeights,
	)
	if err != nil {
		respondServiceError(w, err, "failed to analyze attribution")
		return
	}

	response.RespondJSON(w, http.StatusOK, attribution)
}

// Benchmark handles POST requests comparing an agent's returns with a benchmark.
//
// Endpoint: POST /api/analytics/{agentId}/benchmark
// Request Body: BenchmarkRequest (portfolio and benchmark return series)
// Response: 200 OK with BenchmarkComparison
// Error: 400 Bad Request if either series is missing
// Error: 500 Internal Server Error if storing the result fails
func (h *AnalyticsHandler) Benchmark(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentId")

	req, err := parseJSON[request.BenchmarkRequest](w, r)
	if err != nil {
		respondParseError(w, err)
		return
	}

	comparison, err := h.analyticsService.CompareBenchmark(r.Context(), agentID,
		request.ReturnSeries(req.PortfolioReturns),
		request.ReturnSeries(req.BenchmarkReturns),
	)
	if err != nil {
		respondServiceError(w, err, "failed to compare benchmark")
		return
	}

	response.RespondJSON(w, http.StatusOK, comparison)
}

// Analyze handles POST requests running every applicable component at once.
// Nothing is stored unless all requested components succeed.
//
// Endpoint: POST /api/analytics/{agentId}/analyze
// Request Body: AnalyzeRequest
// Response: 200 OK with AgentSnapshot
// Error: 400 Bad Request if any component rejects its input
// Error: 500 Internal Server Error if storing the results fails
func (h *AnalyticsHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentId")

	req, err := parseJSON[request.AnalyzeRequest](w, r)
	if err != nil {
		respondParseError(w, err)
		return
	}

	in, err := analysisInput(req)
	if err != nil {
		respondServiceError(w, err, "invalid reporting period")
		return
	}

	snapshot, err := h.analyticsService.AnalyzeAll(r.Context(), agentID, in)
	if err != nil {
		respondServiceError(w, err, "failed to analyze agent")
		return
	}

	response.RespondJSON(w, http.StatusOK, snapshot)
}

// Batch handles POST requests analyzing many agents concurrently. A failing
// agent is reported in the errors map and does not affect the others.
//
// Endpoint: POST /api/analytics/batch
// Request Body: BatchRequest (agents keyed by ID)
// Response: 200 OK with BatchResult
// Error: 400 Bad Request if the body is malformed
// Error: 500 Internal Server Error if the batch was cancelled
func (h *AnalyticsHandler) Batch(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.BatchRequest](w, r)
	if err != nil {
		respondParseError(w, err)
		return
	}

	inputs := make(map[string]service.FullAnalysisInput, len(req.Agents))
	periodErrors := make(map[string]string)
	for agentID, agentReq := range req.Agents {
		in, err := analysisInput(agentReq)
		if err != nil {
			periodErrors[agentID] = err.Error()
			continue
		}
		inputs[agentID] = in
	}

	result, err := h.analyticsService.AnalyzeBatch(r.Context(), inputs)
	if err != nil {
		respondServiceError(w, err, "batch analysis interrupted")
		return
	}
	for agentID, msg := range periodErrors {
		result.Errors[agentID] = msg
	}

	response.RespondJSON(w, http.StatusOK, result)
}

// Latest handles GET requests for an agent's most recent results.
//
// Endpoint: GET /api/analytics/{agentId}
// Response: 200 OK with AgentSnapshot
// Error: 404 Not Found if nothing is stored for the agent
func (h *AnalyticsHandler) Latest(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.analyticsService.Latest(r.Context(), chi.URLParam(r, "agentId"))
	if err != nil {
		respondServiceError(w, err, "failed to retrieve analytics")
		return
	}

	response.RespondJSON(w, http.StatusOK, snapshot)
}

// History handles GET requests for an agent's performance metrics history,
// oldest first. The optional limit query parameter keeps only the newest entries.
//
// Endpoint: GET /api/analytics/{agentId}/history?limit=N
// Response: 200 OK with array of PerformanceMetrics
// Error: 400 Bad Request if limit is not a positive integer
// Error: 404 Not Found if nothing is stored for the agent
func (h *AnalyticsHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.RespondError(w, http.StatusBadRequest, "invalid limit", "limit must be a positive integer")
			return
		}
		limit = n
	}

	history, err := h.analyticsService.History(r.Context(), chi.URLParam(r, "agentId"))
	if err != nil {
		respondServiceError(w, err, "failed to retrieve history")
		return
	}
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}

	response.RespondJSON(w, http.StatusOK, history)
}

// Report handles GET requests for an agent's insights and recommendations.
//
// Endpoint: GET /api/analytics/{agentId}/report
// Response: 200 OK with AgentReport
// Error: 404 Not Found if nothing is stored for the agent
func (h *AnalyticsHandler) Report(w http.ResponseWriter, r *http.Request) {
	report, err := h.reportService.Generate(r.Context(), chi.URLParam(r, "agentId"))
	if err != nil {
		respondServiceError(w, err, "failed to generate report")
		return
	}

	response.RespondJSON(w, http.StatusOK, report)
}

// Agents handles GET requests listing every agent with stored results.
//
// Endpoint: GET /api/analytics/agents
// Response: 200 OK with array of agent IDs
func (h *AnalyticsHandler) Agents(w http.ResponseWriter, r *http.Request) {
	agents, err := h.analyticsService.Agents(r.Context())
	if err != nil {
		respondServiceError(w, err, "failed to retrieve agents")
		return
	}

	response.RespondJSON(w, http.StatusOK, agents)
}

// Snapshot handles GET requests for a single stored result row.
//
// Endpoint: GET /api/analytics/snapshots/{uuid}
// Response: 200 OK with StoredSnapshot
// Error: 400 Bad Request if the ID is invalid (validated by middleware)
// Error: 404 Not Found if the row does not exist or the store keeps no rows
func (h *AnalyticsHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.analyticsService.Snapshot(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, err, "failed to retrieve snapshot")
		return
	}

	response.RespondJSON(w, http.StatusOK, snapshot)
}

func analysisInput(req request.AnalyzeRequest) (service.FullAnalysisInput, error) {
	period, err := model.ParseReportingPeriod(req.Period)
	if err != nil {
		return service.FullAnalysisInput{}, err
	}
	return service.FullAnalysisInput{
		Trades:          request.Trades(req.Trades),
		Period:          period,
		Portfolio:       request.Portfolio(req.Holdings),
		History:         request.PriceHistory(req.Prices),
		Confidence:      req.Confidence,
		PortfolioSeries: request.ReturnSeries(req.PortfolioReturns),
		BenchmarkSeries: request.ReturnSeries(req.BenchmarkReturns),
		StrategyWeights: req.StrategyWeights,
		AssetWeights:    req.AssetWeights,
	}, nil
}
