package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jarvis/internal/domain"
	domusage "github.com/kailas-cloud/jarvis/internal/domain/usage"
	chatuc "github.com/kailas-cloud/jarvis/internal/usecase/chat"
	healthuc "github.com/kailas-cloud/jarvis/internal/usecase/health"
	usageuc "github.com/kailas-cloud/jarvis/internal/usecase/usage"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 64 << 10

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers.
type Server struct {
	chat          *chatuc.Service
	usage         *usageuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	chat *chatuc.Service,
	usage *usageuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		chat:   chat,
		usage:  usage,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		invalidInputHandler,
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, ErrorCodeRateLimited),
		sentinelHandler(domain.ErrQuotaExceeded, http.StatusTooManyRequests, ErrorCodeQuotaExceeded),
		sentinelHandler(domain.ErrUpstreamUnavailable, http.StatusBadGateway, ErrorCodeUpstream),
	}
	return s
}

// Register mounts the API routes on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Post("/process-chat", s.ProcessChat)
	r.Post("/add-to-cart", s.AddToCart)
	r.Post("/remove-from-cart", s.RemoveFromCart)
	r.Get("/cart/{userId}/count", s.CartCount)
	r.Post("/recommendations", s.Recommendations)
	r.Get("/restaurants", s.Restaurants)
	r.Get("/usage", s.GetUsage)
}

// ProcessChat handles POST /process-chat.
func (s *Server) ProcessChat(w http.ResponseWriter, r *http.Request) {
	var req ProcessChatRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	resp, err := s.chat.ProcessChat(ctx, chatuc.ChatRequest{
		Message: req.Message,
		User:    req.UserContext,
		History: req.ConversationHistory,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	setReasoningHeaders(w, usage)
	writeJSON(w, http.StatusOK, resp)
}

// AddToCart handles POST /add-to-cart.
func (s *Server) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req CartItemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := s.chat.AddToCart(r.Context(), chatuc.CartRequest(req))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// RemoveFromCart handles POST /remove-from-cart.
func (s *Server) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	var req CartItemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := s.chat.RemoveFromCart(r.Context(), chatuc.CartRequest(req))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// CartCount handles GET /cart/{userId}/count.
func (s *Server) CartCount(w http.ResponseWriter, r *http.Request) {
	res, err := s.chat.CartCount(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Recommendations handles POST /recommendations: a catalog search without the engine.
func (s *Server) Recommendations(w http.ResponseWriter, r *http.Request) {
	var req RecommendationsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	in := chatuc.RecommendRequest{Query: req.Query}
	if f := req.Filter; f != nil {
		in.FoodType, in.Budget, in.Dietary, in.MealType = f.FoodType, f.Budget, f.Dietary, f.MealType
	}

	items, err := s.chat.Recommend(r.Context(), in)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FoodListResponse{Items: items, Total: len(items)})
}

// Restaurants handles GET /restaurants?q=&cuisine=.
func (s *Server) Restaurants(w http.ResponseWriter, r *http.Request) {
	var q, cuisine string
	if err := runtime.BindQueryParameter("form", true, false, "q", r.URL.Query(), &q); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid format for parameter q")
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "cuisine", r.URL.Query(), &cuisine); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid format for parameter cuisine")
		return
	}

	rests, err := s.chat.Restaurants(r.Context(), q, cuisine)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RestaurantListResponse{Items: rests, Total: len(rests)})
}

// GetUsage handles GET /usage?period=day|month.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	var raw string
	if err := runtime.BindQueryParameter("form", true, false, "period", r.URL.Query(), &raw); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid format for parameter period")
		return
	}
	period, err := domusage.ParsePeriod(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	report := s.usage.GetReport(r.Context(), period)
	writeJSON(w, http.StatusOK, UsageResponse{
		Period:        string(report.Period),
		PeriodStartAt: time.UnixMilli(report.PeriodStart).UTC(),
		PeriodEndAt:   time.UnixMilli(report.PeriodEnd).UTC(),
		Budget: BudgetStatus{
			TokensLimit:     report.Budget.Limit,
			TokensUsed:      report.Budget.Used,
			TokensRemaining: report.Budget.Remaining,
			IsExhausted:     report.Budget.Exhausted(),
			ResetsAt:        time.UnixMilli(report.Budget.ResetsAt).UTC(),
		},
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, HealthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func setReasoningHeaders(w http.ResponseWriter, usage *domain.ReasoningUsage) {
	if usage.Calls() > 0 {
		w.Header().Set("X-Reasoning-Calls", strconv.Itoa(usage.Calls()))
		w.Header().Set("X-Reasoning-Tokens", strconv.Itoa(usage.TotalTokens()))
	}
}

// decodeBody reads a JSON body into v, answering 400 itself on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrRateLimited,
		domain.ErrQuotaExceeded,
		domain.ErrUpstreamUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// invalidInputHandler answers 400 with the validation detail, which is safe to show.
func invalidInputHandler(w http.ResponseWriter, err error, _ string) bool {
	if !errors.Is(err, domain.ErrInvalidInput) {
		return false
	}
	msg := err.Error()
	if _, detail, ok := strings.Cut(msg, domain.ErrInvalidInput.Error()+": "); ok {
		msg = detail
	}
	writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, msg)
	return true
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
