package api

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"beertime/internal/logging"
	"beertime/internal/metrics"
)

type Server struct {
	httpServer *http.Server
}

// NewLimiter builds the request limiter; non-positive values fall back to
// 5 requests per second with a burst of 20.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		rps = 5
	}
	if burst <= 0 {
		burst = 20
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// Routes registers every endpoint on a fresh mux.
func Routes(h *Handler, limiter *rate.Limiter) http.Handler {
	mux := http.NewServeMux()
	handle := func(pattern string, f http.HandlerFunc) {
		mux.Handle(pattern, instrument(pattern, f))
	}
	handle("GET /api/stats", h.HandleStats)
	handle("GET /api/today", h.HandleToday)
	handle("GET /api/week", h.HandleWeek)
	handle("GET /api/month", h.HandleMonth)
	handle("GET /api/history", h.HandleHistory)
	handle("GET /api/graph/year", h.HandleYearGraph)
	handle("GET /api/graph/rhythm", h.HandleRhythm)
	handle("POST /api/records", h.HandleAddRecord)
	handle("DELETE /api/records/latest", h.HandleUndo)
	handle("DELETE /api/records/{id}", h.HandleDeleteRecord)
	handle("DELETE /api/records", h.HandleReset)
	handle("PUT /api/days/{date}", h.HandleEditDay)
	handle("DELETE /api/days/{date}", h.HandleDeleteDay)
	handle("GET /api/prefs/price", h.HandleGetPrice)
	handle("PUT /api/prefs/price", h.HandleSetPrice)
	handle("GET /api/prefs/language", h.HandleGetLanguage)
	handle("PUT /api/prefs/language", h.HandleSetLanguage)
	handle("GET /api/ads/should-show", h.HandleShouldShowAd)
	handle("POST /api/ads/shown", h.HandleAdShown)
	handle("GET /health", h.HandleHealth)
	return rateLimit(limiter, mux)
}

func NewServer(addr string, h *Handler, limiter *rate.Limiter) *Server {
	return &Server{httpServer: &http.Server{
		Addr:         addr,
		Handler:      Routes(h, limiter),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}}
}

// Start blocks serving until Shutdown; http.ErrServerClosed is not an error.
func (s *Server) Start() error {
	logging.Info("api_start", map[string]any{"addr": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)
		metrics.IncHTTP(route, rec.code)
		logging.Info("http_request", map[string]any{
			"method":   r.Method,
			"path":     r.URL.Path,
			"code":     rec.code,
			"duration": time.Since(start).String(),
		})
	})
}

func rateLimit(limiter *rate.Limiter, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			metrics.IncHTTP("rate_limited", http.StatusTooManyRequests)
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
