package handler

import (
	"errors"
	"net/http"

	"ict-signal-engine/internal/metrics"
	"ict-signal-engine/internal/provider"
	"ict-signal-engine/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

const requestIDHeader = "X-Request-ID"

type Handler struct {
	tracer        trace.Tracer
	marketService *service.MarketService
	signalService *service.SignalService
}

func New(
	tracer trace.Tracer,
	marketService *service.MarketService,
	signalService *service.SignalService,
) *Handler {
	return &Handler{
		tracer:        tracer,
		marketService: marketService,
		signalService: signalService,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/metrics", metrics.Handler())
	r.GET("/api/instruments", h.GetInstruments)
	r.GET("/api/bars/:asset", h.GetBars)
	r.GET("/api/signals", h.GetSignals)
	r.POST("/api/signals/generate/:asset", h.GenerateSignals)
	r.GET("/api/analysis/:asset", h.GetAnalysis)
}

// Health godoc
// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RequestID tags every request and response with an X-Request-ID, keeping one supplied by the caller.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrUnsupportedAsset), errors.Is(err, service.ErrInvalidFilter):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotInitialized):
		return http.StatusServiceUnavailable
	case errors.Is(err, provider.ErrRateLimited), errors.Is(err, provider.ErrProviderStatus):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	c.JSON(errorStatus(err), gin.H{"error": err.Error()})
}
