package handler

import (
	"net/http"
	"strconv"
	"strings"

	"ict-signal-engine/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetSignals godoc
// @Summary      Get generated trade signals
// @Description  Returns recent signals, optionally filtered by asset/strategy/bias
// @Tags         signals
// @Produce      json
// @Param        asset     query  string  false  "Asset (e.g., EURUSD)"
// @Param        strategy  query  string  false  "Strategy (engulfing, turtle_soup, crt_breakout, zone_rejection, ipda_entry)"
// @Param        bias      query  string  false  "Direction (bullish, bearish)"
// @Param        limit     query  int     false  "Number of signals (default 50, max 200)"  default(50)
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/signals [get]
func (h *Handler) GetSignals(c *gin.Context) {
	if h.signalService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "signal service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-signals")
	defer span.End()

	filter := domain.SignalFilter{
		Asset:    c.Query("asset"),
		Strategy: c.Query("strategy"),
		Bias:     domain.Bias(c.Query("bias")),
	}
	if filter.Asset != "" {
		span.SetAttributes(attribute.String("asset", filter.Asset))
	}

	limit := 50
	if rawLimit := strings.TrimSpace(c.Query("limit")); rawLimit != "" {
		n, err := strconv.Atoi(rawLimit)
		if err != nil || n <= 0 || n > 200 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 200"})
			return
		}
		limit = n
	}
	filter.Limit = limit

	signals, err := h.signalService.ListSignals(ctx, filter)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"signals": signals})
}

// GenerateSignals godoc
// @Summary      Run the signal engine for an asset
// @Description  Evaluates the latest stored bars and persists any signals that fire
// @Tags         signals
// @Produce      json
// @Param        asset  path  string  true  "Asset (e.g., EURUSD)"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/signals/generate/{asset} [post]
func (h *Handler) GenerateSignals(c *gin.Context) {
	if h.signalService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "signal service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.generate-signals")
	defer span.End()
	span.SetAttributes(attribute.String("asset", c.Param("asset")))

	signals, err := h.signalService.GenerateForAsset(ctx, c.Param("asset"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"signals": signals, "count": len(signals)})
}

// GetAnalysis godoc
// @Summary      Get engine diagnostics for an asset
// @Description  Returns volatility, zones, bias, IPDA phase, liquidity pools, detected patterns and signals
// @Tags         signals
// @Produce      json
// @Param        asset  path  string  true  "Asset (e.g., EURUSD)"
// @Success      200  {object}  domain.Analysis
// @Failure      400  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/analysis/{asset} [get]
func (h *Handler) GetAnalysis(c *gin.Context) {
	if h.signalService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "signal service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-analysis")
	defer span.End()

	analysis, err := h.signalService.Analyze(ctx, c.Param("asset"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, analysis)
}
