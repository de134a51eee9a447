package handler

import (
	"net/http"
	"strconv"
	"strings"

	"ict-signal-engine/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetInstruments godoc
// @Summary      List supported instruments
// @Tags         market
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]string
// @Router       /api/instruments [get]
func (h *Handler) GetInstruments(c *gin.Context) {
	if h.signalService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "signal service unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"instruments": h.signalService.Instruments()})
}

// GetBars godoc
// @Summary      Get stored OHLC bars
// @Description  Returns the most recent bars for an asset, oldest first
// @Tags         market
// @Produce      json
// @Param        asset  path   string  true   "Asset (e.g., EURUSD, XAUUSD)"
// @Param        limit  query  int     false  "Number of bars (default 500, max 5000)"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/bars/{asset} [get]
func (h *Handler) GetBars(c *gin.Context) {
	if h.marketService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "market service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-bars")
	defer span.End()

	asset := c.Param("asset")
	span.SetAttributes(attribute.String("asset", asset))

	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 5000 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 5000"})
			return
		}
		limit = n
	}

	bars, err := h.marketService.GetBars(ctx, asset, limit)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"asset":     domain.NormalizeAsset(asset),
		"timeframe": h.marketService.Timeframe(),
		"bars":      bars,
	})
}
