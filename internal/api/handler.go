package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/tickerlens/internal/analytics"
	"github.com/guttosm/tickerlens/internal/domain/dto"
	"github.com/guttosm/tickerlens/internal/logger"
	"github.com/guttosm/tickerlens/internal/middleware"
	"github.com/guttosm/tickerlens/internal/service"
)

const (
	msgTickerRequired = "Ticker is required"
	msgNotFound       = "No record has been found, please enter a valid symbol."
)

// Handler provides HTTP handlers for the search and analytics endpoints.
//
// Responsibilities:
//   - Validate incoming HTTP query parameters
//   - Delegate to the quote and analytics services
//   - Translate service results into response DTOs
//   - Map service errors onto HTTP status codes
type Handler struct {
	quotes    service.QuoteService
	analytics service.AnalyticsService
}

// NewHandler constructs a new Handler instance.
//
// Parameters:
//   - quotes (service.QuoteService): aggregation and search history.
//   - analytics (service.AnalyticsService): returns and risk figures.
//
// Returns:
//   - *Handler: A handler ready to be registered with the router.
func NewHandler(quotes service.QuoteService, analytics service.AnalyticsService) *Handler {
	return &Handler{quotes: quotes, analytics: analytics}
}

// Search godoc
// @Summary      Search a ticker
// @Description  Returns the merged company profile and stock quote for a ticker. Results younger than the cache TTL are served from the snapshot store unless refresh=true.
// @Tags         search
// @Produce      json
// @Param        ticker   query     string  true   "Stock ticker" example(AAPL)
// @Param        refresh  query     bool    false  "Bypass the snapshot cache"
// @Success      200      {object}  dto.SearchResponse  "Success"
// @Failure      400      {object}  dto.ErrorResponse   "Bad Request"
// @Failure      404      {object}  dto.ErrorResponse   "Not Found"
// @Failure      500      {object}  dto.ErrorResponse   "Internal Error"
// @Router       /api/v1/search [get]
func (h *Handler) Search(c *gin.Context) {
	// ─── Validate params ──────────────────────────────────────
	ticker := service.NormalizeTicker(c.Query("ticker"))
	if ticker == "" {
		middleware.AbortWithError(c, http.StatusBadRequest, msgTickerRequired, nil)
		return
	}
	refresh, _ := strconv.ParseBool(c.DefaultQuery("refresh", "false"))

	// ─── Query service (with request context) ─────────────────
	res, err := h.quotes.Search(c.Request.Context(), ticker, refresh)
	switch {
	case errors.Is(err, service.ErrTickerRequired):
		middleware.AbortWithError(c, http.StatusBadRequest, msgTickerRequired, nil)
		return
	case errors.Is(err, service.ErrNotFound):
		middleware.AbortWithError(c, http.StatusNotFound, msgNotFound, nil)
		return
	case err != nil:
		middleware.AbortWithError(c, http.StatusInternalServerError, "failed to fetch ticker data", err)
		return
	}

	// ─── Build and return response DTO ────────────────────────
	c.JSON(http.StatusOK, toSearchResponse(res))
}

// History godoc
// @Summary      Recent searches
// @Description  Returns the most recent searches, newest first. Store failures yield an empty list.
// @Tags         search
// @Produce      json
// @Param        limit  query     int  false  "Max items (default 10, max 100)"
// @Success      200    {array}   dto.HistoryItem
// @Router       /api/v1/history [get]
func (h *Handler) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	items, err := h.quotes.History(c.Request.Context(), limit)
	if err != nil {
		logger.For("api").Error().Err(err).Msg("history lookup failed")
		c.JSON(http.StatusOK, []dto.HistoryItem{})
		return
	}
	c.JSON(http.StatusOK, dto.NewHistoryItems(items))
}

// Returns godoc
// @Summary      Daily returns
// @Description  Returns the daily percentage returns of a ticker over a lookback window.
// @Tags         analytics
// @Produce      json
// @Param        ticker  query     string  true   "Stock ticker" example(AAPL)
// @Param        window  query     string  false  "Lookback: 1mo, 3mo, 6mo, 1y, 2y, 5y, 10y, max" default(1y)
// @Success      200     {object}  dto.ReturnsResponse
// @Failure      400     {object}  dto.ErrorResponse  "Bad Request"
// @Failure      404     {object}  dto.ErrorResponse  "Not Found"
// @Failure      502     {object}  dto.ErrorResponse  "Upstream Error"
// @Router       /api/v1/returns [get]
func (h *Handler) Returns(c *gin.Context) {
	ticker := service.NormalizeTicker(c.Query("ticker"))
	if ticker == "" {
		middleware.AbortWithError(c, http.StatusBadRequest, msgTickerRequired, nil)
		return
	}

	res, err := h.analytics.Returns(c.Request.Context(), ticker, c.Query("window"))
	if err != nil {
		h.historyError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReturnsResponse(res))
}

// Analytics godoc
// @Summary      Risk analytics
// @Description  Returns daily returns plus beta, annualized volatilities and risk class against a benchmark. A risk failure is reported in risk_error with a 200 status.
// @Tags         analytics
// @Produce      json
// @Param        ticker     query     string  true   "Stock ticker" example(AAPL)
// @Param        window     query     string  false  "Lookback: 1mo, 3mo, 6mo, 1y, 2y, 5y, 10y, max" default(1y)
// @Param        benchmark  query     string  false  "Benchmark symbol" default(SPY)
// @Success      200        {object}  dto.AnalyticsResponse
// @Failure      400        {object}  dto.ErrorResponse  "Bad Request"
// @Failure      404        {object}  dto.ErrorResponse  "Not Found"
// @Failure      502        {object}  dto.ErrorResponse  "Upstream Error"
// @Router       /api/v1/analytics [get]
func (h *Handler) Analytics(c *gin.Context) {
	ticker := service.NormalizeTicker(c.Query("ticker"))
	if ticker == "" {
		middleware.AbortWithError(c, http.StatusBadRequest, msgTickerRequired, nil)
		return
	}

	res, err := h.analytics.Analyze(c.Request.Context(), ticker, c.Query("window"), c.Query("benchmark"))
	if err != nil {
		h.historyError(c, err)
		return
	}

	resp := dto.AnalyticsResponse{
		ReturnsResponse: toReturnsResponse(&res.ReturnsResult),
		Benchmark:       res.Benchmark,
		Risk:            res.Risk,
	}
	switch {
	case res.RiskErr == nil:
	case errors.Is(res.RiskErr, analytics.ErrDegenerateMarket):
		resp.RiskError = dto.RiskErrDegenerateMarket
	default:
		resp.RiskError = dto.RiskErrInsufficientData
	}
	c.JSON(http.StatusOK, resp)
}

// ─── Helpers ──────────────────────────────────────────────

func (h *Handler) historyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTickerRequired):
		middleware.AbortWithError(c, http.StatusBadRequest, msgTickerRequired, nil)
	case errors.Is(err, service.ErrNotFound):
		middleware.AbortWithError(c, http.StatusNotFound, msgNotFound, nil)
	default:
		middleware.AbortWithError(c, http.StatusBadGateway, "failed to fetch price history", err)
	}
}

func toSearchResponse(r *service.QuoteResult) dto.SearchResponse {
	resp := dto.SearchResponse{
		Company:     r.Entry.Profile,
		Stock:       dto.NewStockResponse(r.Entry.Quote),
		RetrievedAt: r.Entry.RetrievedAt,
		Cached:      r.Cached,
	}
	if len(r.Provenance) > 0 {
		resp.Sources = make(map[string]string, len(r.Provenance))
		for k, v := range r.Provenance {
			resp.Sources[k] = string(v)
		}
	}
	return resp
}

func toReturnsResponse(r *service.ReturnsResult) dto.ReturnsResponse {
	return dto.ReturnsResponse{
		Ticker:  r.Ticker,
		Window:  r.Window,
		Source:  string(r.Source),
		Returns: dto.NewReturnPoints(r.Returns),
	}
}
