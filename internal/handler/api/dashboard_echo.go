package api

import (
	"context"
	"errors"
	"net/http"

	"StonkPulse/internal/domain/models"
	"StonkPulse/internal/service/ratelimit"
	"StonkPulse/internal/usecase"
	xhttp "StonkPulse/pkg/http"
	xlogger "StonkPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// DashboardEchoHandler exposes the dashboard snapshots and the selection callbacks.
type DashboardEchoHandler struct {
	logger  *xlogger.Logger
	dash    *usecase.Dashboard
	limiter *ratelimit.Limiter
	stream  *SnapshotStream
}

func NewDashboardEchoHandler(logger *xlogger.Logger, dash *usecase.Dashboard, limiter *ratelimit.Limiter, stream *SnapshotStream) *DashboardEchoHandler {
	return &DashboardEchoHandler{logger: logger, dash: dash, limiter: limiter, stream: stream}
}

func (h *DashboardEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	if h.stream != nil {
		e.GET("/ws", h.stream.Serve)
	}

	g := e.Group("/api")
	g.GET("/dashboard", h.Dashboard)
	g.GET("/tickers", h.Tickers)
	g.GET("/summary", h.Summary)
	g.GET("/news", h.News)
	g.GET("/chart", h.Chart)
	g.GET("/reports", h.Reports)
	g.POST("/reports", h.Submit, h.rateLimit)
	g.POST("/reports/select", h.Select, h.rateLimit)
}

func (h *DashboardEchoHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *DashboardEchoHandler) Dashboard(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.dash.Snapshot())
}

func (h *DashboardEchoHandler) Tickers(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.dash.Tickers.Quotes())
}

func (h *DashboardEchoHandler) Summary(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.dash.Summary.View())
}

func (h *DashboardEchoHandler) News(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.dash.News.Items())
}

func (h *DashboardEchoHandler) Chart(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.dash.Chart.View())
}

func (h *DashboardEchoHandler) Reports(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.dash.Session.Reports())
}

type selectionResult struct {
	Entry  *models.ReportEntry `json:"entry,omitempty"`
	Symbol string              `json:"symbol"`
	Chart  models.ChartState   `json:"chart"`
	Stale  bool                `json:"stale"`
	Active string              `json:"active"`
}

func (h *DashboardEchoHandler) Submit(c echo.Context) error {
	req := &models.SymbolRequest{}
	if verr := xhttp.BindAndValidate(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	entry, out, err := h.dash.Session.Submit(c.Request().Context(), req.Symbol)
	if err != nil {
		return h.selectionError(c, "submit", req.Symbol, err)
	}
	return xhttp.CreatedResponse(c, selectionResult{
		Entry:  &entry,
		Symbol: out.Symbol,
		Chart:  out.State,
		Stale:  out.Stale,
		Active: h.dash.Session.Active(),
	})
}

func (h *DashboardEchoHandler) Select(c echo.Context) error {
	req := &models.SymbolRequest{}
	if verr := xhttp.BindAndValidate(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	out, err := h.dash.Session.SelectFromHistory(c.Request().Context(), req.Symbol)
	if err != nil {
		return h.selectionError(c, "select", req.Symbol, err)
	}
	return xhttp.SuccessResponse(c, selectionResult{
		Symbol: out.Symbol,
		Chart:  out.State,
		Stale:  out.Stale,
		Active: h.dash.Session.Active(),
	})
}

func (h *DashboardEchoHandler) selectionError(c echo.Context, op, symbol string, err error) error {
	switch {
	case errors.Is(err, usecase.ErrEmptySymbol):
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("symbol", err.Error()).WithError(err))
	case errors.Is(err, usecase.ErrUnknownSymbol):
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("symbol", err.Error()).WithParam("symbol", symbol))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return xhttp.AppErrorResponse(c, xhttp.TimeoutError("selection did not settle before the request ended"))
	}
	h.logger.Error(op+" usecase error", xlogger.String("symbol", symbol), xlogger.Error(err))
	return xhttp.AppErrorResponse(c, err)
}

// rateLimit applies the keyed limiter per client IP.
func (h *DashboardEchoHandler) rateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if h.limiter != nil && !h.limiter.Allow(c.RealIP()) {
			return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("too many selections, slow down"))
		}
		return next(c)
	}
}
