package http

import (
	"context"
	"net/http"

	"stock-insight/internal/dto"
	"stock-insight/pkg/utils"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupMarket(base *echo.Group) {
	v1 := base.Group("/v1/market")
	{
		v1.GET("/pulse", h.getMarketPulse)
		v1.POST("/scan", h.triggerScan)
		v1.GET("/scan/status", h.getScanStatus)
	}
}

func (h *HttpAPIHandler) getMarketPulse(c echo.Context) error {
	pulse, err := h.service.PulseService.GetMarketPulse(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError,
			dto.NewBaseResponse(http.StatusInternalServerError, "failed to scan market", nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("ok", pulse))
}

// triggerScan kicks the sweep in the background and returns immediately;
// progress is visible through the status endpoint.
func (h *HttpAPIHandler) triggerScan(c echo.Context) error {
	// The sweep must outlive this request; it runs on its own context.
	svc := h.service
	utils.GoSafe(func() {
		svc.SweepScheduler.Sweep(context.Background())
	})
	return c.JSON(http.StatusAccepted,
		dto.NewBaseResponse(http.StatusAccepted, "market scan started", nil))
}

func (h *HttpAPIHandler) getScanStatus(c echo.Context) error {
	return c.JSON(http.StatusOK,
		dto.NewSuccessResponse("ok", h.service.DeepScanService.Status()))
}
