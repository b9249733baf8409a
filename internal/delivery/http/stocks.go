package http

import (
	"net/http"

	"stock-insight/internal/dto"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupStocks(base *echo.Group) {
	v1 := base.Group("/v1/stocks")
	{
		v1.GET("/:sid", h.checkStock)
		v1.GET("/:sid/analysis", h.getAnalysis)
	}
}

func (h *HttpAPIHandler) checkStock(c echo.Context) error {
	sid := c.Param("sid")
	if sid == "" {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("missing stock id"))
	}

	result := h.service.QuoteService.CheckStock(c.Request().Context(), sid)
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("ok", result))
}

func (h *HttpAPIHandler) getAnalysis(c echo.Context) error {
	sid := c.Param("sid")
	if sid == "" {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("missing stock id"))
	}

	req := new(dto.AnalyzeRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	mode := dto.AnalyzeMode(req.Mode)
	if mode == "" {
		mode = dto.ModeFull
	}

	detail := h.service.AnalyzerService.GetAnalyze(c.Request().Context(), sid, mode)
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("ok", detail))
}
