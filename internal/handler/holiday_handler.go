package handler

import (
	"bytes"
	"context"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-linebot/internal/dto"
	appErrors "github.com/noah-isme/sma-linebot/pkg/errors"
	"github.com/noah-isme/sma-linebot/pkg/response"
	"github.com/noah-isme/sma-linebot/web"
)

type holidayService interface {
	Form(ctx context.Context, token string) (*dto.HolidayForm, error)
	Submit(ctx context.Context, req dto.HolidaySubmitRequest) (*dto.HolidaySubmitResult, error)
}

type holidayResultView struct {
	Inserted int
	Dates    []string
	Error    string
}

// HolidayHandler serves the token-gated holiday form.
type HolidayHandler struct {
	service   holidayService
	templates *template.Template
	logger    *zap.Logger
}

// NewHolidayHandler builds a new handler.
func NewHolidayHandler(service holidayService, templates *template.Template, logger *zap.Logger) *HolidayHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HolidayHandler{service: service, templates: templates, logger: logger}
}

// Form godoc
// @Summary Show the holiday registration form
// @Tags Holidays
// @Produce html,json
// @Param token query string true "Form token"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /admin/holiday [get]
func (h *HolidayHandler) Form(c *gin.Context) {
	var query dto.HolidayFormQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.fail(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}

	form, err := h.service.Form(c.Request.Context(), query.Token)
	if err != nil {
		h.fail(c, err)
		return
	}
	if h.wantsHTML(c) {
		h.render(c, http.StatusOK, web.HolidayFormTemplate, form)
		return
	}
	response.JSON(c, http.StatusOK, form)
}

// Submit godoc
// @Summary Replace holidays from today onwards
// @Tags Holidays
// @Accept json,x-www-form-urlencoded
// @Produce html,json
// @Param payload body dto.HolidaySubmitRequest true "Token and dates"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /admin/holiday/submit [post]
func (h *HolidayHandler) Submit(c *gin.Context) {
	var req dto.HolidaySubmitRequest
	if err := c.ShouldBind(&req); err != nil {
		h.fail(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}

	result, err := h.service.Submit(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	if h.wantsHTML(c) {
		h.render(c, http.StatusOK, web.HolidayResultTemplate, holidayResultView{Inserted: result.Inserted, Dates: result.Dates})
		return
	}
	response.JSON(c, http.StatusOK, result)
}

func (h *HolidayHandler) wantsHTML(c *gin.Context) bool {
	return h.templates != nil && c.NegotiateFormat(gin.MIMEJSON, gin.MIMEHTML) == gin.MIMEHTML
}

func (h *HolidayHandler) fail(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	if appErr.Status >= http.StatusInternalServerError {
		h.logger.Error("holiday request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	if h.wantsHTML(c) {
		_ = c.Error(err)
		h.render(c, appErr.Status, web.HolidayResultTemplate, holidayResultView{Error: appErr.Message})
		return
	}
	response.Error(c, appErr)
}

func (h *HolidayHandler) render(c *gin.Context, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.Error("failed to render template", zap.String("template", name), zap.Error(err))
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message))
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}
