package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-linebot/internal/service"
	appErrors "github.com/noah-isme/sma-linebot/pkg/errors"
	"github.com/noah-isme/sma-linebot/pkg/jobs"
	"github.com/noah-isme/sma-linebot/pkg/response"
)

type messageQueue interface {
	Enqueue(job jobs.Job) error
}

// WebhookHandler receives Messaging API webhook callbacks.
type WebhookHandler struct {
	channelSecret string
	queue         messageQueue
	metrics       *service.MetricsService
	logger        *zap.Logger
}

// NewWebhookHandler constructs a webhook handler.
func NewWebhookHandler(channelSecret string, queue messageQueue, metrics *service.MetricsService, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{channelSecret: channelSecret, queue: queue, metrics: metrics, logger: logger}
}

// Callback godoc
// @Summary LINE webhook callback
// @Tags Webhook
// @Accept json
// @Produce json
// @Param X-Line-Signature header string true "HMAC-SHA256 signature of the body"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /callback [post]
func (h *WebhookHandler) Callback(c *gin.Context) {
	cb, err := webhook.ParseRequest(h.channelSecret, c.Request)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			h.metrics.RecordWebhookEvent("bad_signature")
			response.Error(c, appErrors.Wrap(err, "INVALID_SIGNATURE", http.StatusBadRequest, "invalid signature"))
			return
		}
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid webhook payload"))
		return
	}

	accepted := 0
	for _, event := range cb.Events {
		msg, ok := inboundMessage(event)
		if !ok {
			h.metrics.RecordWebhookEvent("ignored")
			continue
		}
		if err := h.queue.Enqueue(jobs.Job{Type: service.JobTypeInboundMessage, Key: msg.LineUserID, Payload: msg}); err != nil {
			h.metrics.RecordWebhookEvent("dropped")
			h.logger.Error("failed to enqueue webhook event", zap.String("line_user_id", msg.LineUserID), zap.Error(err))
			continue
		}
		h.metrics.RecordWebhookEvent("enqueued")
		accepted++
	}

	response.JSON(c, http.StatusOK, gin.H{"accepted": accepted})
}

// inboundMessage extracts text messages sent by a user in a 1:1 chat.
func inboundMessage(event webhook.EventInterface) (service.InboundMessage, bool) {
	e, ok := event.(webhook.MessageEvent)
	if !ok {
		return service.InboundMessage{}, false
	}
	text, ok := e.Message.(webhook.TextMessageContent)
	if !ok {
		return service.InboundMessage{}, false
	}
	source, ok := e.Source.(webhook.UserSource)
	if !ok || source.UserId == "" {
		return service.InboundMessage{}, false
	}
	return service.InboundMessage{LineUserID: source.UserId, Text: text.Text, ReplyToken: e.ReplyToken}, true
}
