package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-linebot/pkg/jobs"
)

// JobTypeInboundMessage identifies queued inbound text messages.
const JobTypeInboundMessage = "line.message"

type replier interface {
	Reply(ctx context.Context, replyToken string, reply Reply) error
}

type conversation interface {
	Handle(ctx context.Context, msg InboundMessage) Reply
}

// NewMessageJobHandler runs the conversation for a queued message and sends
// the reply.
func NewMessageJobHandler(conv conversation, sender replier, logger *zap.Logger) jobs.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, job jobs.Job) error {
		msg, ok := job.Payload.(InboundMessage)
		if !ok {
			return fmt.Errorf("job %s: unexpected payload %T", job.ID, job.Payload)
		}
		reply := conv.Handle(ctx, msg)
		if reply.Empty() || msg.ReplyToken == "" {
			return nil
		}
		if err := sender.Reply(ctx, msg.ReplyToken, reply); err != nil {
			logger.Error("failed to send reply", zap.String("job_id", job.ID), zap.String("line_user_id", msg.LineUserID), zap.Error(err))
			return err
		}
		return nil
	}
}
