package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-linebot/pkg/jobs"
)

type echoConversation struct{ seen []InboundMessage }

func (e *echoConversation) Handle(ctx context.Context, msg InboundMessage) Reply {
	e.seen = append(e.seen, msg)
	return TextReply("echo:" + msg.Text)
}

type recordingReplier struct {
	tokens  []string
	replies []Reply
	err     error
}

func (r *recordingReplier) Reply(ctx context.Context, token string, reply Reply) error {
	r.tokens = append(r.tokens, token)
	r.replies = append(r.replies, reply)
	return r.err
}

func TestMessageJobHandler(t *testing.T) {
	conv := &echoConversation{}
	sender := &recordingReplier{}
	handler := NewMessageJobHandler(conv, sender, nil)

	err := handler(context.Background(), jobs.Job{ID: "1", Type: JobTypeInboundMessage, Payload: InboundMessage{LineUserID: "U1", Text: "hi", ReplyToken: "rt"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"rt"}, sender.tokens)
	assert.Equal(t, "echo:hi", sender.replies[0].Text)

	err = handler(context.Background(), jobs.Job{ID: "2", Payload: "bogus"})
	assert.Error(t, err)

	sender.err = errors.New("429")
	err = handler(context.Background(), jobs.Job{ID: "3", Payload: InboundMessage{LineUserID: "U1", Text: "hi", ReplyToken: "rt2"}})
	assert.Error(t, err)

	err = handler(context.Background(), jobs.Job{ID: "4", Payload: InboundMessage{LineUserID: "U1", Text: "hi"}})
	assert.NoError(t, err, "no reply token means nothing to send")
	assert.Len(t, conv.seen, 3)
}
