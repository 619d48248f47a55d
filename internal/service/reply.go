package service

import "github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

// Reply is the bot's answer to one inbound message: plain text or a
// pre-built message sent as is.
type Reply struct {
	Text    string
	Payload messaging_api.MessageInterface
}

// TextReply builds a plain text reply.
func TextReply(text string) Reply {
	return Reply{Text: text}
}

// PayloadReply builds a structured reply. text is kept for logs and tests.
func PayloadReply(text string, payload messaging_api.MessageInterface) Reply {
	return Reply{Text: text, Payload: payload}
}

// Empty reports whether there is nothing to send.
func (r Reply) Empty() bool {
	return r.Text == "" && r.Payload == nil
}

// Messages converts the reply into Messaging API messages.
func (r Reply) Messages() []messaging_api.MessageInterface {
	if r.Payload != nil {
		return []messaging_api.MessageInterface{r.Payload}
	}
	if r.Text == "" {
		return nil
	}
	return []messaging_api.MessageInterface{messaging_api.TextMessage{Text: r.Text}}
}
