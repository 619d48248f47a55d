package service

import (
	"context"
	"fmt"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// LineGateway sends replies and reads profiles through the Messaging API.
type LineGateway struct {
	api *messaging_api.MessagingApiAPI
}

// NewLineGateway constructs a gateway around an API client.
func NewLineGateway(api *messaging_api.MessagingApiAPI) *LineGateway {
	return &LineGateway{api: api}
}

// NewLineGatewayFromToken builds the API client from a channel access token.
func NewLineGatewayFromToken(channelAccessToken string, opts ...messaging_api.MessagingApiAPIOption) (*LineGateway, error) {
	api, err := messaging_api.NewMessagingApiAPI(channelAccessToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("create messaging api client: %w", err)
	}
	return NewLineGateway(api), nil
}

// DisplayName fetches the user's LINE display name.
func (g *LineGateway) DisplayName(ctx context.Context, lineUserID string) (string, error) {
	profile, err := g.api.WithContext(ctx).GetProfile(lineUserID)
	if err != nil {
		return "", fmt.Errorf("get profile: %w", err)
	}
	return profile.DisplayName, nil
}

// Reply answers an event using its one-time reply token.
func (g *LineGateway) Reply(ctx context.Context, replyToken string, reply Reply) error {
	messages := reply.Messages()
	if len(messages) == 0 {
		return nil
	}
	if _, err := g.api.WithContext(ctx).ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages:   messages,
	}); err != nil {
		return fmt.Errorf("reply message: %w", err)
	}
	return nil
}
