package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-linebot/internal/models"
	"github.com/noah-isme/sma-linebot/internal/repository"
)

// ConversationState is the registration state of an identity.
type ConversationState int

const (
	StateNoAccount ConversationState = iota
	StateAwaitingEntry
	StateAwaitingConfirmation
	StateRegistered
	StateUnavailable
)

func (s ConversationState) String() string {
	switch s {
	case StateNoAccount:
		return "no_account"
	case StateAwaitingEntry:
		return "awaiting_entry"
	case StateAwaitingConfirmation:
		return "awaiting_confirmation"
	case StateRegistered:
		return "registered"
	case StateUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

const (
	KeywordRegister = "登録"

	msgUnavailable    = "現在サービスを利用できません。しばらくしてから再度お試しください。"
	msgDefault        = "別のメッセージを送信してください。"
	msgInvitation     = "%sさん、はじめまして！\nご利用には登録が必要です。「" + KeywordRegister + "」と送信してください。"
	msgInstructions   = "学年・クラス・姓・名をスペース区切りで送信してください。\n例: 2 1 山田 太郎"
	msgRestart        = "\nもう一度「" + KeywordRegister + "」と送信して最初からやり直してください。"
	msgConfirm        = "以下の内容で登録しますか？\n%s\n表示名: %s"
	msgConfirmAlt     = "登録内容の確認"
	msgRegistered     = "登録が完了しました！"
	msgCancelled      = "登録をキャンセルしました。"
	msgRegisterFailed = "登録に失敗しました。お手数ですが、もう一度「" + KeywordRegister + "」と送信してください。"

	confirmYes = "はい"
	confirmNo  = "いいえ"
)

type pendingStore interface {
	Find(ctx context.Context, lineUserID string) (*models.PendingRegistration, error)
	Start(ctx context.Context, lineUserID string) error
	Fill(ctx context.Context, pending *models.PendingRegistration) error
	Delete(ctx context.Context, lineUserID string) error
}

type userCreator interface {
	Create(ctx context.Context, user *models.User) error
}

type roleResolver interface {
	Resolve(ctx context.Context, lineUserID string) (Roles, error)
}

type displayNames interface {
	DisplayName(ctx context.Context, lineUserID string) string
}

// InboundMessage is a verified text message from the messaging platform.
type InboundMessage struct {
	LineUserID string
	Text       string
	ReplyToken string
}

// ConversationService drives registration and post-registration commands.
type ConversationService struct {
	roles    roleResolver
	pending  pendingStore
	users    userCreator
	profiles displayNames
	admin    *DispatchTable
	user     *DispatchTable
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewConversationService constructs the state machine.
func NewConversationService(roles roleResolver, pending pendingStore, users userCreator, profiles displayNames, admin, user *DispatchTable, metrics *MetricsService, logger *zap.Logger) *ConversationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConversationService{
		roles:    roles,
		pending:  pending,
		users:    users,
		profiles: profiles,
		admin:    admin,
		user:     user,
		metrics:  metrics,
		logger:   logger,
	}
}

// Handle computes the reply for one inbound message.
func (s *ConversationService) Handle(ctx context.Context, msg InboundMessage) Reply {
	state, reply := s.handle(ctx, msg)
	s.metrics.RecordReply(state)
	return reply
}

func (s *ConversationService) handle(ctx context.Context, msg InboundMessage) (ConversationState, Reply) {
	text := strings.TrimSpace(msg.Text)

	roles, err := s.roles.Resolve(ctx, msg.LineUserID)
	if err != nil {
		return StateUnavailable, TextReply(msgUnavailable)
	}
	if roles.IsUser() {
		return StateRegistered, s.dispatch(ctx, msg.LineUserID, roles, text)
	}

	pending, err := s.pending.Find(ctx, msg.LineUserID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		s.logger.Error("failed to load pending registration", zap.String("line_user_id", msg.LineUserID), zap.Error(err))
		return StateUnavailable, TextReply(msgUnavailable)
	}

	switch {
	case pending == nil:
		return StateNoAccount, s.handleNoAccount(ctx, msg.LineUserID, text)
	case !pending.Filled():
		return StateAwaitingEntry, s.handleEntry(ctx, pending, text)
	default:
		return StateAwaitingConfirmation, s.handleConfirmation(ctx, pending, text)
	}
}

// dispatch consults the admin table before the user table.
func (s *ConversationService) dispatch(ctx context.Context, lineUserID string, roles Roles, text string) Reply {
	req := CommandRequest{LineUserID: lineUserID, Roles: roles}
	if roles.IsAdmin() {
		if cmd, handler, ok := s.admin.Lookup(text); ok {
			s.logger.Debug("admin command", zap.String("line_user_id", lineUserID), zap.Stringer("command", cmd))
			return handler(ctx, req)
		}
	}
	if cmd, handler, ok := s.user.Lookup(text); ok {
		s.logger.Debug("user command", zap.String("line_user_id", lineUserID), zap.Stringer("command", cmd))
		return handler(ctx, req)
	}
	return TextReply(msgDefault)
}

func (s *ConversationService) handleNoAccount(ctx context.Context, lineUserID, text string) Reply {
	if text != KeywordRegister {
		name := s.profiles.DisplayName(ctx, lineUserID)
		return TextReply(fmt.Sprintf(msgInvitation, name))
	}
	if err := s.pending.Start(ctx, lineUserID); err != nil {
		s.logger.Error("failed to start registration", zap.String("line_user_id", lineUserID), zap.Error(err))
		return TextReply(msgUnavailable)
	}
	return TextReply(msgInstructions)
}

func (s *ConversationService) handleEntry(ctx context.Context, pending *models.PendingRegistration, text string) Reply {
	result := ParseRegistration(text)
	if !result.OK() {
		s.reset(ctx, pending.LineUserID)
		return TextReply(result.Err + msgRestart)
	}

	data := result.Data
	name := s.profiles.DisplayName(ctx, pending.LineUserID)
	pending.Grade = &data.Grade
	pending.ClassNumber = &data.ClassNumber
	pending.LastName = &data.LastName
	pending.FirstName = &data.FirstName
	pending.DisplayName = &name

	if err := s.pending.Fill(ctx, pending); err != nil {
		s.logger.Error("failed to store registration candidate", zap.String("line_user_id", pending.LineUserID), zap.Error(err))
		s.reset(ctx, pending.LineUserID)
		return TextReply(msgRegisterFailed)
	}
	return confirmationReply(pending.ToUser())
}

func (s *ConversationService) handleConfirmation(ctx context.Context, pending *models.PendingRegistration, text string) Reply {
	if !isAffirmative(text) {
		s.reset(ctx, pending.LineUserID)
		return TextReply(msgCancelled)
	}

	user := pending.ToUser()
	if user.DisplayName == "" {
		user.DisplayName = s.profiles.DisplayName(ctx, pending.LineUserID)
	}
	err := s.users.Create(ctx, user)
	s.reset(ctx, pending.LineUserID)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			s.logger.Warn("registration already committed", zap.String("line_user_id", user.LineUserID))
		} else {
			s.logger.Error("failed to commit registration", zap.String("line_user_id", user.LineUserID), zap.Error(err))
		}
		return TextReply(msgRegisterFailed)
	}
	s.logger.Info("user registered", zap.String("line_user_id", user.LineUserID), zap.Int64("user_id", user.ID))
	return TextReply(msgRegistered + "\n" + registrationSummary(user))
}

// reset clears pending state. Failures are logged; the reply already tells the
// user to start over.
func (s *ConversationService) reset(ctx context.Context, lineUserID string) {
	if err := s.pending.Delete(ctx, lineUserID); err != nil {
		s.logger.Error("failed to delete pending registration", zap.String("line_user_id", lineUserID), zap.Error(err))
	}
}

func isAffirmative(text string) bool {
	text = strings.TrimSpace(text)
	return text == confirmYes || strings.EqualFold(text, "yes")
}

func confirmationReply(u *models.User) Reply {
	text := fmt.Sprintf(msgConfirm, registrationSummary(u), u.DisplayName)
	return PayloadReply(text, &messaging_api.TemplateMessage{
		AltText: msgConfirmAlt,
		Template: &messaging_api.ConfirmTemplate{
			Text: truncateRunes(text, 240),
			Actions: []messaging_api.ActionInterface{
				&messaging_api.MessageAction{Label: confirmYes, Text: confirmYes},
				&messaging_api.MessageAction{Label: confirmNo, Text: confirmNo},
			},
		},
	})
}

// truncateRunes caps confirm template text at the platform limit.
func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
