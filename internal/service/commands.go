package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-linebot/internal/models"
)

// Command identifies a post-registration action.
type Command int

const (
	CommandUnknown Command = iota
	CommandHolidayRegistration
	CommandAdminMenu
	CommandAdminHelp
	CommandHelp
	CommandProfile
	CommandUpcomingHolidays
)

var commandNames = map[Command]string{
	CommandUnknown:             "unknown",
	CommandHolidayRegistration: "holiday_registration",
	CommandAdminMenu:           "admin_menu",
	CommandAdminHelp:           "admin_help",
	CommandHelp:                "help",
	CommandProfile:             "profile",
	CommandUpcomingHolidays:    "upcoming_holidays",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("command(%d)", int(c))
}

// Keyword binds chat text to a command.
type Keyword struct {
	Text    string
	Command Command
}

// CommandRequest is what a command handler receives.
type CommandRequest struct {
	LineUserID string
	Roles      Roles
}

// CommandHandler produces the reply for a command.
type CommandHandler func(ctx context.Context, req CommandRequest) Reply

// DispatchTable maps keywords to command handlers.
type DispatchTable struct {
	name     string
	keywords []Keyword
	commands map[string]Command
	handlers map[Command]CommandHandler
}

// NewDispatchTable validates that every keyword is unique and has a handler.
func NewDispatchTable(name string, keywords []Keyword, handlers map[Command]CommandHandler) (*DispatchTable, error) {
	t := &DispatchTable{
		name:     name,
		commands: make(map[string]Command, len(keywords)),
		handlers: make(map[Command]CommandHandler, len(handlers)),
	}
	for _, kw := range keywords {
		text := strings.TrimSpace(kw.Text)
		if text == "" {
			return nil, fmt.Errorf("%s dispatch table: empty keyword for %s", name, kw.Command)
		}
		if _, dup := t.commands[text]; dup {
			return nil, fmt.Errorf("%s dispatch table: duplicate keyword %q", name, text)
		}
		handler, ok := handlers[kw.Command]
		if !ok || handler == nil {
			return nil, fmt.Errorf("%s dispatch table: keyword %q bound to %s has no handler", name, text, kw.Command)
		}
		t.commands[text] = kw.Command
		t.handlers[kw.Command] = handler
		t.keywords = append(t.keywords, Keyword{Text: text, Command: kw.Command})
	}
	return t, nil
}

// Lookup returns the command bound to text, matched after trimming.
func (t *DispatchTable) Lookup(text string) (Command, CommandHandler, bool) {
	if t == nil {
		return CommandUnknown, nil, false
	}
	cmd, ok := t.commands[strings.TrimSpace(text)]
	if !ok {
		return CommandUnknown, nil, false
	}
	return cmd, t.handlers[cmd], true
}

// Keywords lists the table's keywords in declaration order.
func (t *DispatchTable) Keywords() []Keyword {
	if t == nil {
		return nil
	}
	out := make([]Keyword, len(t.keywords))
	copy(out, t.keywords)
	return out
}

const (
	KeywordHolidayRegistration = "休日登録"
	KeywordAdminMenu           = "管理メニュー"
	KeywordHelp                = "ヘルプ"
	KeywordProfile             = "登録情報"
	KeywordUpcomingHolidays    = "休日"
)

// AdminKeywords is the admin dispatch table, consulted first.
var AdminKeywords = []Keyword{
	{Text: KeywordHolidayRegistration, Command: CommandHolidayRegistration},
	{Text: KeywordAdminMenu, Command: CommandAdminMenu},
	{Text: KeywordHelp, Command: CommandAdminHelp},
}

// UserKeywords is the registered user dispatch table.
var UserKeywords = []Keyword{
	{Text: KeywordHelp, Command: CommandHelp},
	{Text: KeywordProfile, Command: CommandProfile},
	{Text: KeywordUpcomingHolidays, Command: CommandUpcomingHolidays},
}

const (
	msgTokenFailed      = "トークン生成に失敗しました。"
	msgNotAdmin         = "管理者として登録されていません。"
	msgHolidayFormLink  = "休日登録フォームはこちら：\n%s"
	msgNoHolidays       = "予定されている休日はありません。"
	msgHolidayLoadError = "休日情報を取得できませんでした。しばらくしてから再度お試しください。"
	upcomingHolidayMax  = 10
)

type tokenIssuer interface {
	Issue(ctx context.Context, subject models.TokenSubject, ttl time.Duration) (string, time.Time, error)
}

type upcomingHolidayLister interface {
	ListFrom(ctx context.Context, from time.Time, limit int) ([]models.Holiday, error)
}

// CommandConfig carries the settings command handlers need.
type CommandConfig struct {
	HostURL         string
	HolidayTokenTTL time.Duration
	Location        *time.Location
}

// Commands owns the handlers behind both dispatch tables.
type Commands struct {
	tokens   tokenIssuer
	holidays upcomingHolidayLister
	config   CommandConfig
	logger   *zap.Logger
	now      func() time.Time
}

// NewCommands constructs the command handlers.
func NewCommands(tokens tokenIssuer, holidays upcomingHolidayLister, config CommandConfig, logger *zap.Logger) *Commands {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Location == nil {
		config.Location = time.UTC
	}
	if config.HolidayTokenTTL <= 0 {
		config.HolidayTokenTTL = 10 * time.Minute
	}
	config.HostURL = strings.TrimRight(config.HostURL, "/")
	return &Commands{tokens: tokens, holidays: holidays, config: config, logger: logger, now: time.Now}
}

// WithClock overrides the time source.
func (c *Commands) WithClock(now func() time.Time) *Commands {
	c.now = now
	return c
}

// Tables builds the admin and user dispatch tables.
func (c *Commands) Tables() (admin *DispatchTable, user *DispatchTable, err error) {
	admin, err = NewDispatchTable("admin", AdminKeywords, map[Command]CommandHandler{
		CommandHolidayRegistration: c.holidayRegistration,
		CommandAdminMenu:           c.adminMenu,
		CommandAdminHelp:           c.adminHelp,
	})
	if err != nil {
		return nil, nil, err
	}
	user, err = NewDispatchTable("user", UserKeywords, map[Command]CommandHandler{
		CommandHelp:             c.help,
		CommandProfile:          c.profile,
		CommandUpcomingHolidays: c.upcomingHolidays,
	})
	if err != nil {
		return nil, nil, err
	}
	return admin, user, nil
}

func (c *Commands) holidayRegistration(ctx context.Context, req CommandRequest) Reply {
	if !req.Roles.IsAdmin() {
		return TextReply(msgNotAdmin)
	}
	subject := models.TokenSubject{Kind: models.TokenSubjectAdmin, ID: req.Roles.Admin.ID}
	token, _, err := c.tokens.Issue(ctx, subject, c.config.HolidayTokenTTL)
	if err != nil {
		c.logger.Error("failed to issue holiday form token", zap.Int64("admin_id", subject.ID), zap.Error(err))
		return TextReply(msgTokenFailed)
	}
	link := fmt.Sprintf("%s/admin/holiday?token=%s", c.config.HostURL, url.QueryEscape(token))
	return TextReply(fmt.Sprintf(msgHolidayFormLink, link))
}

func (c *Commands) adminMenu(ctx context.Context, req CommandRequest) Reply {
	text := "管理メニューです。操作を選んでください。"
	items := make([]messaging_api.QuickReplyItem, 0, len(AdminKeywords))
	for _, kw := range AdminKeywords {
		if kw.Command == CommandAdminMenu {
			continue
		}
		items = append(items, messaging_api.QuickReplyItem{
			Type:   "action",
			Action: &messaging_api.MessageAction{Label: kw.Text, Text: kw.Text},
		})
	}
	return PayloadReply(text, messaging_api.TextMessage{
		Text:       text,
		QuickReply: &messaging_api.QuickReply{Items: items},
	})
}

func (c *Commands) adminHelp(ctx context.Context, req CommandRequest) Reply {
	return TextReply(strings.Join([]string{
		"【管理者コマンド】",
		"・" + KeywordHolidayRegistration + "：休日登録フォームのリンクを発行します",
		"・" + KeywordAdminMenu + "：管理メニューを表示します",
		"【利用者コマンド】",
		"・" + KeywordProfile + "：登録情報を表示します",
		"・" + KeywordUpcomingHolidays + "：今後の休日を表示します",
	}, "\n"))
}

func (c *Commands) help(ctx context.Context, req CommandRequest) Reply {
	return TextReply(strings.Join([]string{
		"【利用できるコマンド】",
		"・" + KeywordProfile + "：登録情報を表示します",
		"・" + KeywordUpcomingHolidays + "：今後の休日を表示します",
		"・" + KeywordHelp + "：このメッセージを表示します",
	}, "\n"))
}

func (c *Commands) profile(ctx context.Context, req CommandRequest) Reply {
	if !req.Roles.IsUser() {
		return TextReply(msgDefault)
	}
	return TextReply("【登録情報】\n" + registrationSummary(req.Roles.User))
}

func (c *Commands) upcomingHolidays(ctx context.Context, req CommandRequest) Reply {
	today := calendarDate(c.now(), c.config.Location)
	holidays, err := c.holidays.ListFrom(ctx, today, upcomingHolidayMax)
	if err != nil {
		c.logger.Error("failed to list upcoming holidays", zap.Error(err))
		return TextReply(msgHolidayLoadError)
	}
	if len(holidays) == 0 {
		return TextReply(msgNoHolidays)
	}
	lines := []string{"【今後の休日】"}
	for _, h := range holidays {
		line := h.Date.Format(models.DateLayout)
		if h.Note != "" {
			line += " " + h.Note
		}
		lines = append(lines, line)
	}
	return TextReply(strings.Join(lines, "\n"))
}

func registrationSummary(u *models.User) string {
	return fmt.Sprintf("学年: %d\nクラス: %d\n氏名: %s", u.Grade, u.ClassNumber, u.FullName())
}
