package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-linebot/internal/dto"
	"github.com/noah-isme/sma-linebot/internal/models"
	appErrors "github.com/noah-isme/sma-linebot/pkg/errors"
)

type holidayStore interface {
	List(ctx context.Context) ([]models.Holiday, error)
	ReplaceFrom(ctx context.Context, from time.Time, dates []time.Time) (int, error)
}

type tokenGate interface {
	Verify(ctx context.Context, raw string) (*VerifiedToken, error)
	Consume(ctx context.Context, raw string) (*VerifiedToken, error)
}

// HolidayService implements the token-gated holiday form.
type HolidayService struct {
	tokens    tokenGate
	store     holidayStore
	validator *validator.Validate
	location  *time.Location
	logger    *zap.Logger
	now       func() time.Time
}

// NewHolidayService constructs the holiday workflow. location defines "today".
func NewHolidayService(tokens tokenGate, store holidayStore, validate *validator.Validate, location *time.Location, logger *zap.Logger) *HolidayService {
	if validate == nil {
		validate = validator.New()
	}
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HolidayService{tokens: tokens, store: store, validator: validate, location: location, logger: logger, now: time.Now}
}

// WithClock overrides the time source.
func (s *HolidayService) WithClock(now func() time.Time) *HolidayService {
	s.now = now
	return s
}

// Form verifies the token without consuming it and lists existing holidays.
func (s *HolidayService) Form(ctx context.Context, token string) (*dto.HolidayForm, error) {
	verified, err := s.tokens.Verify(ctx, token)
	if err != nil {
		return nil, err
	}
	if verified.Subject.Kind != models.TokenSubjectAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, msgNotAdmin)
	}

	holidays, err := s.store.List(ctx)
	if err != nil {
		s.logger.Error("failed to list holidays", zap.Error(err))
		return nil, appErrors.Storage(err, "休日情報の取得に失敗しました。")
	}
	dates := make([]string, 0, len(holidays))
	for _, h := range holidays {
		dates = append(dates, h.Date.Format(models.DateLayout))
	}
	return &dto.HolidayForm{
		Token:     token,
		Dates:     dates,
		Today:     calendarDate(s.now(), s.location).Format(models.DateLayout),
		ExpiresAt: verified.ExpiresAt,
	}, nil
}

// Submit consumes the token, then replaces every holiday from today onwards
// with the submitted dates. The token is burned even when validation fails.
func (s *HolidayService) Submit(ctx context.Context, req dto.HolidaySubmitRequest) (*dto.HolidaySubmitResult, error) {
	verified, err := s.tokens.Consume(ctx, req.Token)
	if err != nil {
		return nil, err
	}
	if verified.Subject.Kind != models.TokenSubjectAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, msgNotAdmin)
	}

	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "日付は YYYY-MM-DD 形式で指定してください。")
	}

	today := calendarDate(s.now(), s.location)
	dates, err := normaliseDates(req.Dates, today)
	if err != nil {
		return nil, err
	}

	inserted, err := s.store.ReplaceFrom(ctx, today, dates)
	if err != nil {
		s.logger.Error("failed to replace holidays", zap.Int64("admin_id", verified.Subject.ID), zap.Error(err))
		return nil, appErrors.Storage(err, "休日の登録に失敗しました。")
	}

	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.Format(models.DateLayout))
	}
	s.logger.Info("holidays replaced", zap.Int64("admin_id", verified.Subject.ID), zap.Int("inserted", inserted), zap.String("from", today.Format(models.DateLayout)))
	return &dto.HolidaySubmitResult{Inserted: inserted, Dates: out}, nil
}

// normaliseDates parses, de-duplicates and sorts dates, rejecting any before today.
func normaliseDates(raw []string, today time.Time) ([]time.Time, error) {
	seen := make(map[string]struct{}, len(raw))
	dates := make([]time.Time, 0, len(raw))
	var past []string
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		d, err := time.ParseInLocation(models.DateLayout, r, time.UTC)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("日付 %q が不正です。", r))
		}
		if d.Before(today) {
			past = append(past, r)
			continue
		}
		dates = append(dates, d)
	}
	if len(past) > 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("過去の日付は登録できません: %s", strings.Join(past, ", ")))
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, nil
}

// calendarDate returns the date of t in loc as midnight UTC, the
// representation used for DATE columns.
func calendarDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
