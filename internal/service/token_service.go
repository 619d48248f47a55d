package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"github.com/noah-isme/sma-linebot/internal/models"
	appErrors "github.com/noah-isme/sma-linebot/pkg/errors"
)

const nonceBytes = 32

type tokenRepository interface {
	Create(ctx context.Context, token *models.AuthToken) error
	FindByHash(ctx context.Context, tokenHash string) (*models.AuthToken, error)
	Claim(ctx context.Context, tokenHash string) (*models.AuthToken, error)
	Delete(ctx context.Context, tokenHash string) error
}

// TokenConfig configures token signing.
type TokenConfig struct {
	Secret string
	Issuer string
}

// tokenClaims carries the nonce in jti and the subject id in sub.
type tokenClaims struct {
	Kind models.TokenSubjectKind `json:"knd"`
	jwt.RegisteredClaims
}

// VerifiedToken is the identity a valid token authenticates.
type VerifiedToken struct {
	Subject   models.TokenSubject
	ExpiresAt time.Time
}

// TokenService issues signed single-use tokens backed by the auth_tokens table.
type TokenService struct {
	repo    tokenRepository
	config  TokenConfig
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
	random  io.Reader
}

// NewTokenService constructs a token service.
func NewTokenService(repo tokenRepository, config TokenConfig, metrics *MetricsService, logger *zap.Logger) *TokenService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenService{
		repo:    repo,
		config:  config,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
		random:  rand.Reader,
	}
}

// WithClock overrides the time source.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	s.now = now
	return s
}

// Issue mints a token for subject that expires after ttl. Nothing is returned
// unless the nonce was persisted.
func (s *TokenService) Issue(ctx context.Context, subject models.TokenSubject, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		return "", time.Time{}, appErrors.Clone(appErrors.ErrValidation, "token ttl must be positive")
	}
	buf := make([]byte, nonceBytes)
	if _, err := io.ReadFull(s.random, buf); err != nil {
		s.metrics.RecordTokenAction("issue", "error")
		return "", time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate token nonce")
	}
	nonce := hex.EncodeToString(buf)

	// JWT dates have second precision; keep the stored expiry identical.
	issuedAt := s.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(ttl)

	claims := &tokenClaims{
		Kind: subject.Kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        nonce,
			Issuer:    s.config.Issuer,
			Subject:   strconv.FormatInt(subject.ID, 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
	if err != nil {
		s.metrics.RecordTokenAction("issue", "error")
		return "", time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign token")
	}

	record := &models.AuthToken{TokenHash: hashNonce(nonce), CreatedAt: issuedAt, ExpiresAt: expiresAt}
	switch subject.Kind {
	case models.TokenSubjectAdmin:
		record.AdminID = &subject.ID
	case models.TokenSubjectUser:
		record.UserID = &subject.ID
	default:
		return "", time.Time{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown token subject kind %q", subject.Kind))
	}

	if err := s.repo.Create(ctx, record); err != nil {
		s.metrics.RecordTokenAction("issue", "error")
		s.logger.Error("failed to persist auth token", zap.String("kind", string(subject.Kind)), zap.Int64("subject_id", subject.ID), zap.Error(err))
		return "", time.Time{}, appErrors.Storage(err, "failed to store token")
	}
	s.metrics.RecordTokenAction("issue", "ok")
	return signed, expiresAt, nil
}

// Verify checks a token without consuming it. An expired token is deleted.
func (s *TokenService) Verify(ctx context.Context, raw string) (*VerifiedToken, error) {
	verified, err := s.verify(ctx, raw)
	s.metrics.RecordTokenAction("verify", outcome(err))
	return verified, err
}

func (s *TokenService) verify(ctx context.Context, raw string) (*VerifiedToken, error) {
	if raw == "" {
		return nil, appErrors.ErrTokenMissing
	}
	claims, err := s.parse(raw, jwt.WithTimeFunc(s.now))
	if err != nil {
		if !errors.Is(err, jwt.ErrTokenExpired) {
			return nil, appErrors.Wrap(err, appErrors.ErrTokenInvalid.Code, appErrors.ErrTokenInvalid.Status, appErrors.ErrTokenInvalid.Message)
		}
		// Signature is re-checked before the row is touched.
		if expired, perr := s.parse(raw, jwt.WithoutClaimsValidation()); perr == nil {
			if derr := s.repo.Delete(ctx, hashNonce(expired.ID)); derr != nil {
				s.logger.Warn("failed to delete expired auth token", zap.Error(derr))
			}
		}
		return nil, appErrors.ErrTokenExpired
	}

	hash := hashNonce(claims.ID)
	record, err := s.repo.FindByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrTokenInvalid
		}
		return nil, appErrors.Storage(err, "failed to load token")
	}

	expiresAt := record.ExpiresAt.UTC()
	if !s.now().Before(expiresAt) {
		if err := s.repo.Delete(ctx, hash); err != nil {
			s.logger.Warn("failed to delete expired auth token", zap.Error(err))
		}
		return nil, appErrors.ErrTokenExpired
	}
	return matchSubject(claims, record)
}

// Consume atomically claims the token. The row is deleted whatever the
// outcome, so a token can authenticate at most one consume call.
func (s *TokenService) Consume(ctx context.Context, raw string) (*VerifiedToken, error) {
	verified, err := s.consume(ctx, raw)
	s.metrics.RecordTokenAction("consume", outcome(err))
	return verified, err
}

func (s *TokenService) consume(ctx context.Context, raw string) (*VerifiedToken, error) {
	if raw == "" {
		return nil, appErrors.ErrTokenMissing
	}
	claims, err := s.parse(raw, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrTokenInvalid.Code, appErrors.ErrTokenInvalid.Status, appErrors.ErrTokenInvalid.Message)
	}

	record, err := s.repo.Claim(ctx, hashNonce(claims.ID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrTokenInvalid
		}
		return nil, appErrors.Storage(err, "failed to claim token")
	}

	now := s.now()
	if !now.Before(record.ExpiresAt.UTC()) || claims.ExpiresAt == nil || !now.Before(claims.ExpiresAt.Time) {
		return nil, appErrors.ErrTokenExpired
	}
	return matchSubject(claims, record)
}

func (s *TokenService) parse(raw string, opts ...jwt.ParserOption) (*tokenClaims, error) {
	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.config.Secret), nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.ID == "" {
		return nil, errors.New("token has no nonce")
	}
	return claims, nil
}

func matchSubject(claims *tokenClaims, record *models.AuthToken) (*VerifiedToken, error) {
	subject, ok := record.Subject()
	if !ok || subject.Kind != claims.Kind || strconv.FormatInt(subject.ID, 10) != claims.Subject {
		return nil, appErrors.ErrTokenInvalid
	}
	return &VerifiedToken{Subject: subject, ExpiresAt: record.ExpiresAt.UTC()}, nil
}

func hashNonce(nonce string) string {
	sum := blake2b.Sum256([]byte(nonce))
	return hex.EncodeToString(sum[:])
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, appErrors.ErrTokenExpired):
		return "expired"
	case errors.Is(err, appErrors.ErrTokenMissing):
		return "missing"
	case errors.Is(err, appErrors.ErrTokenInvalid):
		return "invalid"
	default:
		return "error"
	}
}
