package service

import (
	"context"
	"errors"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/haierkeys/interview-link-service/internal/domain"
	pkgapp "github.com/haierkeys/interview-link-service/pkg/app"
	"github.com/haierkeys/interview-link-service/pkg/logger"
	"github.com/haierkeys/interview-link-service/pkg/timex"
	"github.com/haierkeys/interview-link-service/pkg/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// KeyedWriter serializes writes that share a key (the session id).
type KeyedWriter interface {
	ExecuteWrite(ctx context.Context, key string, fn func() error) error
}

type inlineWriter struct{}

func (inlineWriter) ExecuteWrite(ctx context.Context, key string, fn func() error) error {
	return fn()
}

// LinkService issues and validates interview links
// LinkService 面试链接签发与校验
type LinkService interface {
	// Generate signs a new link, stores it and resets the session to scheduled.
	// The second result is the candidate facing URL.
	// Generate 生成链接并将会话状态初始化为 scheduled，返回链接地址
	Generate(ctx context.Context, params domain.GenerateLinkParams) (*domain.InterviewLink, string, error)

	// Validate 校验链接，只有基础设施故障才返回 error
	Validate(ctx context.Context, sessionID, token string) (*domain.LinkValidationResult, error)

	// Regenerate 为已有会话重新签发链接
	Regenerate(ctx context.Context, sessionID string) (*domain.InterviewLink, string, error)

	// Decode verifies a token. Expired tokens return their claims along with pkgapp.ErrTokenExpired.
	Decode(token string) (*domain.LinkClaims, error)

	// Get 获取已存储的链接
	Get(ctx context.Context, sessionID string) (*domain.InterviewLink, error)

	ExtractLinkParams(rawURL string) (sessionID, token string, ok bool)
	VerifyCandidateIdentity(token, email string) bool
	IsWithinScheduledWindow(interviewDate time.Time, windowMinutes int) bool
	BuildURL(sessionID, token string) string
}

type linkService struct {
	links    domain.LinkRepository
	sessions domain.SessionRepository
	tokens   pkgapp.TokenManager
	writer   KeyedWriter
	clock    timex.Clock
	logger   *zap.Logger
	metrics  *Metrics
	config   LinkServiceConfig
	sf       singleflight.Group
}

// LinkServiceDeps LinkService 依赖
type LinkServiceDeps struct {
	Links    domain.LinkRepository
	Sessions domain.SessionRepository
	Tokens   pkgapp.TokenManager
	Writer   KeyedWriter
	Clock    timex.Clock
	Logger   *zap.Logger
	Metrics  *Metrics
}

// NewLinkService 创建 LinkService
func NewLinkService(deps LinkServiceDeps, cfg LinkServiceConfig) LinkService {
	def := DefaultServiceConfig().Link
	if cfg.Expiry <= 0 {
		cfg.Expiry = def.Expiry
	}
	if cfg.PreJoinWindow <= 0 {
		cfg.PreJoinWindow = def.PreJoinWindow
	}
	if cfg.PostJoinWindow <= 0 {
		cfg.PostJoinWindow = def.PostJoinWindow
	}
	if cfg.RegenerateShift <= 0 {
		cfg.RegenerateShift = def.RegenerateShift
	}
	if cfg.DefaultDuration <= 0 {
		cfg.DefaultDuration = def.DefaultDuration
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	s := &linkService{
		links:    deps.Links,
		sessions: deps.Sessions,
		tokens:   deps.Tokens,
		writer:   deps.Writer,
		clock:    deps.Clock,
		logger:   deps.Logger,
		metrics:  deps.Metrics,
		config:   cfg,
	}
	if s.writer == nil {
		s.writer = inlineWriter{}
	}
	if s.clock == nil {
		s.clock = timex.System
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

func (s *linkService) Generate(ctx context.Context, p domain.GenerateLinkParams) (*domain.InterviewLink, string, error) {
	if p.SessionID == "" {
		p.SessionID = "interview-" + uuid.NewString()
	}
	if p.Duration <= 0 {
		p.Duration = s.config.DefaultDuration
	}
	if p.InterviewType == "" {
		p.InterviewType = domain.InterviewTypeMixed
	}
	if p.Difficulty == "" {
		p.Difficulty = domain.DifficultyMiddle
	}

	link := &domain.InterviewLink{
		SessionID:      p.SessionID,
		CandidateEmail: strings.TrimSpace(p.CandidateEmail),
		CandidateName:  strings.TrimSpace(p.CandidateName),
		InterviewDate:  p.InterviewDate.UTC(),
		Duration:       p.Duration,
		Position:       p.Position,
		InterviewType:  p.InterviewType,
		Difficulty:     p.Difficulty,
	}
	saved, err := s.issue(ctx, link)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("interview link generated",
		zap.String(logger.FieldSessionID, saved.SessionID),
		zap.String(logger.FieldEmail, saved.CandidateEmail),
		zap.Time("expiresAt", saved.ExpiresAt))
	return saved, s.BuildURL(saved.SessionID, saved.Token), nil
}

// issue signs link, stores it and puts the session back to scheduled
func (s *linkService) issue(ctx context.Context, link *domain.InterviewLink) (*domain.InterviewLink, error) {
	now := s.clock.Now()
	link.ExpiresAt = now.Add(s.config.Expiry).UTC()
	link.RemindedAt = time.Time{}

	token, err := s.tokens.GenerateInvitation(pkgapp.InvitationPayload{
		SessionID:      link.SessionID,
		CandidateEmail: link.CandidateEmail,
		CandidateName:  link.CandidateName,
		InterviewDate:  link.InterviewDate,
		Position:       link.Position,
	}, now, link.ExpiresAt)
	if err != nil {
		return nil, err
	}
	link.Token = token

	var saved *domain.InterviewLink
	err = s.writer.ExecuteWrite(ctx, link.SessionID, func() error {
		var err error
		if saved, err = s.links.Save(ctx, link); err != nil {
			return err
		}
		return s.sessions.Save(ctx, &domain.Session{SessionID: link.SessionID, Status: domain.SessionScheduled})
	})
	if err != nil {
		return nil, err
	}
	s.sf.Forget(link.SessionID)
	s.metrics.LinkGenerated()
	return saved, nil
}

func (s *linkService) Regenerate(ctx context.Context, sessionID string) (*domain.InterviewLink, string, error) {
	existing, err := s.links.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, "", err
	}

	link := *existing
	if link.InterviewDate.Before(s.clock.Now()) {
		link.InterviewDate = link.InterviewDate.Add(s.config.RegenerateShift)
	}
	saved, err := s.issue(ctx, &link)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("interview link regenerated",
		zap.String(logger.FieldSessionID, sessionID),
		zap.Time("interviewDate", saved.InterviewDate))
	return saved, s.BuildURL(saved.SessionID, saved.Token), nil
}

func (s *linkService) Decode(token string) (*domain.LinkClaims, error) {
	entity, err := s.tokens.ParseInvitation(token)
	if entity == nil {
		return nil, err
	}
	claims := &domain.LinkClaims{
		ID:             entity.ID,
		SessionID:      entity.SessionID,
		CandidateEmail: entity.CandidateEmail,
		CandidateName:  entity.CandidateName,
		InterviewDate:  entity.InterviewDate,
		Position:       entity.Position,
	}
	if entity.IssuedAt != nil {
		claims.IssuedAt = entity.IssuedAt.Time
	}
	if entity.ExpiresAt != nil {
		claims.ExpiresAt = entity.ExpiresAt.Time
	}
	return claims, err
}

// Get collapses concurrent lookups of the same session
func (s *linkService) Get(ctx context.Context, sessionID string) (*domain.InterviewLink, error) {
	v, err, _ := s.sf.Do(sessionID, func() (any, error) {
		return s.links.GetBySessionID(ctx, sessionID)
	})
	if err != nil {
		return nil, err
	}
	link := *v.(*domain.InterviewLink)
	return &link, nil
}

func (s *linkService) Validate(ctx context.Context, sessionID, token string) (*domain.LinkValidationResult, error) {
	res, err := s.validate(ctx, sessionID, token)
	if err != nil {
		s.logger.Error("link validation failed", zap.String(logger.FieldSessionID, sessionID), zap.Error(err))
		return nil, err
	}
	if res.Valid {
		s.metrics.Validation("valid")
	} else {
		s.metrics.Validation(string(res.Reason))
		s.logger.Debug("link rejected",
			zap.String(logger.FieldSessionID, sessionID),
			zap.String(logger.FieldReason, string(res.Reason)))
	}
	return res, nil
}

func (s *linkService) validate(ctx context.Context, sessionID, token string) (*domain.LinkValidationResult, error) {
	claims, err := s.Decode(token)
	switch {
	case errors.Is(err, pkgapp.ErrTokenExpired):
		return domain.Rejected(domain.ReasonExpired), nil
	case err != nil:
		return domain.Rejected(domain.ReasonInvalid), nil
	case claims.SessionID != sessionID:
		return domain.Rejected(domain.ReasonInvalid), nil
	}

	link, err := s.Get(ctx, sessionID)
	if errors.Is(err, domain.ErrLinkNotFound) {
		return domain.Rejected(domain.ReasonNotFound), nil
	}
	if err != nil {
		return nil, err
	}
	// A regenerated link supersedes every token issued before it.
	if link.Token != token {
		return domain.Rejected(domain.ReasonInvalid), nil
	}

	now := s.clock.Now()
	if link.IsExpired(now) {
		return domain.Rejected(domain.ReasonExpired), nil
	}

	status, err := s.status(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	switch status {
	case domain.SessionInProgress, domain.SessionCompleted:
		return domain.Rejected(domain.ReasonAlreadyUsed), nil
	case domain.SessionCancelled, domain.SessionExpired:
		return domain.Rejected(domain.ReasonExpired), nil
	}

	timeUntil := util.MinutesUntil(link.InterviewDate, now)
	if timeUntil > s.config.PreJoinWindow {
		return &domain.LinkValidationResult{
			Valid:              false,
			Reason:             domain.ReasonNotScheduled,
			InterviewData:      link,
			TimeUntilInterview: timeUntil,
		}, nil
	}
	if timeUntil < -s.config.PostJoinWindow {
		return &domain.LinkValidationResult{
			Valid:         false,
			Reason:        domain.ReasonExpired,
			InterviewData: link,
		}, nil
	}

	return &domain.LinkValidationResult{
		Valid:              true,
		InterviewData:      link,
		TimeUntilInterview: max(0, timeUntil),
	}, nil
}

func (s *linkService) status(ctx context.Context, sessionID string) (domain.SessionStatus, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return domain.SessionScheduled, nil
	}
	if err != nil {
		return "", err
	}
	return sess.Status, nil
}

// ExtractLinkParams 从链接中解析 sessionId 与 token
func (s *linkService) ExtractLinkParams(rawURL string) (string, string, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", "", false
	}
	sessionID := path.Base(strings.TrimRight(u.Path, "/"))
	token := u.Query().Get("token")
	if sessionID == "" || sessionID == "." || sessionID == "/" || token == "" {
		return "", "", false
	}
	return sessionID, token, true
}

// VerifyCandidateIdentity 校验 token 中的邮箱与候选人邮箱一致
func (s *linkService) VerifyCandidateIdentity(token, email string) bool {
	claims, err := s.Decode(token)
	if err != nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(claims.CandidateEmail), strings.TrimSpace(email))
}

func (s *linkService) IsWithinScheduledWindow(interviewDate time.Time, windowMinutes int) bool {
	diff := util.MinutesUntil(interviewDate, s.clock.Now())
	return diff <= windowMinutes && diff >= -s.config.PostJoinWindow
}

func (s *linkService) BuildURL(sessionID, token string) string {
	return s.config.BaseURL + "/interview/" + url.PathEscape(sessionID) + "?token=" + url.QueryEscape(token)
}
