package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/haierkeys/interview-link-service/internal/domain"
	pkgapp "github.com/haierkeys/interview-link-service/pkg/app"
	"github.com/haierkeys/interview-link-service/pkg/code"
	"github.com/haierkeys/interview-link-service/pkg/logger"
	"github.com/haierkeys/interview-link-service/pkg/timex"

	"go.uber.org/zap"
)

// PresenceTracker reports who is connected to a session's audio relay.
type PresenceTracker interface {
	Participants(sessionID string) int
	AIAttached(sessionID string) bool
}

// SessionService 会话生命周期
type SessionService interface {
	// GetStatus 获取会话状态，未记录时为 scheduled
	GetStatus(ctx context.Context, sessionID string) (domain.SessionStatus, error)
	// SetStatus 按状态迁移表变更状态，非法迁移返回 domain.ErrInvalidTransition
	SetStatus(ctx context.Context, sessionID string, status domain.SessionStatus) error
	Join(ctx context.Context, sessionID, token string) (*domain.RoomCredentials, error)
	End(ctx context.Context, sessionID, reason string) (*domain.InterviewResult, error)
	Cancel(ctx context.Context, sessionID string) error
	Details(ctx context.Context, sessionID string) (*domain.InterviewDetails, error)
	RoomStatus(ctx context.Context, sessionID string) (*domain.RoomStatus, error)
	Questions(ctx context.Context, sessionID string) ([]domain.InterviewQuestion, error)
	// VerifyRoomToken checks a room token handed out by Join and that the session is still running
	VerifyRoomToken(ctx context.Context, sessionID, token string) (*pkgapp.RoomEntity, error)
	// SweepExpired 将过期的 scheduled 会话标记为 expired，返回处理数量
	SweepExpired(ctx context.Context, now time.Time) (int, error)
}

type sessionService struct {
	links    LinkService
	linkRepo domain.LinkRepository
	sessions domain.SessionRepository
	tokens   pkgapp.TokenManager
	presence PresenceTracker
	writer   KeyedWriter
	clock    timex.Clock
	logger   *zap.Logger
	metrics  *Metrics
	room     RoomServiceConfig
	post     int
}

// SessionServiceDeps SessionService 依赖
type SessionServiceDeps struct {
	Links    LinkService
	LinkRepo domain.LinkRepository
	Sessions domain.SessionRepository
	Tokens   pkgapp.TokenManager
	Presence PresenceTracker
	Writer   KeyedWriter
	Clock    timex.Clock
	Logger   *zap.Logger
	Metrics  *Metrics
}

// NewSessionService 创建 SessionService
func NewSessionService(deps SessionServiceDeps, cfg *ServiceConfig) SessionService {
	def := DefaultServiceConfig()
	room := cfg.Room
	if room.TokenTTL <= 0 {
		room.TokenTTL = def.Room.TokenTTL
	}
	if room.MaxDuration <= 0 {
		room.MaxDuration = def.Room.MaxDuration
	}
	room.RoomBaseURL = strings.TrimRight(room.RoomBaseURL, "/")
	post := cfg.Link.PostJoinWindow
	if post <= 0 {
		post = def.Link.PostJoinWindow
	}

	s := &sessionService{
		links:    deps.Links,
		linkRepo: deps.LinkRepo,
		sessions: deps.Sessions,
		tokens:   deps.Tokens,
		presence: deps.Presence,
		writer:   deps.Writer,
		clock:    deps.Clock,
		logger:   deps.Logger,
		metrics:  deps.Metrics,
		room:     room,
		post:     post,
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

// ReasonCode maps a validation reason onto its response code
func ReasonCode(r domain.ValidationReason) *code.Code {
	var c *code.Code
	switch r {
	case domain.ReasonExpired:
		c = code.ErrorLinkExpired
	case domain.ReasonNotFound:
		c = code.ErrorLinkNotFound
	case domain.ReasonAlreadyUsed:
		c = code.ErrorLinkAlreadyUsed
	case domain.ReasonNotScheduled:
		c = code.ErrorLinkNotScheduled
	default:
		c = code.ErrorLinkInvalid
	}
	return c.WithReason(string(r))
}

func (s *sessionService) load(ctx context.Context, sessionID string) (*domain.Session, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return &domain.Session{SessionID: sessionID, Status: domain.SessionScheduled}, nil
	}
	return sess, err
}

func (s *sessionService) GetStatus(ctx context.Context, sessionID string) (domain.SessionStatus, error) {
	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return sess.Status, nil
}

func (s *sessionService) SetStatus(ctx context.Context, sessionID string, status domain.SessionStatus) error {
	return s.writer.ExecuteWrite(ctx, sessionID, func() error {
		_, err := s.transition(ctx, sessionID, status, nil)
		return err
	})
}

// transition must run inside writer.ExecuteWrite for sessionID
func (s *sessionService) transition(ctx context.Context, sessionID string, to domain.SessionStatus, mutate func(*domain.Session)) (*domain.Session, error) {
	if !to.Valid() {
		return nil, domain.ErrInvalidTransition
	}
	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	from := sess.Status
	if from == to {
		return sess, nil
	}
	if !domain.CanTransition(from, to) {
		s.logger.Debug("session transition rejected",
			zap.String(logger.FieldSessionID, sessionID),
			zap.String(logger.FieldFrom, string(from)),
			zap.String(logger.FieldTo, string(to)))
		return nil, domain.ErrInvalidTransition
	}
	sess.Status = to
	if mutate != nil {
		mutate(sess)
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}

	s.metrics.Transition(string(from), string(to))
	s.logger.Info("session status changed",
		zap.String(logger.FieldSessionID, sessionID),
		zap.String(logger.FieldFrom, string(from)),
		zap.String(logger.FieldTo, string(to)))
	return sess, nil
}

func (s *sessionService) Join(ctx context.Context, sessionID, token string) (*domain.RoomCredentials, error) {
	var creds *domain.RoomCredentials
	err := s.writer.ExecuteWrite(ctx, sessionID, func() error {
		res, err := s.links.Validate(ctx, sessionID, token)
		if err != nil {
			return err
		}
		if !res.Valid {
			return ReasonCode(res.Reason)
		}

		now := s.clock.Now()
		expiresAt := now.Add(s.room.TokenTTL)
		roomToken, err := s.tokens.GenerateRoom(sessionID, res.InterviewData.CandidateName, expiresAt)
		if err != nil {
			return code.ErrorTokenGenerate.WithDetails(err.Error())
		}

		if _, err := s.transition(ctx, sessionID, domain.SessionInProgress, func(sess *domain.Session) {
			sess.StartedAt = now
		}); err != nil {
			return err
		}

		creds = &domain.RoomCredentials{
			RoomURL:         s.room.RoomBaseURL + "/" + sessionID,
			Token:           roomToken,
			ExpiresAt:       expiresAt,
			EnableRecording: s.room.EnableRecording,
			MaxDuration:     s.room.MaxDuration,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return creds, nil
}

func resultForReason(reason string) domain.ResultStatus {
	switch strings.ToLower(strings.TrimSpace(reason)) {
	case "technical_issue", "technical":
		return domain.ResultTechnicalIssue
	case "terminated", "left", "cancelled":
		return domain.ResultTerminated
	}
	return domain.ResultCompleted
}

var nextSteps = map[domain.ResultStatus]string{
	domain.ResultCompleted:      "Thank you for participating. We will contact you within 2-3 business days with the results.",
	domain.ResultTerminated:     "The interview ended early. If this was not intended, please contact HR to arrange a new session.",
	domain.ResultTechnicalIssue: "We are sorry about the technical problems. Our HR team will contact you to reschedule the interview.",
}

func (s *sessionService) End(ctx context.Context, sessionID, reason string) (*domain.InterviewResult, error) {
	var result *domain.InterviewResult
	err := s.writer.ExecuteWrite(ctx, sessionID, func() error {
		cur, err := s.load(ctx, sessionID)
		if err != nil {
			return err
		}
		if cur.Status != domain.SessionInProgress {
			return domain.ErrSessionNotActive
		}

		now := s.clock.Now()
		status := resultForReason(reason)
		sess, err := s.transition(ctx, sessionID, domain.SessionCompleted, func(sess *domain.Session) {
			sess.EndedAt = now
			if !sess.StartedAt.IsZero() {
				sess.Duration = int(now.Sub(sess.StartedAt) / time.Second)
			}
			sess.Result = status
		})
		if err != nil {
			return err
		}
		result = &domain.InterviewResult{
			SessionID:   sessionID,
			Duration:    sess.Duration,
			CompletedAt: now,
			Status:      status,
			NextSteps:   nextSteps[status],
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *sessionService) Cancel(ctx context.Context, sessionID string) error {
	if _, err := s.linkRepo.GetBySessionID(ctx, sessionID); err != nil {
		return err
	}
	return s.SetStatus(ctx, sessionID, domain.SessionCancelled)
}

func (s *sessionService) Details(ctx context.Context, sessionID string) (*domain.InterviewDetails, error) {
	link, err := s.links.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	status, err := s.GetStatus(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &domain.InterviewDetails{
		SessionID:     link.SessionID,
		CandidateName: link.CandidateName,
		Position:      link.Position,
		ScheduledAt:   link.InterviewDate,
		Duration:      link.Duration,
		Status:        status,
		InterviewType: link.InterviewType,
		Difficulty:    link.Difficulty,
	}, nil
}

func (s *sessionService) RoomStatus(ctx context.Context, sessionID string) (*domain.RoomStatus, error) {
	if _, err := s.links.Get(ctx, sessionID); err != nil {
		return nil, err
	}
	status, err := s.GetStatus(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	rs := &domain.RoomStatus{IsActive: status == domain.SessionInProgress}
	if s.presence != nil {
		rs.ParticipantCount = s.presence.Participants(sessionID)
		rs.AIBotJoined = s.presence.AIAttached(sessionID)
	}
	return rs, nil
}

func (s *sessionService) Questions(ctx context.Context, sessionID string) ([]domain.InterviewQuestion, error) {
	link, err := s.links.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return questionsFor(link.InterviewType, link.Difficulty), nil
}

func (s *sessionService) VerifyRoomToken(ctx context.Context, sessionID, token string) (*pkgapp.RoomEntity, error) {
	entity, err := s.tokens.ParseRoom(token)
	if err != nil {
		return nil, err
	}
	if entity.SessionID != sessionID {
		return nil, pkgapp.ErrTokenInvalid
	}
	status, err := s.GetStatus(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if status != domain.SessionInProgress {
		return nil, domain.ErrSessionNotActive
	}
	return entity, nil
}

func (s *sessionService) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	stale, err := s.linkRepo.ListStale(ctx, now.Add(-time.Duration(s.post)*time.Minute), now)
	if err != nil {
		return 0, err
	}
	swept := 0
	for _, link := range stale {
		if err := ctx.Err(); err != nil {
			return swept, err
		}
		err := s.writer.ExecuteWrite(ctx, link.SessionID, func() error {
			sess, err := s.load(ctx, link.SessionID)
			if err != nil {
				return err
			}
			if sess.Status != domain.SessionScheduled {
				return nil
			}
			if _, err := s.transition(ctx, link.SessionID, domain.SessionExpired, nil); err != nil {
				return err
			}
			swept++
			return nil
		})
		if err != nil {
			s.logger.Warn("sweep session failed", zap.String(logger.FieldSessionID, link.SessionID), zap.Error(err))
		}
	}
	return swept, nil
}
