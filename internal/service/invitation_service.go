package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/haierkeys/interview-link-service/internal/domain"
	"github.com/haierkeys/interview-link-service/pkg/code"
	"github.com/haierkeys/interview-link-service/pkg/logger"
	"github.com/haierkeys/interview-link-service/pkg/mailer"
	"github.com/haierkeys/interview-link-service/pkg/timex"
	"github.com/haierkeys/interview-link-service/pkg/util"
	"github.com/haierkeys/interview-link-service/pkg/workerpool"

	"go.uber.org/zap"
)

// InvitationService 邀请邮件
type InvitationService interface {
	// SendBatch generates one link per candidate and mails it. Per-candidate failures
	// are reported in the results, not as an error.
	SendBatch(ctx context.Context, batch domain.InvitationBatch) ([]domain.InvitationResult, domain.InvitationSummary, error)
	// SendReminders 向即将开始且未提醒的候选人发送提醒，返回发送数量
	SendReminders(ctx context.Context, now time.Time) (int, error)
}

// InvitationServiceDeps InvitationService 依赖
type InvitationServiceDeps struct {
	Links    LinkService
	LinkRepo domain.LinkRepository
	Sessions SessionService
	Sender   mailer.Sender
	Pool     *workerpool.Pool
	Writer   KeyedWriter
	Clock    timex.Clock
	Logger   *zap.Logger
	Metrics  *Metrics
}

type invitationService struct {
	deps   InvitationServiceDeps
	config InvitationConfig
}

// NewInvitationService 创建 InvitationService
func NewInvitationService(deps InvitationServiceDeps, cfg InvitationConfig) InvitationService {
	def := DefaultServiceConfig().Invitation
	if cfg.CompanyName == "" {
		cfg.CompanyName = def.CompanyName
	}
	if cfg.DefaultDelay <= 0 {
		cfg.DefaultDelay = def.DefaultDelay
	}
	if cfg.ReminderLead <= 0 {
		cfg.ReminderLead = def.ReminderLead
	}
	if deps.Writer == nil {
		deps.Writer = inlineWriter{}
	}
	if deps.Clock == nil {
		deps.Clock = timex.System
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Pool == nil {
		deps.Pool = workerpool.New(nil, deps.Logger)
	}
	return &invitationService{deps: deps, config: cfg}
}

func (s *invitationService) SendBatch(ctx context.Context, batch domain.InvitationBatch) ([]domain.InvitationResult, domain.InvitationSummary, error) {
	if len(batch.Candidates) == 0 {
		return nil, domain.InvitationSummary{}, code.ErrorInvitationEmpty
	}

	company := strings.TrimSpace(batch.Vacancy.Company)
	if company == "" {
		company = s.config.CompanyName
	}
	date := batch.InterviewDate
	if date.IsZero() {
		date = s.deps.Clock.Now().Add(s.config.DefaultDelay)
	}

	results := make([]domain.InvitationResult, len(batch.Candidates))
	jobs := make([]func(context.Context) error, len(batch.Candidates))
	for i, c := range batch.Candidates {
		results[i].CandidateID = c.ID
		jobs[i] = func(ctx context.Context) error {
			sessionID, emailID, err := s.invite(ctx, c, batch.Vacancy.Title, company, date, batch.Duration)
			results[i].SessionID = sessionID
			results[i].EmailID = emailID
			return err
		}
	}

	errs := s.deps.Pool.RunAll(ctx, jobs)
	summary := domain.InvitationSummary{Total: len(results)}
	for i, err := range errs {
		if err != nil {
			results[i].Error = err.Error()
			summary.Failed++
			s.deps.Logger.Warn("invitation failed",
				zap.String("candidateId", results[i].CandidateID),
				zap.String(logger.FieldSessionID, results[i].SessionID),
				zap.Error(err))
		} else {
			results[i].Success = true
			summary.Sent++
		}
		s.deps.Metrics.Invitation(err == nil)
	}

	s.deps.Logger.Info("invitations sent",
		zap.Int("total", summary.Total),
		zap.Int("sent", summary.Sent),
		zap.Int("failed", summary.Failed))
	return results, summary, nil
}

func (s *invitationService) invite(ctx context.Context, c domain.Candidate, position, company string, date time.Time, duration int) (string, string, error) {
	if strings.TrimSpace(c.Email) == "" {
		return "", "", mailer.ErrNoRecipient
	}
	link, url, err := s.deps.Links.Generate(ctx, domain.GenerateLinkParams{
		CandidateEmail: c.Email,
		CandidateName:  c.Name,
		InterviewDate:  date,
		Duration:       duration,
		Position:       position,
	})
	if err != nil {
		return "", "", err
	}

	msg, err := mailer.InvitationMessage(c.Email, mailer.InvitationData{
		CandidateName: c.Name,
		Position:      position,
		Company:       company,
		Score:         c.Score,
		InterviewDate: link.InterviewDate,
		Duration:      link.Duration,
		Link:          url,
		ExpiresAt:     link.ExpiresAt,
	})
	if err != nil {
		return link.SessionID, "", err
	}

	emailID, err := s.deps.Sender.Send(ctx, msg)
	if err != nil {
		return link.SessionID, "", err
	}
	return link.SessionID, emailID, nil
}

func (s *invitationService) SendReminders(ctx context.Context, now time.Time) (int, error) {
	due, err := s.deps.LinkRepo.ListDueForReminder(ctx, now, now.Add(s.config.ReminderLead))
	if err != nil {
		return 0, err
	}

	var jobs []func(context.Context) error
	for _, link := range due {
		if link.IsExpired(now) {
			continue
		}
		if s.deps.Sessions != nil {
			status, err := s.deps.Sessions.GetStatus(ctx, link.SessionID)
			if err != nil {
				return 0, err
			}
			if status != domain.SessionScheduled {
				continue
			}
		}
		jobs = append(jobs, func(ctx context.Context) error {
			return s.remind(ctx, link, now)
		})
	}

	sent := 0
	for _, err := range s.deps.Pool.RunAll(ctx, jobs) {
		if err == nil {
			sent++
		}
	}
	return sent, nil
}

func (s *invitationService) remind(ctx context.Context, link *domain.InterviewLink, now time.Time) error {
	msg, err := mailer.ReminderMessage(link.CandidateEmail, mailer.ReminderData{
		CandidateName: link.CandidateName,
		Position:      link.Position,
		Company:       s.config.CompanyName,
		InterviewDate: link.InterviewDate,
		MinutesLeft:   max(0, util.MinutesUntil(link.InterviewDate, now)),
		Link:          s.deps.Links.BuildURL(link.SessionID, link.Token),
	})
	if err != nil {
		return err
	}

	if _, err := s.deps.Sender.Send(ctx, msg); err != nil {
		s.deps.Logger.Warn("reminder failed", zap.String(logger.FieldSessionID, link.SessionID), zap.Error(err))
		return err
	}
	err = s.deps.Writer.ExecuteWrite(ctx, link.SessionID, func() error {
		return s.deps.LinkRepo.MarkReminded(ctx, link.SessionID, now)
	})
	if errors.Is(err, domain.ErrLinkNotFound) {
		return nil
	}
	return err
}
