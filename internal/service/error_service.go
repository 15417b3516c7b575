package service

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/haierkeys/interview-link-service/internal/domain"
	"github.com/haierkeys/interview-link-service/pkg/logger"
	"github.com/haierkeys/interview-link-service/pkg/timex"
	"github.com/haierkeys/interview-link-service/pkg/util"

	"go.uber.org/zap"
)

// ErrorService catalogues interview errors and keeps a bounded history
// ErrorService 面试错误目录与有界历史
type ErrorService interface {
	// Create builds an error from the catalog and records it
	// Create 根据目录创建错误并记录到历史
	Create(t domain.InterviewErrorType, details string) domain.InterviewError
	// CreateForSession 同 Create，附带会话 ID
	CreateForSession(sessionID string, t domain.InterviewErrorType, details string) domain.InterviewError
	Record(e domain.InterviewError)
	History() []domain.InterviewError
	Clear()
	// RecentOfType within <= 0 uses the configured window (5m)
	RecentOfType(t domain.InterviewErrorType, within time.Duration) []domain.InterviewError
	HasRecent(t domain.InterviewErrorType, within time.Duration) bool
	ClassifyRoomError(msg string) domain.InterviewError
	ClassifyRoomErrorForSession(sessionID, msg string) domain.InterviewError
	// CheckBrowserCompatibility returns nil for supported browsers
	CheckBrowserCompatibility(userAgent string) *domain.InterviewError
	ReportIssue(ctx context.Context, issue domain.TechnicalIssue) (*domain.TechnicalIssue, error)
}

type errorService struct {
	issues  domain.IssueRepository
	clock   timex.Clock
	logger  *zap.Logger
	metrics *Metrics
	config  ErrorHistoryConfig

	mu      sync.RWMutex
	history []domain.InterviewError
}

// NewErrorService 创建 ErrorService
func NewErrorService(issues domain.IssueRepository, clock timex.Clock, log *zap.Logger, metrics *Metrics, cfg ErrorHistoryConfig) ErrorService {
	if cfg.Size <= 0 {
		cfg.Size = DefaultServiceConfig().ErrorHistory.Size
	}
	if cfg.RecentWindow <= 0 {
		cfg.RecentWindow = DefaultServiceConfig().ErrorHistory.RecentWindow
	}
	if clock == nil {
		clock = timex.System
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &errorService{
		issues:  issues,
		clock:   clock,
		logger:  log,
		metrics: metrics,
		config:  cfg,
	}
}

func (s *errorService) Create(t domain.InterviewErrorType, details string) domain.InterviewError {
	return s.CreateForSession("", t, details)
}

func (s *errorService) CreateForSession(sessionID string, t domain.InterviewErrorType, details string) domain.InterviewError {
	meta, ok := domain.LookupErrorMeta(t)
	if !ok {
		t = domain.ErrTypeUnknown
	}
	if details == "" {
		details = meta.Details
	}
	e := domain.InterviewError{
		Type:        t,
		Message:     meta.Message,
		Details:     details,
		Recoverable: meta.Recoverable,
		Reportable:  meta.Reportable,
		Timestamp:   s.clock.Now(),
		SessionID:   sessionID,
	}
	s.Record(e)
	return e
}

// Record appends e; once the history is full the oldest entry is dropped
func (s *errorService) Record(e domain.InterviewError) {
	if e.Timestamp.IsZero() {
		e.Timestamp = s.clock.Now()
	}

	s.mu.Lock()
	s.history = append(s.history, e)
	if over := len(s.history) - s.config.Size; over > 0 {
		s.history = append([]domain.InterviewError(nil), s.history[over:]...)
	}
	s.mu.Unlock()

	s.metrics.InterviewError(string(e.Type))
	fields := []zap.Field{
		zap.String(logger.FieldErrorType, string(e.Type)),
		zap.String(logger.FieldSessionID, e.SessionID),
		zap.String("details", e.Details),
	}
	if e.Reportable {
		s.logger.Warn(e.Message, fields...)
	} else {
		s.logger.Info(e.Message, fields...)
	}
}

func (s *errorService) History() []domain.InterviewError {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.InterviewError(nil), s.history...)
}

func (s *errorService) Clear() {
	s.mu.Lock()
	s.history = nil
	s.mu.Unlock()
}

func (s *errorService) RecentOfType(t domain.InterviewErrorType, within time.Duration) []domain.InterviewError {
	if within <= 0 {
		within = s.config.RecentWindow
	}
	cutoff := s.clock.Now().Add(-within)

	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.InterviewError
	for _, e := range s.history {
		if e.Type == t && e.Timestamp.After(cutoff) {
			out = append(out, e)
		}
	}
	return out
}

func (s *errorService) HasRecent(t domain.InterviewErrorType, within time.Duration) bool {
	return len(s.RecentOfType(t, within)) > 0
}

// ClassifyRoomError maps a video-room vendor error message onto a catalog type
func (s *errorService) ClassifyRoomError(msg string) domain.InterviewError {
	return s.ClassifyRoomErrorForSession("", msg)
}

func (s *errorService) ClassifyRoomErrorForSession(sessionID, msg string) domain.InterviewError {
	t, details := classifyRoomMessage(msg)
	return s.CreateForSession(sessionID, t, details)
}

func classifyRoomMessage(msg string) (domain.InterviewErrorType, string) {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "room is full"):
		return domain.ErrTypeRoomFull, ""
	case strings.Contains(lower, "not found"):
		return domain.ErrTypeRoomNotFound, ""
	case strings.Contains(lower, "token") || strings.Contains(lower, "unauthorized"):
		return domain.ErrTypeRoomTokenInvalid, ""
	case strings.Contains(lower, "network") || strings.Contains(lower, "connection"):
		return domain.ErrTypeConnectionLost, ""
	}
	return domain.ErrTypeUnknown, msg
}

var (
	chromeVersion  = regexp.MustCompile(`chrome/(\d+)`)
	firefoxVersion = regexp.MustCompile(`firefox/(\d+)`)
)

const (
	minChromeVersion  = 80
	minFirefoxVersion = 75
)

func (s *errorService) CheckBrowserCompatibility(userAgent string) *domain.InterviewError {
	ua := strings.ToLower(userAgent)
	isChrome := strings.Contains(ua, "chrome") && !strings.Contains(ua, "edge")
	isFirefox := strings.Contains(ua, "firefox")
	isSafari := strings.Contains(ua, "safari") && !strings.Contains(ua, "chrome")
	isEdge := strings.Contains(ua, "edge")

	if !isChrome && !isFirefox && !isSafari && !isEdge {
		e := s.Create(domain.ErrTypeBrowserIncompat, "")
		return &e
	}
	if isChrome && majorVersion(chromeVersion, ua) < minChromeVersion ||
		isFirefox && majorVersion(firefoxVersion, ua) < minFirefoxVersion {
		e := s.Create(domain.ErrTypeBrowserOutdated, "")
		return &e
	}
	return nil
}

// majorVersion returns 0 when the agent carries no parsable version
func majorVersion(re *regexp.Regexp, ua string) int {
	m := re.FindStringSubmatch(ua)
	if len(m) < 2 {
		return 0
	}
	v, _ := strconv.Atoi(m[1])
	return v
}

func (s *errorService) ReportIssue(ctx context.Context, issue domain.TechnicalIssue) (*domain.TechnicalIssue, error) {
	now := s.clock.Now()
	switch issue.IssueType {
	case domain.IssueAudio, domain.IssueConnection, domain.IssueBrowser, domain.IssueOther:
	default:
		issue.IssueType = domain.IssueOther
	}
	issue.TicketID = "TICKET-" + strconv.FormatInt(now.UnixMilli(), 10) + "-" + util.GetRandomUpperString(5)
	issue.CreatedAt = now

	if err := s.issues.Create(ctx, &issue); err != nil {
		return nil, err
	}

	s.Record(domain.InterviewError{
		Type:        issueErrorType(issue.IssueType),
		Message:     "Technical issue reported: " + string(issue.IssueType),
		Details:     issue.Description,
		Recoverable: true,
		Reportable:  true,
		Timestamp:   now,
		SessionID:   issue.SessionID,
	})
	s.logger.Info("technical issue reported",
		zap.String(logger.FieldSessionID, issue.SessionID),
		zap.String("ticketId", issue.TicketID))
	return &issue, nil
}

func issueErrorType(t domain.IssueType) domain.InterviewErrorType {
	switch t {
	case domain.IssueAudio:
		return domain.ErrTypeMicrophoneNotFound
	case domain.IssueConnection:
		return domain.ErrTypeConnectionLost
	case domain.IssueBrowser:
		return domain.ErrTypeBrowserIncompat
	}
	return domain.ErrTypeUnknown
}
