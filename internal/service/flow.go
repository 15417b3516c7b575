package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/haierkeys/interview-link-service/internal/domain"
	"github.com/haierkeys/interview-link-service/pkg/code"
	"github.com/haierkeys/interview-link-service/pkg/logger"
	"github.com/haierkeys/interview-link-service/pkg/timex"

	"go.uber.org/zap"
)

// ErrFlowClosed is returned by Flow operations after Close
var ErrFlowClosed = errors.New("flow is closed")

// ErrFlowState is returned when an operation does not fit the current state
var ErrFlowState = errors.New("operation not allowed in current flow state")

// FlowEvent is published to listeners on every state change and when the redirect deadline passes
// FlowEvent 流程事件
type FlowEvent struct {
	SessionID  string
	From       domain.FlowState
	To         domain.FlowState
	Error      *domain.InterviewError
	RedirectAt time.Time // 非零时表示页面将在该时刻跳转
	Redirect   bool      // 跳转时刻已到
	Retry      bool      // 由重试定时器触发的校验
}

// FlowListener 流程监听器
type FlowListener func(FlowEvent)

// FlowSnapshot 流程当前状态快照
type FlowSnapshot struct {
	SessionID          string                       `json:"sessionId"`
	State              domain.FlowState             `json:"state"`
	TimeUntilInterview int                          `json:"timeUntilInterview,omitempty"`
	Interview          *domain.InterviewLink        `json:"-"`
	Credentials        *domain.RoomCredentials      `json:"credentials,omitempty"`
	Result             *domain.InterviewResult      `json:"result,omitempty"`
	Error              *domain.InterviewError       `json:"error,omitempty"`
	RedirectAt         *time.Time                   `json:"redirectAt,omitempty"`
	Validation         *domain.LinkValidationResult `json:"-"`
}

// FlowDeps Flow 依赖
type FlowDeps struct {
	Links    LinkService
	Sessions SessionService
	Errors   ErrorService
	Clock    timex.Clock
	Logger   *zap.Logger
	Config   FlowConfig
}

// Flow drives one candidate through the interview page states.
// Timers (retry, redirect) are explicit and cancelled by Close.
// Flow 候选人面试页面状态机
type Flow struct {
	sessionID string
	token     string
	deps      FlowDeps

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	state      domain.FlowState
	validation *domain.LinkValidationResult
	creds      *domain.RoomCredentials
	result     *domain.InterviewResult
	lastErr    *domain.InterviewError
	redirectAt time.Time
	retry      timex.Timer
	redirect   timex.Timer
	listeners  []FlowListener
	closed     bool
}

// NewFlow 创建流程，初始状态为 loading
func NewFlow(sessionID, token string, deps FlowDeps) *Flow {
	def := DefaultServiceConfig().Flow
	if deps.Config.RetryDelay <= 0 {
		deps.Config.RetryDelay = def.RetryDelay
	}
	if deps.Config.RedirectDelay <= 0 {
		deps.Config.RedirectDelay = def.RedirectDelay
	}
	if deps.Clock == nil {
		deps.Clock = timex.System
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Flow{
		sessionID: sessionID,
		token:     token,
		deps:      deps,
		ctx:       ctx,
		cancel:    cancel,
		state:     domain.FlowLoading,
	}
}

// OnTransition registers a listener; listeners run outside the flow lock
func (f *Flow) OnTransition(l FlowListener) {
	f.mu.Lock()
	f.listeners = append(f.listeners, l)
	f.mu.Unlock()
}

func (f *Flow) State() domain.FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Flow) Snapshot() FlowSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := FlowSnapshot{
		SessionID:   f.sessionID,
		State:       f.state,
		Credentials: f.creds,
		Result:      f.result,
		Error:       f.lastErr,
		Validation:  f.validation,
	}
	if f.validation != nil {
		s.TimeUntilInterview = f.validation.TimeUntilInterview
		s.Interview = f.validation.InterviewData
	}
	if !f.redirectAt.IsZero() {
		at := f.redirectAt
		s.RedirectAt = &at
	}
	return s
}

// Start runs link validation and settles on ready or a failure state
func (f *Flow) Start(ctx context.Context) domain.FlowState {
	return f.run(ctx, false)
}

func (f *Flow) run(ctx context.Context, retry bool) domain.FlowState {
	if f.token == "" {
		f.set(domain.FlowNoToken, nil, retry)
		return domain.FlowNoToken
	}
	if !f.set(domain.FlowValidating, nil, retry) {
		return f.State()
	}

	res, err := f.deps.Links.Validate(ctx, f.sessionID, f.token)
	if err != nil {
		f.connectionLost(err, retry)
		return f.State()
	}

	f.mu.Lock()
	f.validation = res
	f.mu.Unlock()

	if res.Valid {
		f.set(domain.FlowReady, nil, retry)
		return domain.FlowReady
	}
	next := domain.FlowStateForReason(res.Reason)
	f.fail(next, retry)
	return next
}

// Join moves a ready flow into the interview room
func (f *Flow) Join(ctx context.Context) (*domain.RoomCredentials, error) {
	if err := f.expect(domain.FlowReady); err != nil {
		return nil, err
	}
	creds, err := f.deps.Sessions.Join(ctx, f.sessionID, f.token)
	if err != nil {
		var c *code.Code
		if errors.As(err, &c) && c.HaveReason() {
			f.fail(domain.FlowStateForReason(domain.ValidationReason(c.Reason())), false)
			return nil, err
		}
		f.connectionLost(err, false)
		return nil, err
	}
	f.mu.Lock()
	f.creds = creds
	f.mu.Unlock()
	f.set(domain.FlowInProgress, nil, false)
	return creds, nil
}

// Leave ends the running interview
func (f *Flow) Leave(ctx context.Context, reason string) (*domain.InterviewResult, error) {
	if err := f.expect(domain.FlowInProgress); err != nil {
		return nil, err
	}
	result, err := f.deps.Sessions.End(ctx, f.sessionID, reason)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.result = result
	f.mu.Unlock()
	f.set(domain.FlowLeft, nil, false)
	return result, nil
}

// Close cancels pending timers and stops further transitions
func (f *Flow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	f.stopTimersLocked()
	f.cancel()
}

func (f *Flow) expect(s domain.FlowState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrFlowClosed
	}
	if f.state != s {
		return ErrFlowState
	}
	return nil
}

func (f *Flow) stopTimersLocked() {
	if f.retry != nil {
		f.retry.Stop()
		f.retry = nil
	}
	if f.redirect != nil {
		f.redirect.Stop()
		f.redirect = nil
	}
}

// connectionLost records a recoverable error and schedules a retry
func (f *Flow) connectionLost(cause error, retry bool) {
	var ie *domain.InterviewError
	if f.deps.Errors != nil {
		e := f.deps.Errors.CreateForSession(f.sessionID, domain.ErrTypeConnectionLost, cause.Error())
		ie = &e
	}
	f.deps.Logger.Warn("interview flow lost connection",
		zap.String(logger.FieldSessionID, f.sessionID), zap.Error(cause))

	if !f.set(domain.FlowError, ie, retry) {
		return
	}
	if ie != nil && !ie.Recoverable {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.retry = f.deps.Clock.AfterFunc(f.deps.Config.RetryDelay, func() {
		f.mu.Lock()
		f.retry = nil
		closed := f.closed
		f.mu.Unlock()
		if !closed {
			f.run(f.ctx, true)
		}
	})
}

// fail enters a failure state; expired and invalid links get a redirect deadline
func (f *Flow) fail(s domain.FlowState, retry bool) {
	if !f.set(s, nil, retry) {
		return
	}
	if s != domain.FlowExpired && s != domain.FlowInvalid {
		return
	}

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	at := f.deps.Clock.Now().Add(f.deps.Config.RedirectDelay)
	f.redirectAt = at
	f.redirect = f.deps.Clock.AfterFunc(f.deps.Config.RedirectDelay, func() {
		f.mu.Lock()
		f.redirect = nil
		closed := f.closed
		state := f.state
		listeners := append([]FlowListener(nil), f.listeners...)
		f.mu.Unlock()
		if closed {
			return
		}
		ev := FlowEvent{SessionID: f.sessionID, From: state, To: state, RedirectAt: at, Redirect: true}
		for _, l := range listeners {
			l(ev)
		}
	})
	listeners := append([]FlowListener(nil), f.listeners...)
	f.mu.Unlock()

	ev := FlowEvent{SessionID: f.sessionID, From: s, To: s, RedirectAt: at}
	for _, l := range listeners {
		l(ev)
	}
}

// set changes state and notifies listeners. It reports false once the flow is closed.
func (f *Flow) set(to domain.FlowState, ie *domain.InterviewError, retry bool) bool {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return false
	}
	from := f.state
	f.state = to
	if ie != nil {
		f.lastErr = ie
	} else if !to.IsFailure() {
		f.lastErr = nil
	}
	if !to.IsFailure() {
		f.redirectAt = time.Time{}
	}
	listeners := append([]FlowListener(nil), f.listeners...)
	f.mu.Unlock()

	if from != to {
		f.deps.Logger.Debug("interview flow transition",
			zap.String(logger.FieldSessionID, f.sessionID),
			zap.String(logger.FieldFrom, string(from)),
			zap.String(logger.FieldTo, string(to)))
	}
	ev := FlowEvent{SessionID: f.sessionID, From: from, To: to, Error: ie, Retry: retry}
	for _, l := range listeners {
		l(ev)
	}
	return true
}
