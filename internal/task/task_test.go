package task

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/haierkeys/interview-link-service/internal/app"
	"github.com/haierkeys/interview-link-service/internal/dao"
	"github.com/haierkeys/interview-link-service/internal/domain"
	"github.com/haierkeys/interview-link-service/pkg/mailer"
	"github.com/haierkeys/interview-link-service/pkg/safe_close"
	"github.com/haierkeys/interview-link-service/pkg/timex"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

type countingTask struct {
	name     string
	interval time.Duration
	startup  bool
	spec     string
	runs     atomic.Int32
	err      error
}

func (t *countingTask) Name() string                { return t.name }
func (t *countingTask) LoopInterval() time.Duration { return t.interval }
func (t *countingTask) IsStartupRun() bool          { return t.startup }
func (t *countingTask) Run(ctx context.Context) error {
	t.runs.Add(1)
	if t.err != nil {
		return t.err
	}
	return nil
}

type countingCronTask struct {
	*countingTask
}

func (t countingCronTask) CronSpec() string { return t.spec }

func TestSchedulerRunsLoopTaskUntilClose(t *testing.T) {
	sc := safe_close.NewSafeClose()
	s := NewScheduler(zaptest.NewLogger(t), sc)

	task := &countingTask{name: "loop", interval: 5 * time.Millisecond, startup: true, err: errors.New("boom")}
	require.NoError(t, s.AddTask(task))
	s.Start()

	assert.Eventually(t, func() bool { return task.runs.Load() >= 3 }, time.Second, time.Millisecond)

	sc.SendCloseSignal(nil)
	require.NoError(t, sc.WaitClosed())
	stopped := task.runs.Load()
	time.Sleep(20 * time.Millisecond)
	// a run already past the ticker may still finish
	assert.LessOrEqual(t, task.runs.Load(), stopped+1)
}

func TestSchedulerRejectsBadCronSpec(t *testing.T) {
	s := NewScheduler(zap.NewNop(), safe_close.NewSafeClose())
	err := s.AddTask(countingCronTask{&countingTask{name: "bad", spec: "every tuesday"}})
	assert.Error(t, err)

	assert.NoError(t, s.AddTask(countingCronTask{&countingTask{name: "ok", spec: "*/10 * * * *"}}))
}

func TestSchedulerStopsCron(t *testing.T) {
	sc := safe_close.NewSafeClose()
	s := NewScheduler(zap.NewNop(), sc)
	task := countingCronTask{&countingTask{name: "cron", spec: "0 3 * * *", startup: true}}
	require.NoError(t, s.AddTask(task))
	s.Start()

	assert.Eventually(t, func() bool { return task.runs.Load() == 1 }, time.Second, time.Millisecond)
	sc.SendCloseSignal(nil)
	require.NoError(t, sc.WaitClosed())
}

func newTaskApp(t *testing.T, yaml string) (*app.App, *timex.FakeClock) {
	t.Helper()
	cfg, err := app.ParseConfig([]byte(yaml))
	require.NoError(t, err)
	cfg.Database.Path = ":memory:"
	cfg.Database.MaxOpenConns = 1

	db, err := dao.NewDBEngine(*cfg.DaoConfig())
	require.NoError(t, err)

	clock := timex.NewFakeClock(time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC))
	a, err := app.NewApp(cfg, zap.NewNop(), db,
		app.WithClock(clock),
		app.WithMailer(mailer.NewLogSender(zap.NewNop())),
		app.WithRegisterer(prometheus.NewRegistry()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })
	return a, clock
}

func TestSessionSweepTaskExpiresMissedInterviews(t *testing.T) {
	a, clock := newTaskApp(t, "{}")
	ctx := context.Background()

	link, _, err := a.LinkService.Generate(ctx, domain.GenerateLinkParams{
		CandidateEmail: "alan@example.com",
		CandidateName:  "Alan Turing",
		InterviewDate:  clock.Now().Add(10 * time.Minute),
		Position:       "Research Engineer",
	})
	require.NoError(t, err)

	task, err := NewSessionSweepTask(a)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, task.LoopInterval())

	require.NoError(t, task.Run(ctx))
	status, err := a.SessionService.GetStatus(ctx, link.SessionID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionScheduled, status)

	clock.Advance(2 * time.Hour)
	require.NoError(t, task.Run(ctx))
	status, err = a.SessionService.GetStatus(ctx, link.SessionID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionExpired, status)
}

func TestReminderTaskSendsOnce(t *testing.T) {
	a, clock := newTaskApp(t, "task:\n  reminder-cron: \"*/5 * * * *\"\n")
	ctx := context.Background()

	_, _, err := a.LinkService.Generate(ctx, domain.GenerateLinkParams{
		CandidateEmail: "barbara@example.com",
		CandidateName:  "Barbara Liskov",
		InterviewDate:  clock.Now().Add(20 * time.Minute),
		Position:       "Staff Engineer",
	})
	require.NoError(t, err)

	task, err := NewReminderTask(a)
	require.NoError(t, err)
	require.Implements(t, (*CronTask)(nil), task)
	assert.Equal(t, "*/5 * * * *", task.(CronTask).CronSpec())

	require.NoError(t, task.Run(ctx))
	require.NoError(t, task.Run(ctx))
}

func TestManagerRegistersBuiltinTasks(t *testing.T) {
	a, _ := newTaskApp(t, "{}")
	m := NewManager(zap.NewNop(), safe_close.NewSafeClose(), a)
	require.NoError(t, m.RegisterTasks())

	names := make([]string, 0, len(m.scheduler.tasks))
	for _, task := range m.scheduler.tasks {
		names = append(names, task.Name())
	}
	assert.ElementsMatch(t, []string{"SessionSweep", "InterviewReminder"}, names)
}
