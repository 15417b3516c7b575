package task

import (
	"context"
	"time"

	"github.com/haierkeys/interview-link-service/internal/app"

	"go.uber.org/zap"
)

// SessionSweepTask 将超过加入窗口仍未开始的会话标记为 expired
type SessionSweepTask struct {
	app      *app.App
	interval time.Duration
}

func (t *SessionSweepTask) Name() string {
	return "SessionSweep"
}

func (t *SessionSweepTask) LoopInterval() time.Duration {
	return t.interval
}

func (t *SessionSweepTask) IsStartupRun() bool {
	return true
}

// Run 执行一次清理
func (t *SessionSweepTask) Run(ctx context.Context) error {
	n, err := t.app.SessionService.SweepExpired(ctx, t.app.Clock().Now())
	if err != nil {
		return err
	}
	if n > 0 {
		t.app.Logger().Info("task log",
			zap.String("task", t.Name()),
			zap.Int("expired", n))
	}
	return nil
}

// NewSessionSweepTask 创建过期会话清理任务
func NewSessionSweepTask(a *app.App) (Task, error) {
	return &SessionSweepTask{app: a, interval: a.Config().GetSweepInterval()}, nil
}

func init() {
	Register(NewSessionSweepTask)
}
