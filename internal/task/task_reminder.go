package task

import (
	"context"
	"time"

	"github.com/haierkeys/interview-link-service/internal/app"

	"go.uber.org/zap"
)

// ReminderTask 按 cron 表达式给即将开始面试的候选人发送提醒邮件
type ReminderTask struct {
	app  *app.App
	spec string
}

func (t *ReminderTask) Name() string {
	return "InterviewReminder"
}

// LoopInterval 由 cron 驱动，不使用间隔
func (t *ReminderTask) LoopInterval() time.Duration {
	return 0
}

func (t *ReminderTask) IsStartupRun() bool {
	return false
}

func (t *ReminderTask) CronSpec() string {
	return t.spec
}

func (t *ReminderTask) Run(ctx context.Context) error {
	sent, err := t.app.InvitationService.SendReminders(ctx, t.app.Clock().Now())
	if err != nil {
		return err
	}
	t.app.Logger().Info("task log",
		zap.String("task", t.Name()),
		zap.Int("sent", sent))
	return nil
}

// NewReminderTask 创建提醒任务，reminder-cron 为空时禁用
func NewReminderTask(a *app.App) (Task, error) {
	spec := a.Config().Task.ReminderCron
	if spec == "" {
		return nil, nil
	}
	return &ReminderTask{app: a, spec: spec}, nil
}

func init() {
	Register(NewReminderTask)
}
