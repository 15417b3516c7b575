package task

import (
	"context"
	"fmt"
	"time"

	"github.com/haierkeys/interview-link-service/pkg/safe_close"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Task 定义任务接口
type Task interface {
	Name() string                  // 任务名称
	Run(ctx context.Context) error // 执行任务
	LoopInterval() time.Duration   // 执行间隔，<= 0 表示不按间隔执行
	IsStartupRun() bool            // 是否立即执行一次
}

// CronTask is a Task driven by a five field cron expression instead of LoopInterval
// CronTask 按 cron 表达式执行的任务
type CronTask interface {
	Task
	CronSpec() string
}

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Scheduler 任务调度器
type Scheduler struct {
	logger *zap.Logger
	tasks  []Task
	sc     *safe_close.SafeClose
	cron   *cron.Cron
}

// NewScheduler 创建任务调度器
func NewScheduler(logger *zap.Logger, sc *safe_close.SafeClose) *Scheduler {
	return &Scheduler{
		logger: logger,
		tasks:  make([]Task, 0),
		sc:     sc,
		cron:   cron.New(cron.WithParser(cronParser)),
	}
}

// AddTask 添加任务，cron 表达式非法时返回错误
func (s *Scheduler) AddTask(task Task) error {
	if ct, ok := task.(CronTask); ok {
		if _, err := cronParser.Parse(ct.CronSpec()); err != nil {
			return fmt.Errorf("task %s: invalid cron spec %q: %w", task.Name(), ct.CronSpec(), err)
		}
	}
	s.tasks = append(s.tasks, task)
	return nil
}

// Start 启动所有任务
func (s *Scheduler) Start() {
	if len(s.tasks) == 0 {
		s.logger.Info("no tasks to schedule")
		return
	}

	s.logger.Info("tasks starting ", zap.Int("count", len(s.tasks)))

	hasCron := false
	for _, task := range s.tasks {
		if ct, ok := task.(CronTask); ok {
			s.startCronTask(ct)
			hasCron = true
			continue
		}
		s.startTask(task)
	}

	if hasCron {
		s.cron.Start()
		s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
			defer done()
			<-closeSignal
			<-s.cron.Stop().Done()
			s.logger.Info("cron tasks stopped")
		})
	}
}

// runOnce 执行一次任务并捕获 panic
func (s *Scheduler) runOnce(ctx context.Context, task Task, mode string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("task panic",
				zap.String("name", task.Name()),
				zap.String("mode", mode),
				zap.Any("panic", r),
				zap.Stack("stack"))
		}
	}()
	s.logger.Debug("task running", zap.String("name", task.Name()), zap.String("mode", mode))
	if err := task.Run(ctx); err != nil {
		s.logger.Error("task running error",
			zap.String("name", task.Name()),
			zap.String("mode", mode),
			zap.Error(err))
	}
}

func (s *Scheduler) startCronTask(task CronTask) {
	if task.IsStartupRun() {
		go s.runOnce(context.Background(), task, "startupRun")
	}
	// spec 已在 AddTask 中校验
	_, _ = s.cron.AddFunc(task.CronSpec(), func() {
		s.runOnce(context.Background(), task, "cronRun")
	})
	s.logger.Info("cron task scheduled", zap.String("name", task.Name()), zap.String("spec", task.CronSpec()))
}

// startTask 启动单个任务
func (s *Scheduler) startTask(task Task) {

	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()

		// 如果任务需要立即执行
		if task.IsStartupRun() {
			go s.runOnce(context.Background(), task, "startupRun")
		}

		if task.LoopInterval() <= 0 {
			return
		}

		ticker := time.NewTicker(task.LoopInterval())
		defer ticker.Stop()

		// 定时执行
		for {
			select {
			case <-ticker.C:
				s.runOnce(context.Background(), task, "loopRun")
			case <-closeSignal:
				s.logger.Info("task stopped", zap.String("name", task.Name()), zap.Bool("loopRun", true))
				return
			}
		}
	})
}
