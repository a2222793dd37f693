package job

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"token-insight/internal/worker/monitor"

	"go.uber.org/zap"
)

// JobFunc 作业执行函数
type JobFunc func(ctx context.Context) error

// Scheduler 周期 / 单次作业调度器
type Scheduler struct {
	jobs    map[string]*ScheduledJob
	running bool
	mu      sync.Mutex
	logger  *zap.Logger
}

// ScheduledJob 一个已注册的作业
type ScheduledJob struct {
	name     string
	interval time.Duration
	fn       JobFunc
	once     bool
	stopCh   chan struct{}
	done     sync.WaitGroup

	mu     sync.Mutex // 保护 cancel
	cancel context.CancelFunc
}

func NewScheduler(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		jobs:   make(map[string]*ScheduledJob),
		logger: logger,
	}
}

// RegisterJob 注册周期作业，启动后立即执行一次。每次执行的超时为 interval/2。
func (s *Scheduler) RegisterJob(name string, interval time.Duration, fn JobFunc) {
	s.register(&ScheduledJob{name: name, interval: interval, fn: fn})
	s.logger.Info("Registered job", zap.String("job", name), zap.Duration("interval", interval))
}

// RegisterOnceJob 注册只运行一次的作业
func (s *Scheduler) RegisterOnceJob(name string, fn JobFunc) {
	s.register(&ScheduledJob{name: name, fn: fn, once: true})
	s.logger.Info("Registered once job", zap.String("job", name))
}

func (s *Scheduler) register(j *ScheduledJob) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !j.once && j.interval <= 0 {
		panic(fmt.Sprintf("job %s: interval must be positive", j.name))
	}
	j.stopCh = make(chan struct{})
	s.jobs[j.name] = j
}

// Jobs 已注册作业名，按字母序
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Start 启动所有作业，重复调用无效
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true

	for _, j := range s.jobs {
		j.done.Add(1)
		go func(j *ScheduledJob) {
			defer j.done.Done()
			if j.once {
				s.logger.Info("Running one-time job", zap.String("job", j.name))
				s.executeJob(ctx, j)
				return
			}
			s.runJob(ctx, j)
		}(j)
	}
}

// Stop 取消正在执行的作业并等待退出，ctx 到期则放弃等待
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false

	for _, j := range s.jobs {
		j.mu.Lock()
		if j.cancel != nil {
			j.cancel()
		}
		j.mu.Unlock()
		close(j.stopCh)
	}
	jobs := make([]*ScheduledJob, 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, j)
	}
	s.mu.Unlock()

	s.logger.Warn("Stopping scheduler...")

	waitCh := make(chan struct{})
	go func() {
		for _, j := range jobs {
			j.done.Wait()
		}
		close(waitCh)
	}()

	select {
	case <-waitCh:
		s.logger.Info("All jobs stopped successfully")
	case <-ctx.Done():
		s.logger.Warn("Context deadline exceeded while waiting for jobs to stop")
	}
}

func (s *Scheduler) runJob(ctx context.Context, j *ScheduledJob) {
	s.logger.Info("Running job", zap.String("job", j.name), zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	s.executeJob(ctx, j)

	for {
		select {
		case <-ticker.C:
			s.executeJob(ctx, j)
		case <-j.stopCh:
			s.logger.Info("Stopping job", zap.String("job", j.name))
			return
		case <-ctx.Done():
			s.logger.Info("Context cancelled, stopping job", zap.String("job", j.name))
			return
		}
	}
}

// executeJob 执行一次作业，panic 记为失败不影响调度
func (s *Scheduler) executeJob(ctx context.Context, j *ScheduledJob) {
	var (
		jobCtx context.Context
		cancel context.CancelFunc
	)
	if j.once {
		jobCtx, cancel = context.WithCancel(ctx)
	} else {
		jobCtx, cancel = context.WithTimeout(ctx, j.interval/2)
	}
	j.mu.Lock()
	j.cancel = cancel
	j.mu.Unlock()
	defer cancel()

	startTime := time.Now()
	err := s.safeRun(jobCtx, j)
	elapsed := time.Since(startTime)
	monitor.JobDuration.WithLabelValues(j.name).Observe(elapsed.Seconds())

	if err != nil {
		monitor.JobRuns.WithLabelValues(j.name, "error").Inc()
		s.logger.Error("Job execution failed",
			zap.String("job", j.name),
			zap.Error(err),
			zap.Duration("duration", elapsed))
		return
	}
	monitor.JobRuns.WithLabelValues(j.name, "ok").Inc()
	s.logger.Debug("Job execution completed",
		zap.String("job", j.name),
		zap.Duration("duration", elapsed))
}

func (s *Scheduler) safeRun(ctx context.Context, j *ScheduledJob) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", j.name, r)
		}
	}()
	return j.fn(ctx)
}
