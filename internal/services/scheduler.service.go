package services

import (
	"context"
	"sync"
	"time"

	"staylane/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/go-co-op/gocron"
)

type Schedule int

const (
	Hourly Schedule = iota
	Daily           // 02:00 UTC every day
)

func (s Schedule) String() string {
	switch s {
	case Hourly:
		return "hourly"
	case Daily:
		return "daily"
	}
	return "unknown"
}

// ParseSchedule maps a configured schedule name onto a Schedule.
func ParseSchedule(name string) (Schedule, bool) {
	switch name {
	case "hourly":
		return Hourly, true
	case "daily":
		return Daily, true
	}
	return 0, false
}

// Job represents a scheduled task that can be executed by the scheduler
type Job interface {
	Name() string
	Execute(ctx context.Context) error
	Schedule() Schedule
}

type JobStatus struct {
	Name     string     `json:"name"`
	Schedule string     `json:"schedule"`
	NextRun  *time.Time `json:"nextRun,omitempty"`
	LastRun  *time.Time `json:"lastRun,omitempty"`
	LastErr  string     `json:"lastError,omitempty"`
}

type SchedulerStatus struct {
	Running bool        `json:"running"`
	Jobs    []JobStatus `json:"jobs"`
}

type jobRun struct {
	at  time.Time
	err error
}

// SchedulerService owns the single gocron scheduler of the process. It is
// built once by the app and handed to whatever needs start/stop/status.
type SchedulerService struct {
	scheduler *gocron.Scheduler
	jobs      []Job
	handles   map[string]*gocron.Job
	lastRuns  map[string]jobRun
	log       logger.Logger
	started   bool
	mu        sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewSchedulerService() *SchedulerService {
	ctx, cancel := context.WithCancel(context.Background())

	return &SchedulerService{
		scheduler: gocron.NewScheduler(time.UTC),
		jobs:      make([]Job, 0),
		handles:   make(map[string]*gocron.Job),
		lastRuns:  make(map[string]jobRun),
		log:       logger.New("scheduler"),
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (s *SchedulerService) executeJob(ctx context.Context, job Job) error {
	log := s.log.Function("executeJob")

	log.Info("Executing scheduled job", "job", job.Name())
	err := job.Execute(ctx)

	s.mu.Lock()
	s.lastRuns[job.Name()] = jobRun{at: time.Now().UTC(), err: err}
	s.mu.Unlock()

	if err != nil {
		return log.Err("Job execution failed", err, "job", job.Name())
	}

	log.Info("Job execution completed successfully", "job", job.Name())
	return nil
}

// AddJob registers a job with the scheduler
func (s *SchedulerService) AddJob(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.log.Function("AddJob")

	if _, exists := s.handles[job.Name()]; exists {
		return log.Error("job already registered", "job", job.Name())
	}

	run := func() {
		_ = s.executeJob(s.ctx, job)
	}

	var (
		handle *gocron.Job
		err    error
	)
	switch job.Schedule() {
	case Daily:
		handle, err = s.scheduler.Every(1).Day().At("02:00").Tag(job.Name()).Do(run)
	case Hourly:
		handle, err = s.scheduler.Every(1).Hour().Tag(job.Name()).Do(run)
	default:
		return log.Error("unsupported job schedule", "job", job.Name(), "schedule", job.Schedule())
	}

	if err != nil {
		return log.Err("failed to register job with scheduler", err, "job", job.Name())
	}

	s.jobs = append(s.jobs, job)
	s.handles[job.Name()] = handle
	log.Info("Job registered successfully", "job", job.Name(), "schedule", job.Schedule().String())

	return nil
}

// Start begins the scheduler
func (s *SchedulerService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.log.Function("Start")

	if s.started {
		log.Info("Scheduler already started")
		return nil
	}

	if len(s.jobs) == 0 {
		log.Info("No jobs registered, scheduler will not start")
		return nil
	}

	log.Info("Starting scheduler", "jobCount", len(s.jobs))
	s.scheduler.StartAsync()
	s.started = true

	for name, handle := range s.handles {
		log.Info("Job scheduled", "job", name, "nextRun", handle.NextRun())
	}

	return nil
}

// Stop gracefully shuts down the scheduler
func (s *SchedulerService) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.log.Function("Stop")

	if !s.started {
		log.Info("Scheduler not started, nothing to stop")
		return nil
	}

	log.Info("Stopping scheduler")

	if s.cancel != nil {
		s.cancel()
	}

	s.scheduler.Stop()
	s.started = false

	log.Info("Scheduler stopped successfully")
	return nil
}

func (s *SchedulerService) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

func (s *SchedulerService) GetJobCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

func (s *SchedulerService) Status() SchedulerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := SchedulerStatus{
		Running: s.started,
		Jobs:    make([]JobStatus, 0, len(s.jobs)),
	}

	for _, job := range s.jobs {
		js := JobStatus{Name: job.Name(), Schedule: job.Schedule().String()}
		if s.started {
			next := s.handles[job.Name()].NextRun()
			js.NextRun = &next
		}
		if run, ok := s.lastRuns[job.Name()]; ok {
			at := run.at
			js.LastRun = &at
			if run.err != nil {
				js.LastErr = run.err.Error()
			}
		}
		status.Jobs = append(status.Jobs, js)
	}

	return status
}

func (s *SchedulerService) findJob(jobName string) Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, job := range s.jobs {
		if job.Name() == jobName {
			return job
		}
	}
	return nil
}

// RunJobByName executes a registered job synchronously on ctx.
func (s *SchedulerService) RunJobByName(ctx context.Context, jobName string) error {
	job := s.findJob(jobName)
	if job == nil {
		return types.ErrJobNotFound
	}
	return s.executeJob(ctx, job)
}

// TriggerJobByName starts a registered job in the background. The run is tied
// to the scheduler's lifetime, not the caller's context.
func (s *SchedulerService) TriggerJobByName(jobName string) error {
	job := s.findJob(jobName)
	if job == nil {
		return types.ErrJobNotFound
	}

	s.log.Function("TriggerJobByName").Info("Manually triggering job", "job", jobName)
	go func() {
		_ = s.executeJob(s.ctx, job)
	}()

	return nil
}
