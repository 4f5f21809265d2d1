// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package advisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrJobNotFound is returned for unknown or expired job ids.
	ErrJobNotFound = errors.New("advisor: job not found")
	// ErrStaleJob is returned when a job is polled for a different subject
	// than the one it was started for.
	ErrStaleJob = errors.New("advisor: job belongs to a different subject")
)

// Default job limits.
const (
	DefaultJobTimeout = 90 * time.Second
	DefaultJobTTL     = 10 * time.Minute
)

// Job is a snapshot of a background advisory request.
type Job struct {
	ID       uuid.UUID
	Subject  string
	Result   string
	Done     bool
	Started  time.Time
	Finished time.Time
}

// Jobs runs advisory requests in the background so a page can render
// immediately and poll for the answer. Requests are detached from the
// originating HTTP request and are never canceled by navigation; each one
// is bounded by the job timeout instead.
type Jobs struct {
	mu      sync.Mutex
	jobs    map[uuid.UUID]*Job
	timeout time.Duration
	ttl     time.Duration
	wg      sync.WaitGroup
	now     func() time.Time
}

// NewJobs creates a registry. Zero durations select the defaults.
func NewJobs(timeout, ttl time.Duration) *Jobs {
	if timeout <= 0 {
		timeout = DefaultJobTimeout
	}
	if ttl <= 0 {
		ttl = DefaultJobTTL
	}
	return &Jobs{
		jobs:    make(map[uuid.UUID]*Job),
		timeout: timeout,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Start runs fn in the background for subject and returns the job id.
func (j *Jobs) Start(subject string, fn func(ctx context.Context) string) uuid.UUID {
	id := uuid.New()

	j.mu.Lock()
	j.sweepLocked()
	j.jobs[id] = &Job{ID: id, Subject: subject, Started: j.now()}
	j.mu.Unlock()

	j.wg.Add(1)
	go func() {
		defer j.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
		defer cancel()

		result := fn(ctx)

		j.mu.Lock()
		defer j.mu.Unlock()
		job, ok := j.jobs[id]
		if !ok {
			return
		}
		job.Result = result
		job.Done = true
		job.Finished = j.now()
		slog.Debug("advisory job finished", "job", id, "subject", subject,
			"duration", job.Finished.Sub(job.Started).String())
	}()

	return id
}

// Lookup returns the job with the given id if it was started for subject.
func (j *Jobs) Lookup(id uuid.UUID, subject string) (Job, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	job, ok := j.jobs[id]
	if !ok || j.expiredLocked(job) {
		return Job{}, ErrJobNotFound
	}
	if job.Subject != subject {
		return Job{}, fmt.Errorf("job %s for %q polled as %q: %w", id, job.Subject, subject, ErrStaleJob)
	}
	return *job, nil
}

// Len returns the number of tracked jobs, including finished ones that
// have not expired yet.
func (j *Jobs) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.sweepLocked()
	return len(j.jobs)
}

// Wait blocks until every started job has finished.
func (j *Jobs) Wait() {
	j.wg.Wait()
}

// expiredLocked reports whether a finished job is past its TTL.
// Running jobs never expire.
func (j *Jobs) expiredLocked(job *Job) bool {
	return job.Done && j.now().Sub(job.Finished) > j.ttl
}

func (j *Jobs) sweepLocked() {
	for id, job := range j.jobs {
		if j.expiredLocked(job) {
			delete(j.jobs, id)
		}
	}
}

// TemplateSubject names the analysis job subject for a template.
func TemplateSubject(templateID int) string {
	return fmt.Sprintf("template:%d", templateID)
}

// GeneratorSubject names the generation job subject for a session.
func GeneratorSubject(sessionID string) string {
	return "generate:" + sessionID
}
