package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/gourmetpress/gourmetpress-backend/pkg/logger"
)

type fakeLock struct {
	held     bool
	acquires int
	releases int
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	f.acquires++
	if f.held {
		return false, nil
	}
	f.held = true
	return true, nil
}

func (f *fakeLock) Release(context.Context) error {
	f.held = false
	f.releases++
	return nil
}

type testJob struct {
	name string
	err  error
	runs int
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(context.Context) error {
	t.runs++
	return t.err
}

func TestRunCycleRunsAllJobsEvenOnFailure(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "cron-test"})
	good := &testJob{name: "good"}
	bad := &testJob{name: "bad", err: errors.New("boom")}
	service, err := NewService(ServiceParams{
		Logger:   logg,
		Registry: NewRegistry(good, bad),
		Lock:     &fakeLock{},
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	if err := service.runCycle(context.Background()); err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	if good.runs != 1 {
		t.Fatalf("expected good job to run once, ran %d", good.runs)
	}
	if bad.runs != 1 {
		t.Fatalf("expected bad job to run once, ran %d", bad.runs)
	}
}

func TestRunCycleSkipsWhenLockHeld(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "cron-test"})
	job := &testJob{name: "job"}
	lock := &fakeLock{held: true}
	service, err := NewService(ServiceParams{
		Logger:   logg,
		Registry: NewRegistry(job),
		Lock:     lock,
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	if err := service.runCycle(context.Background()); err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	if job.runs != 0 {
		t.Fatalf("expected job to be skipped, ran %d", job.runs)
	}
	if lock.releases != 0 {
		t.Fatalf("lock released by non-owner")
	}
}

func TestRegistryIgnoresNilJobs(t *testing.T) {
	registry := NewRegistry(nil, &testJob{name: "only"})
	registry.Register(nil)
	if got := len(registry.Jobs()); got != 1 {
		t.Fatalf("expected 1 job, got %d", got)
	}
}

func TestNewServiceRequiresLock(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "cron-test"})
	if _, err := NewService(ServiceParams{Logger: logg}); err == nil {
		t.Fatalf("expected error without lock")
	}
}
