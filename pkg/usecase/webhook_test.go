package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/drover-dev/drover/pkg/domain/model"
	"github.com/drover-dev/drover/pkg/usecase"
)

// MockTagger is a mock implementation of TaggerUseCase
type MockTagger struct {
	mu     sync.Mutex
	events []*model.PullRequestEvent
}

func (m *MockTagger) RunRelease(ctx context.Context, event *model.PullRequestEvent) (*model.ReleaseRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = append(m.events, event)

	run := model.NewReleaseRun("mock-run", event)
	run.Finish(nil)
	return run, nil
}

func (m *MockTagger) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

func waitForRuns(t *testing.T, tagger *MockTagger, want int) {
	t.Helper()
	for i := 0; i < 100; i++ {
		if tagger.count() >= want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("tagger was not called %d times", want)
}

func TestProcessEvent_DispatchesRelease(t *testing.T) {
	ctx := context.Background()
	tagger := &MockTagger{}
	uc := usecase.NewWebhook(tagger)

	gt.NoError(t, uc.ProcessEvent(ctx, releaseEvent()))

	waitForRuns(t, tagger, 1)
}

func TestProcessEvent_IgnoresNonReleaseEvents(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		modify func(e *model.PullRequestEvent)
	}{
		{
			name:   "closed but not merged",
			modify: func(e *model.PullRequestEvent) { e.Merged = false },
		},
		{
			name:   "opened action",
			modify: func(e *model.PullRequestEvent) { e.Action = "opened" },
		},
		{
			name:   "head branch without release prefix",
			modify: func(e *model.PullRequestEvent) { e.HeadRef = "feature/new-thing" },
		},
		{
			name:   "wrong base branch",
			modify: func(e *model.PullRequestEvent) { e.BaseRef = "develop" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tagger := &MockTagger{}
			uc := usecase.NewWebhook(tagger)

			event := releaseEvent()
			tt.modify(event)

			gt.NoError(t, uc.ProcessEvent(ctx, event))

			time.Sleep(50 * time.Millisecond)
			gt.Value(t, tagger.count()).Equal(0)
		})
	}
}

func TestProcessEvent_CustomBaseBranch(t *testing.T) {
	ctx := context.Background()
	tagger := &MockTagger{}
	uc := usecase.NewWebhook(tagger, usecase.WithBaseBranch("develop"))

	event := releaseEvent()
	event.BaseRef = "develop"

	gt.NoError(t, uc.ProcessEvent(ctx, event))
	waitForRuns(t, tagger, 1)

	// The default base no longer matches.
	other := releaseEvent()
	gt.NoError(t, uc.ProcessEvent(ctx, other))

	time.Sleep(50 * time.Millisecond)
	gt.Value(t, tagger.count()).Equal(1)
}
