package github_test

import (
	"context"
	"testing"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/gt"

	githubctrl "github.com/drover-dev/drover/pkg/controller/github"
	"github.com/drover-dev/drover/pkg/domain/model"
)

// MockWebhookUseCase is a mock implementation of WebhookUseCase
type MockWebhookUseCase struct {
	events []*model.PullRequestEvent
}

func (m *MockWebhookUseCase) ProcessEvent(ctx context.Context, event *model.PullRequestEvent) error {
	m.events = append(m.events, event)
	return nil
}

func mergedReleasePR() *github.PullRequestEvent {
	return &github.PullRequestEvent{
		Action: github.Ptr("closed"),
		Number: github.Ptr(42),
		Repo: &github.Repository{
			Name:     github.Ptr("hello"),
			FullName: github.Ptr("octocat/hello"),
			CloneURL: github.Ptr("https://github.com/octocat/hello.git"),
			Owner: &github.User{
				Login: github.Ptr("octocat"),
			},
		},
		Sender: &github.User{
			Login: github.Ptr("release-approver"),
		},
		PullRequest: &github.PullRequest{
			Title:          github.Ptr("release: v1.2.3"),
			Merged:         github.Ptr(true),
			MergeCommitSHA: github.Ptr("abc123"),
			Head: &github.PullRequestBranch{
				Ref: github.Ptr("release-pr/v1.2.3"),
			},
			Base: &github.PullRequestBranch{
				Ref: github.Ptr("main"),
			},
		},
	}
}

func TestProcessEvent_PullRequest(t *testing.T) {
	ctx := context.Background()
	uc := &MockWebhookUseCase{}
	processor := githubctrl.NewEventProcessor(uc)

	gt.NoError(t, processor.ProcessEvent(ctx, "delivery-1", "pull_request", mergedReleasePR()))

	gt.Value(t, len(uc.events)).Equal(1)

	event := uc.events[0]
	gt.Value(t, event.DeliveryID).Equal("delivery-1")
	gt.Value(t, event.Action).Equal("closed")
	gt.Value(t, event.Owner).Equal("octocat")
	gt.Value(t, event.Repo).Equal("hello")
	gt.Value(t, event.Repository).Equal("octocat/hello")
	gt.Value(t, event.CloneURL).Equal("https://github.com/octocat/hello.git")
	gt.Value(t, event.Number).Equal(42)
	gt.Value(t, event.Title).Equal("release: v1.2.3")
	gt.Value(t, event.HeadRef).Equal("release-pr/v1.2.3")
	gt.Value(t, event.BaseRef).Equal("main")
	gt.Value(t, event.Merged).Equal(true)
	gt.Value(t, event.MergeCommitSHA).Equal("abc123")
	gt.Value(t, event.Sender).Equal("release-approver")
}

func TestProcessEvent_IgnoresOtherEventTypes(t *testing.T) {
	ctx := context.Background()
	uc := &MockWebhookUseCase{}
	processor := githubctrl.NewEventProcessor(uc)

	gt.NoError(t, processor.ProcessEvent(ctx, "delivery-2", "release", &github.ReleaseEvent{
		Action: github.Ptr("released"),
	}))
	gt.NoError(t, processor.ProcessEvent(ctx, "delivery-3", "push", &github.PushEvent{}))

	gt.Value(t, len(uc.events)).Equal(0)
}

func TestBuildPullRequestEvent_EmptyPayload(t *testing.T) {
	// A payload with nothing set must convert without panicking.
	event := githubctrl.BuildPullRequestEvent("delivery-4", &github.PullRequestEvent{})

	gt.Value(t, event.DeliveryID).Equal("delivery-4")
	gt.Value(t, event.Action).Equal("")
	gt.Value(t, event.Merged).Equal(false)
	gt.True(t, !event.TriggersRelease("main"))
}
