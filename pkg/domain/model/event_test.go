package model_test

import (
	"testing"

	"github.com/drover-dev/drover/pkg/domain/model"
)

func TestPullRequestEvent_TriggersRelease(t *testing.T) {
	tests := []struct {
		name     string
		event    *model.PullRequestEvent
		expected bool
	}{
		{
			name: "merged release PR into main",
			event: &model.PullRequestEvent{
				Action:  "closed",
				HeadRef: "release-pr/1.2.3",
				BaseRef: "main",
				Merged:  true,
			},
			expected: true,
		},
		{
			name: "closed but not merged",
			event: &model.PullRequestEvent{
				Action:  "closed",
				HeadRef: "release-pr/1.2.3",
				BaseRef: "main",
				Merged:  false,
			},
			expected: false,
		},
		{
			name: "head branch without release prefix",
			event: &model.PullRequestEvent{
				Action:  "closed",
				HeadRef: "feature/new-parser",
				BaseRef: "main",
				Merged:  true,
			},
			expected: false,
		},
		{
			name: "target branch is not main",
			event: &model.PullRequestEvent{
				Action:  "closed",
				HeadRef: "release-pr/1.2.3",
				BaseRef: "develop",
				Merged:  true,
			},
			expected: false,
		},
		{
			name: "opened action",
			event: &model.PullRequestEvent{
				Action:  "opened",
				HeadRef: "release-pr/1.2.3",
				BaseRef: "main",
				Merged:  false,
			},
			expected: false,
		},
		{
			name: "prefix must be at branch start",
			event: &model.PullRequestEvent{
				Action:  "closed",
				HeadRef: "fix/release-pr/1.2.3",
				BaseRef: "main",
				Merged:  true,
			},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.event.TriggersRelease("main")
			if got != tt.expected {
				t.Errorf("TriggersRelease() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestPullRequestEvent_TriggersRelease_CustomBase(t *testing.T) {
	event := &model.PullRequestEvent{
		Action:  "closed",
		HeadRef: "release-pr/2.0.0",
		BaseRef: "stable",
		Merged:  true,
	}

	if !event.TriggersRelease("stable") {
		t.Error("TriggersRelease(stable) = false, want true")
	}
	if event.TriggersRelease("main") {
		t.Error("TriggersRelease(main) = true, want false")
	}
}

func TestExtractVersion(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		expected string
	}{
		{
			name:     "prefixed title",
			title:    "release: v1.2.3",
			expected: "v1.2.3",
		},
		{
			name:     "prefixed plain version",
			title:    "release: 2.0.0",
			expected: "2.0.0",
		},
		{
			name:     "no prefix passes through unchanged",
			title:    "2.0.0",
			expected: "2.0.0",
		},
		{
			name:     "prefix not at start is untouched",
			title:    "X release: Y",
			expected: "X release: Y",
		},
		{
			name:     "prefix without trailing space is untouched",
			title:    "release:v1.0.0",
			expected: "release:v1.0.0",
		},
		{
			name:     "prefix only yields empty string",
			title:    "release: ",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := model.ExtractVersion(tt.title)
			if got != tt.expected {
				t.Errorf("ExtractVersion(%q) = %q, want %q", tt.title, got, tt.expected)
			}
		})
	}
}

func TestTagMessage(t *testing.T) {
	if got := model.TagMessage("v1.2.3"); got != "Release v1.2.3" {
		t.Errorf("TagMessage() = %q, want %q", got, "Release v1.2.3")
	}
}
