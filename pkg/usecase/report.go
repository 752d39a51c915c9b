package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"

	"github.com/drover-dev/drover/pkg/domain/model"
)

// reportFailure posts the failed run summary as a pull request comment so the
// failure is visible where the release was approved. Reporting is best
// effort; a comment error never changes the run result.
func (uc *taggerUseCase) reportFailure(ctx context.Context, run *model.ReleaseRun, event *model.PullRequestEvent) {
	if uc.github == nil {
		return
	}

	logger := ctxlog.From(ctx)

	comment := formatFailureComment(run)

	_, _, err := uc.github.CreateComment(ctx, event.Owner, event.Repo, event.Number, &github.IssueComment{
		Body: github.Ptr(comment),
	})
	if err != nil {
		logger.Error("Failed to post failure comment",
			"error", err,
			"repository", event.Repository,
			"number", event.Number,
		)
		return
	}

	logger.Info("Posted failure comment", "repository", event.Repository, "number", event.Number)
}

// formatFailureComment formats the run as a markdown comment
func formatFailureComment(run *model.ReleaseRun) string {
	var sb strings.Builder

	sb.WriteString("## 🚨 Release run failed\n\n")
	sb.WriteString(fmt.Sprintf("Run `%s` for `%s` did not produce a tag.\n\n", run.ID, run.HeadRef))

	sb.WriteString("| Step | Result | Detail |\n")
	sb.WriteString("|------|--------|--------|\n")
	for _, step := range run.Steps {
		mark := "✅"
		detail := step.Detail
		if !step.OK {
			mark = "❌"
			detail = step.Error
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n", step.Name, mark, cell(detail, 200)))
	}

	if run.Error != "" {
		sb.WriteString(fmt.Sprintf("\n```\n%s\n```\n", run.Error))
	}

	sb.WriteString("\n---\n")
	sb.WriteString("🤖 Reported by Drover\n")

	return sb.String()
}

// cell flattens a value into a single markdown table cell.
func cell(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "|", "\\|")
	return truncate(s, n)
}
