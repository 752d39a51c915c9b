package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/getsentry/sentry-go"
	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/drover-dev/drover/pkg/cli/config"
	githubctrl "github.com/drover-dev/drover/pkg/controller/github"
	"github.com/drover-dev/drover/pkg/domain/model"
)

func cmdRun() *cli.Command {
	var (
		githubCfg    config.GitHub
		releaseCfg   config.Release
		cacheCfg     config.Cache
		firestoreCfg config.Firestore
		notifyCfg    config.Notify
		sentryCfg    config.Sentry
		eventPath    string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "event",
			Usage:       "Path to a pull_request event payload in JSON",
			Required:    true,
			Destination: &eventPath,
			Sources:     cli.EnvVars("DROVER_EVENT_PATH", "GITHUB_EVENT_PATH"),
		},
	}
	flags = append(flags, githubCfg.Flags()...)
	flags = append(flags, releaseCfg.Flags()...)
	flags = append(flags, cacheCfg.Flags()...)
	flags = append(flags, firestoreCfg.Flags()...)
	flags = append(flags, notifyCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "run",
		Aliases: []string{"r"},
		Usage:   "Execute one release run from an event payload and exit",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			sentryEnabled, err := sentryCfg.Configure()
			if err != nil {
				return err
			}
			if sentryEnabled {
				defer sentry.Flush(2 * time.Second)
			}

			event, err := loadEvent(eventPath)
			if err != nil {
				return err
			}

			if !event.TriggersRelease(releaseCfg.BaseBranch) {
				logger.Info("Event does not trigger a release, nothing to do",
					slog.String("repository", event.Repository),
					slog.String("action", event.Action),
					slog.String("head", event.HeadRef),
					slog.String("base", event.BaseRef),
					slog.Bool("merged", event.Merged),
				)
				return nil
			}

			tagger, _, cleanup, err := buildTagger(ctx, &githubCfg, &releaseCfg, &cacheCfg, &firestoreCfg, &notifyCfg)
			if err != nil {
				return err
			}
			defer cleanup()

			run, err := tagger.RunRelease(ctx, event)
			if run != nil {
				printRunSummary(run)
			}
			if err != nil {
				return goerr.Wrap(err, "release run failed")
			}

			return nil
		},
	}
}

// loadEvent reads a pull_request webhook payload from path. Payloads written
// by GitHub Actions to GITHUB_EVENT_PATH have the same shape.
func loadEvent(path string) (*model.PullRequestEvent, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read event payload", goerr.V("path", path))
	}

	var payload github.PullRequestEvent
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, goerr.Wrap(err, "failed to parse event payload", goerr.V("path", path))
	}

	return githubctrl.BuildPullRequestEvent("local", &payload), nil
}

// printRunSummary writes a human-readable step report to stdout.
func printRunSummary(run *model.ReleaseRun) {
	okMark := color.New(color.FgGreen).SprintFunc()
	failMark := color.New(color.FgRed, color.Bold).SprintFunc()

	fmt.Printf("\nRelease run %s (%s)\n", run.ID, run.Repository)
	for _, st := range run.Steps {
		mark := okMark("PASS")
		if !st.OK {
			mark = failMark("FAIL")
		}

		line := fmt.Sprintf("  %s %-20s %s", mark, st.Name, st.Duration.Round(time.Millisecond))
		if st.Detail != "" {
			line += "  " + st.Detail
		}
		if st.Error != "" {
			line += "  " + failMark(st.Error)
		}
		fmt.Println(line)
	}

	switch run.Status {
	case model.RunStatusSucceeded:
		fmt.Printf("\n%s pushed tag %s in %s\n",
			okMark("success:"), run.TagName, run.Elapsed().Round(time.Second))
	default:
		fmt.Printf("\n%s %s (after %s)\n",
			failMark("failed:"), run.Error, run.Elapsed().Round(time.Second))
	}
}
