package usecase

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"

	"github.com/drover-dev/drover/pkg/domain/interfaces"
	"github.com/drover-dev/drover/pkg/domain/model"
	"github.com/drover-dev/drover/pkg/domain/types"
)

type taggerUseCase struct {
	git      interfaces.GitClient
	cache    interfaces.CacheStore
	tool     interfaces.ToolRunner
	runs     interfaces.RunRepository
	github   interfaces.GitHubClient
	notifier interfaces.Notifier

	policy   model.RepoPolicy
	remote   string
	botName  string
	botEmail string
	timeout  time.Duration
}

// TaggerOption configures the tagger use case.
type TaggerOption func(*taggerUseCase)

// WithGitHubClient enables failure reports as pull request comments.
func WithGitHubClient(client interfaces.GitHubClient) TaggerOption {
	return func(uc *taggerUseCase) {
		uc.github = client
	}
}

// WithNotifier sends finished run summaries to the given notifier.
func WithNotifier(notifier interfaces.Notifier) TaggerOption {
	return func(uc *taggerUseCase) {
		uc.notifier = notifier
	}
}

// WithPolicy replaces the server-wide default release policy.
func WithPolicy(policy model.RepoPolicy) TaggerOption {
	return func(uc *taggerUseCase) {
		uc.policy = policy
	}
}

// WithBotIdentity sets the committer identity configured before tagging.
func WithBotIdentity(name, email string) TaggerOption {
	return func(uc *taggerUseCase) {
		uc.botName = name
		uc.botEmail = email
	}
}

// WithRemote sets the remote tags are pushed to.
func WithRemote(remote string) TaggerOption {
	return func(uc *taggerUseCase) {
		uc.remote = remote
	}
}

// WithRunTimeout caps the wall-clock duration of one run. A non-positive
// value removes the cap.
func WithRunTimeout(d time.Duration) TaggerOption {
	return func(uc *taggerUseCase) {
		uc.timeout = d
	}
}

// NewTagger creates a new instance of TaggerUseCase
func NewTagger(
	git interfaces.GitClient,
	cache interfaces.CacheStore,
	tool interfaces.ToolRunner,
	runs interfaces.RunRepository,
	opts ...TaggerOption,
) interfaces.TaggerUseCase {
	uc := &taggerUseCase{
		git:      git,
		cache:    cache,
		tool:     tool,
		runs:     runs,
		policy:   model.DefaultPolicy(),
		remote:   types.DefaultRemote,
		botName:  types.DefaultBotName,
		botEmail: types.DefaultBotEmail,
		timeout:  types.DefaultRunTimeout,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// RunRelease executes the release pipeline for an accepted event. The run
// record is written after every step so a crash still leaves a trail. Cache
// steps only warn on failure; every other step stops the pipeline.
func (uc *taggerUseCase) RunRelease(ctx context.Context, event *model.PullRequestEvent) (*model.ReleaseRun, error) {
	run := model.NewReleaseRun(uuid.NewString(), event)

	logger := ctxlog.From(ctx).With(
		"run_id", run.ID,
		"repository", event.Repository,
		"number", event.Number,
	)
	ctx = ctxlog.With(ctx, logger)

	logger.Info("Starting release run",
		"title", event.Title,
		"head", event.HeadRef,
		"base", event.BaseRef,
	)

	run.Status = model.RunStatusRunning
	uc.putRun(ctx, run)

	// The deadline covers the steps only; finalization below must still be
	// able to persist and report a timed-out run.
	runCtx, cancel := ctx, func() {}
	if uc.timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, uc.timeout)
	}
	err := uc.execute(runCtx, run, event)
	cancel()

	run.Finish(err)
	uc.putRun(ctx, run)

	if err != nil {
		logger.Error("Release run failed", "error", err)
		sentry.CaptureException(err)
		uc.reportFailure(ctx, run, event)
	} else {
		logger.Info("Release run succeeded",
			"version", run.Version,
			"tag", run.TagName,
			"elapsed", run.Elapsed(),
		)
	}

	uc.notifyRun(ctx, run)

	return run, err
}

// execute runs the step sequence in a throwaway working directory.
func (uc *taggerUseCase) execute(ctx context.Context, run *model.ReleaseRun, event *model.PullRequestEvent) error {
	logger := ctxlog.From(ctx)

	workDir, err := os.MkdirTemp("", "drover-run-*")
	if err != nil {
		return goerr.Wrap(err, "failed to create working directory")
	}
	if err := os.Chmod(workDir, 0700); err != nil {
		return goerr.Wrap(err, "failed to set directory permissions", goerr.V("dir", workDir))
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			logger.Warn("Failed to remove working directory", "dir", workDir, "error", err)
		}
	}()

	if err := uc.step(ctx, run, model.StepCheckout, func() (string, error) {
		if err := uc.git.Clone(ctx, event.CloneURL, workDir, event.BaseRef); err != nil {
			return "", err
		}

		detail := "checked out " + event.BaseRef
		if event.MergeCommitSHA != "" {
			if err := uc.git.Checkout(ctx, workDir, event.MergeCommitSHA); err != nil {
				return "", err
			}
			detail += "@" + event.MergeCommitSHA
		}
		return detail, nil
	}); err != nil {
		return err
	}

	policy := uc.loadPolicy(ctx, workDir)
	cacheKey := uc.cacheKey(workDir, policy.Cache)

	uc.optionalStep(ctx, run, model.StepRestoreCache, func() (string, error) {
		hit, err := uc.cache.Restore(ctx, cacheKey, workDir)
		if err != nil {
			return "", err
		}
		if !hit {
			return "miss for " + cacheKey, nil
		}
		return "hit for " + cacheKey, nil
	})

	if err := uc.step(ctx, run, model.StepInstallTool, func() (string, error) {
		return uc.tool.Run(ctx, workDir, policy.Tool.Install)
	}); err != nil {
		return err
	}

	if err := uc.step(ctx, run, model.StepRelease, func() (string, error) {
		return uc.tool.Run(ctx, workDir, policy.Tool.Release)
	}); err != nil {
		return err
	}

	var version string
	if err := uc.step(ctx, run, model.StepExtract, func() (string, error) {
		version = model.ExtractVersion(event.Title)
		if version == "" {
			return "", goerr.New("cannot derive a tag name from an empty title",
				goerr.V("title", event.Title))
		}
		run.Version = version
		run.TagName = version
		return version, nil
	}); err != nil {
		return err
	}

	if err := uc.step(ctx, run, model.StepIdentity, func() (string, error) {
		if err := uc.git.SetIdentity(ctx, workDir, uc.botName, uc.botEmail); err != nil {
			return "", err
		}
		return uc.botName + " <" + uc.botEmail + ">", nil
	}); err != nil {
		return err
	}

	if err := uc.step(ctx, run, model.StepTagPush, func() (string, error) {
		if err := uc.git.CreateTag(ctx, workDir, version, model.TagMessage(version)); err != nil {
			return "", err
		}
		if err := uc.git.PushTag(ctx, workDir, uc.remote, version); err != nil {
			return "", err
		}
		return "pushed " + version + " to " + uc.remote, nil
	}); err != nil {
		return err
	}

	uc.optionalStep(ctx, run, model.StepSaveCache, func() (string, error) {
		if err := uc.cache.Save(ctx, cacheKey, workDir, policy.Cache.Paths); err != nil {
			return "", err
		}
		return "saved " + cacheKey, nil
	})

	return nil
}

// step runs one pipeline step, records its result, and persists the run.
func (uc *taggerUseCase) step(ctx context.Context, run *model.ReleaseRun, name model.StepName, fn func() (string, error)) error {
	logger := ctxlog.From(ctx)
	startedAt := time.Now()

	logger.Info("Starting step", "step", name)

	detail, err := fn()
	result := model.StepResult{
		Name:      name,
		OK:        err == nil,
		Detail:    truncate(detail, 2000),
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
	}
	if err != nil {
		result.Error = err.Error()
	}
	run.AddStep(result)
	uc.putRun(ctx, run)

	if err != nil {
		logger.Error("Step failed", "step", name, "error", err)
		return goerr.Wrap(err, "step failed", goerr.V("step", name))
	}

	logger.Info("Step completed", "step", name, "duration", result.Duration)
	return nil
}

// optionalStep records a step like step but never fails the pipeline.
func (uc *taggerUseCase) optionalStep(ctx context.Context, run *model.ReleaseRun, name model.StepName, fn func() (string, error)) {
	if err := uc.step(ctx, run, name, fn); err != nil {
		ctxlog.From(ctx).Warn("Continuing after non-fatal step failure", "step", name, "error", err)
	}
}

// loadPolicy merges the repository's own policy file, when present, over the
// server-wide defaults. A malformed file is ignored with a warning.
func (uc *taggerUseCase) loadPolicy(ctx context.Context, dir string) model.RepoPolicy {
	logger := ctxlog.From(ctx)

	raw, err := os.ReadFile(filepath.Join(dir, types.PolicyFileName))
	if err != nil {
		return uc.policy
	}

	var override model.RepoPolicy
	if err := toml.Unmarshal(raw, &override); err != nil {
		logger.Warn("Ignoring malformed policy file", "file", types.PolicyFileName, "error", err)
		return uc.policy
	}

	logger.Debug("Applying repository policy", "file", types.PolicyFileName)
	return uc.policy.Merge(override)
}

// cacheKey derives the cache key from the checkout's lockfile. A missing
// lockfile yields the policy's fallback key.
func (uc *taggerUseCase) cacheKey(dir string, policy model.CachePolicy) string {
	lock, err := os.ReadFile(filepath.Join(dir, policy.Lockfile))
	if err != nil {
		lock = nil
	}
	return policy.CacheKey(lock)
}

// putRun stores the current run snapshot. Audit writes never fail a run.
func (uc *taggerUseCase) putRun(ctx context.Context, run *model.ReleaseRun) {
	if err := uc.runs.Put(ctx, run); err != nil {
		ctxlog.From(ctx).Warn("Failed to store run record", "error", err, "run_id", run.ID)
	}
}

// notifyRun reports the finished run. Notification failures are logged only.
func (uc *taggerUseCase) notifyRun(ctx context.Context, run *model.ReleaseRun) {
	if uc.notifier == nil {
		return
	}
	if err := uc.notifier.NotifyRun(ctx, run); err != nil {
		ctxlog.From(ctx).Warn("Failed to send run notification", "error", err, "run_id", run.ID)
	}
}

// truncate caps s at n bytes.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
