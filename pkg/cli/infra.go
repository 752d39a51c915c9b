package cli

import (
	"context"

	"github.com/m-mizutani/ctxlog"

	"github.com/drover-dev/drover/pkg/cli/config"
	"github.com/drover-dev/drover/pkg/domain/interfaces"
	"github.com/drover-dev/drover/pkg/infra/git"
	"github.com/drover-dev/drover/pkg/infra/toolchain"
	"github.com/drover-dev/drover/pkg/usecase"
)

// buildTagger assembles the release pipeline from configuration. The returned
// cleanup releases infrastructure clients and must be called once the tagger
// is no longer in use.
func buildTagger(
	ctx context.Context,
	githubCfg *config.GitHub,
	releaseCfg *config.Release,
	cacheCfg *config.Cache,
	firestoreCfg *config.Firestore,
	notifyCfg *config.Notify,
) (interfaces.TaggerUseCase, interfaces.RunRepository, func(), error) {
	logger := ctxlog.From(ctx)

	cacheStore, closeCache, err := cacheCfg.Store(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	runs, closeRuns, err := firestoreCfg.Repository(ctx)
	if err != nil {
		closeCache()
		return nil, nil, nil, err
	}

	cleanup := func() {
		closeRuns()
		closeCache()
	}

	ghClient, err := githubCfg.Client()
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}

	var gitOpts []git.Option
	taggerOpts := []usecase.TaggerOption{
		usecase.WithRemote(releaseCfg.Remote),
		usecase.WithBotIdentity(releaseCfg.BotName, releaseCfg.BotEmail),
		usecase.WithNotifier(notifyCfg.Notifier()),
		usecase.WithRunTimeout(releaseCfg.Timeout),
	}

	if ghClient != nil {
		gitOpts = append(gitOpts, git.WithTokenSource(ghClient.TokenSource()))
		taggerOpts = append(taggerOpts, usecase.WithGitHubClient(ghClient))
	} else {
		logger.Warn("No GitHub credentials configured; cloning anonymously and skipping failure comments")
	}

	tagger := usecase.NewTagger(
		git.New(gitOpts...),
		cacheStore,
		toolchain.New(),
		runs,
		taggerOpts...,
	)

	return tagger, runs, cleanup, nil
}
