package cmd

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mykolas-perevicius/edplay/internal/catalog"
	"github.com/mykolas-perevicius/edplay/internal/exercise"
	"github.com/mykolas-perevicius/edplay/internal/lessonpath"
	"github.com/mykolas-perevicius/edplay/internal/progress"
	"github.com/mykolas-perevicius/edplay/internal/store"
)

// env is the per-invocation wiring shared by the subcommands.
type env struct {
	dbPath  string
	store   *store.Store
	catalog *catalog.Catalog
	norm    *lessonpath.Normalizer
	tracker *progress.Tracker
	session string
}

// openEnv opens the store and loads the learner's progress.
func openEnv(ctx context.Context) (*env, error) {
	cat := catalog.Default()
	if conf.Catalog != "" {
		var err error
		cat, err = catalog.Load(conf.Catalog)
		if err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
	}

	dbPath, err := resolveDBPath(conf)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	e := &env{
		dbPath:  dbPath,
		store:   st,
		catalog: cat,
		norm:    conf.Normalizer(),
		session: uuid.NewString(),
	}
	logger.Debug("opened store",
		zap.String("path", dbPath),
		zap.String("base", e.norm.Base()),
		zap.String("session", e.session))

	e.tracker, err = progress.New(ctx, st.KV(), cat, e.norm,
		progress.WithLogger(logger),
		progress.WithJournal(st.EventRepo(), e.session))
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("load progress: %w", err)
	}
	return e, nil
}

// runner builds an exercise runner from the sandbox settings.
func (e *env) runner() *exercise.Runner {
	sbOpts := []exercise.SandboxOption{exercise.WithSandboxLogger(logger)}
	if len(conf.Sandbox.Allow) > 0 {
		sbOpts = append(sbOpts, exercise.WithAllowlist(conf.Sandbox.Allow))
	}
	runOpts := []exercise.RunnerOption{exercise.WithRunnerLogger(logger)}
	if conf.Sandbox.Concurrency > 0 {
		runOpts = append(runOpts, exercise.WithConcurrency(conf.Sandbox.Concurrency))
	}
	return exercise.NewRunner(exercise.NewSandbox(sbOpts...), e.tracker, runOpts...)
}

func (e *env) Close() error {
	return e.store.Close()
}
