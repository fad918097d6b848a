package cli

import (
	"context"

	"ecotrack/internal/modkit"
	"ecotrack/internal/platform/logger"
	"ecotrack/internal/platform/store"
	builddomain "ecotrack/internal/services/build/domain"
	buildmod "ecotrack/internal/services/build/module"
	discdomain "ecotrack/internal/services/discovery/domain"
	discmod "ecotrack/internal/services/discovery/module"
	pubdomain "ecotrack/internal/services/publish/domain"
	pubmod "ecotrack/internal/services/publish/module"
	reldomain "ecotrack/internal/services/releases/domain"
	relmod "ecotrack/internal/services/releases/module"
)

// wiring builds the collaborators of each command. Tests replace parts of it
type wiring struct {
	discovery func(deps modkit.Deps) (discdomain.PollerPort, error)
	releases  func(deps modkit.Deps) (reldomain.PollerPort, error)
	runner    func(deps modkit.Deps, o buildmod.Options, progress func(builddomain.ProjectReport)) (builddomain.RunnerPort, error)
	publisher func(ctx context.Context, deps modkit.Deps) (pubdomain.PublisherPort, func(), error)
}

func defaultWiring() wiring {
	return wiring{
		discovery: func(deps modkit.Deps) (discdomain.PollerPort, error) {
			m, err := discmod.New(deps, nil)
			if err != nil {
				return nil, err
			}
			return m.Poller(), nil
		},
		releases: func(deps modkit.Deps) (reldomain.PollerPort, error) {
			m, err := relmod.New(deps, nil)
			if err != nil {
				return nil, err
			}
			return m.Poller(), nil
		},
		runner: func(deps modkit.Deps, o buildmod.Options, progress func(builddomain.ProjectReport)) (builddomain.RunnerPort, error) {
			m, err := buildmod.New(deps, o, progress)
			if err != nil {
				return nil, err
			}
			return m.Runner(), nil
		},
		publisher: openPublisher,
	}
}

// openPublisher opens the configured stores. The returned func closes them
func openPublisher(ctx context.Context, deps modkit.Deps) (pubdomain.PublisherPort, func(), error) {
	st, err := store.Open(ctx, store.FromConfig(deps.Cfg), store.WithLogger(deps.Log))
	if err != nil {
		return nil, nil, err
	}
	closeStore := func() {
		if err := st.Close(); err != nil {
			logger.Named("store").Warn().Err(err).Msg("close store")
		}
	}
	m, err := pubmod.New(deps.WithStore(st))
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	return m.Publisher(), closeStore, nil
}
