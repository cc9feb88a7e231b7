package cli

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/aretw0/sceneflow"
	"github.com/aretw0/sceneflow/pkg/adapters/file"
	"github.com/aretw0/sceneflow/pkg/adapters/memory"
	"github.com/aretw0/sceneflow/pkg/adapters/redis"
	"github.com/aretw0/sceneflow/pkg/config"
	"github.com/aretw0/sceneflow/pkg/domain"
	"github.com/aretw0/sceneflow/pkg/observability"
	"github.com/aretw0/sceneflow/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// Runtime bundles a Director with the components built for it from configuration.
type Runtime struct {
	Director *sceneflow.Director
	Loader   *memory.Loader
	Journal  ports.TransitionJournal
	Metrics  *observability.Metrics
	Registry *prometheus.Registry
	Config   config.Config

	closeJournal func() error
}

// NewRuntime builds the simulated host, the journal selected by cfg, and the Director.
func NewRuntime(cfg config.Config, logger *slog.Logger, opts ...sceneflow.Option) (*Runtime, error) {
	journal, closeJournal, err := OpenJournal(cfg.Journal)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	loader := memory.NewLoader(cfg.Catalog(), memory.WithActiveScene(cfg.ActiveScene))

	dopts := []sceneflow.Option{
		sceneflow.WithLogger(logger),
		sceneflow.WithJournal(journal),
		sceneflow.WithMetrics(metrics),
		sceneflow.WithMinDisplay(cfg.MinDisplay),
		sceneflow.WithTickInterval(cfg.Tick),
	}
	dopts = append(dopts, opts...)

	logger.Debug("runtime configured",
		"journal", cfg.Journal.Driver,
		"scenes", len(cfg.Scenes),
		"min_display", cfg.MinDisplay,
	)

	return &Runtime{
		Director:     sceneflow.New(loader, dopts...),
		Loader:       loader,
		Journal:      journal,
		Metrics:      metrics,
		Registry:     reg,
		Config:       cfg,
		closeJournal: closeJournal,
	}, nil
}

// Close stops the Director, then releases the journal.
func (r *Runtime) Close() error {
	_ = r.Director.Close()
	if r.closeJournal != nil {
		return r.closeJournal()
	}
	return nil
}

// OpenJournal creates the journal for the configured driver.
// The returned function releases its resources.
func OpenJournal(cfg config.Journal) (ports.TransitionJournal, func() error, error) {
	switch cfg.Driver {
	case config.DriverMemory, "":
		return memory.NewJournal(), nil, nil
	case config.DriverFile:
		return file.New(cfg.Path), nil, nil
	case config.DriverRedis:
		var opts []redis.Option
		if cfg.Redis.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Redis.Prefix))
		}
		if cfg.Redis.TTL > 0 {
			opts = append(opts, redis.WithTTL(cfg.Redis.TTL))
		}
		j := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
		return j, j.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown journal driver %q", config.ErrInvalidConfig, cfg.Driver)
	}
}

// ParseSelector reads a command-line scene reference: a build index or a scene name.
func ParseSelector(s string) domain.Selector {
	if i, err := strconv.Atoi(s); err == nil {
		return domain.ByIndex(i)
	}
	return domain.ByName(s)
}
