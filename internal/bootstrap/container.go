package bootstrap

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/clipforge/clipforge/internal/config"
	"github.com/clipforge/clipforge/internal/infra/cache"
	"github.com/clipforge/clipforge/internal/infra/db"
	"github.com/clipforge/clipforge/internal/infra/logger"
	"github.com/clipforge/clipforge/internal/infra/mediaexec"
	mq "github.com/clipforge/clipforge/internal/infra/queue"
	"github.com/clipforge/clipforge/internal/infra/remoteclient"
	"github.com/clipforge/clipforge/internal/modules/handler"
	"github.com/clipforge/clipforge/internal/modules/model"
	"github.com/clipforge/clipforge/internal/modules/repo"
	"github.com/clipforge/clipforge/internal/modules/service"
	"github.com/clipforge/clipforge/internal/pkg/pathref"
	"github.com/clipforge/clipforge/internal/pkg/tokenizer"
)

func BuildContainer() *do.Injector {
	inj := do.New()

	// config
	do.Provide(inj, func(i *do.Injector) (*config.Config, error) {
		return config.Load()
	})

	// logger
	do.Provide(inj, func(i *do.Injector) (*zap.Logger, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return logger.New(cfg)
	})

	// DB
	do.Provide(inj, func(i *do.Injector) (*gorm.DB, error) {
		cfg := do.MustInvoke[*config.Config](i)
		log := do.MustInvoke[*zap.Logger](i)
		d, err := db.New(cfg)
		if err != nil {
			return nil, err
		}
		if cfg.Telemetry.Enabled {
			if err := db.RegisterOpenTelemetryPlugin(d); err != nil {
				return nil, err
			}
		}
		if err := d.AutoMigrate(&model.Project{}); err != nil {
			return nil, err
		}
		if err := EnsureStarterProject(context.Background(), d, log); err != nil {
			return nil, err
		}
		return d, nil
	})

	// Redis
	do.Provide(inj, func(i *do.Injector) (*redis.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		rdb, err := cache.New(cfg)
		if err != nil {
			return nil, err
		}
		if cfg.Telemetry.Enabled {
			if err := cache.RegisterOpenTelemetryPlugin(rdb); err != nil {
				return nil, err
			}
		}
		return rdb, nil
	})

	// RabbitMQ connection. Optional: edit.completed events are a
	// fire-and-forget integration surface.
	do.Provide(inj, func(i *do.Injector) (*amqp.Connection, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return mq.Connect(cfg)
	})
	do.Provide(inj, func(i *do.Injector) (*mq.Publisher, error) {
		cfg := do.MustInvoke[*config.Config](i)
		log := do.MustInvoke[*zap.Logger](i)
		conn := do.MustInvoke[*amqp.Connection](i)
		return mq.NewPublisher(conn, log, cfg)
	})

	// Sandbox path resolver
	do.Provide(inj, func(i *do.Injector) (*pathref.Resolver, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return pathref.NewResolver(cfg.Sandbox.Root), nil
	})

	// ffmpeg runner
	do.Provide(inj, func(i *do.Injector) (*mediaexec.Runner, error) {
		cfg := do.MustInvoke[*config.Config](i)
		log := do.MustInvoke[*zap.Logger](i)
		return mediaexec.NewRunner(cfg, log), nil
	})

	// Remote runner client
	do.Provide(inj, func(i *do.Injector) (*remoteclient.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		log := do.MustInvoke[*zap.Logger](i)
		if !cfg.Remote.Enabled {
			return nil, nil
		}
		return remoteclient.New(cfg, log), nil
	})

	// Repo
	do.Provide(inj, func(i *do.Injector) (repo.ProjectRepo, error) {
		return repo.NewProjectRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.SettingsRepo, error) {
		return repo.NewSettingsRepo(do.MustInvoke[*redis.Client](i)), nil
	})

	// Service
	do.Provide(inj, func(i *do.Injector) (service.ProjectService, error) {
		return service.NewProjectService(
			do.MustInvoke[repo.ProjectRepo](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.SettingsService, error) {
		return service.NewSettingsService(do.MustInvoke[repo.SettingsRepo](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.EditBackend, error) {
		cfg := do.MustInvoke[*config.Config](i)
		resolver := do.MustInvoke[*pathref.Resolver](i)
		log := do.MustInvoke[*zap.Logger](i)
		if cfg.Remote.Enabled {
			return service.NewRemoteBackend(do.MustInvoke[*remoteclient.Client](i), resolver, log), nil
		}
		return service.NewLocalBackend(resolver, do.MustInvoke[*mediaexec.Runner](i), log), nil
	})
	do.Provide(inj, func(i *do.Injector) (*service.ModelGateway, error) {
		cfg := do.MustInvoke[*config.Config](i)
		log := do.MustInvoke[*zap.Logger](i)
		provider := service.NewModelProviderFromConfig(cfg, log)
		return service.NewModelGateway(provider, log), nil
	})
	do.Provide(inj, func(i *do.Injector) (*service.Notifier, error) {
		cfg := do.MustInvoke[*config.Config](i)
		log := do.MustInvoke[*zap.Logger](i)
		if !cfg.RabbitMQ.Enabled {
			return service.NewNotifier(nil, log), nil
		}
		return service.NewNotifier(do.MustInvoke[*mq.Publisher](i), log), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.EditService, error) {
		cfg := do.MustInvoke[*config.Config](i)
		log := do.MustInvoke[*zap.Logger](i)
		if err := tokenizer.Init(log); err != nil {
			return nil, err
		}
		return service.NewEditService(
			do.MustInvoke[service.ProjectService](i),
			do.MustInvoke[*service.ModelGateway](i),
			do.MustInvoke[service.EditBackend](i),
			do.MustInvoke[*service.Notifier](i),
			cfg,
			log,
		), nil
	})

	// Handler
	do.Provide(inj, func(i *do.Injector) (*handler.ProjectHandler, error) {
		return handler.NewProjectHandler(
			do.MustInvoke[service.ProjectService](i),
			do.MustInvoke[*pathref.Resolver](i),
			do.MustInvoke[*remoteclient.Client](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.FileHandler, error) {
		return handler.NewFileHandler(
			do.MustInvoke[service.ProjectService](i),
			do.MustInvoke[*pathref.Resolver](i),
			do.MustInvoke[*remoteclient.Client](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.ChatHandler, error) {
		return handler.NewChatHandler(
			do.MustInvoke[service.EditService](i),
			do.MustInvoke[*service.ModelGateway](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.SandboxHandler, error) {
		return handler.NewSandboxHandler(
			do.MustInvoke[service.EditBackend](i),
			do.MustInvoke[*pathref.Resolver](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.ToolHandler, error) {
		return handler.NewToolHandler(), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.SettingsHandler, error) {
		return handler.NewSettingsHandler(do.MustInvoke[service.SettingsService](i)), nil
	})

	return inj
}
