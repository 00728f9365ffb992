package container

import (
	"context"
	"fmt"
	"net/http"

	"go-microplastic-inspector/internal/analyzer"
	"go-microplastic-inspector/internal/config"
	"go-microplastic-inspector/internal/export"
	"go-microplastic-inspector/internal/logger"
	"go-microplastic-inspector/internal/observer"
	"go-microplastic-inspector/internal/service"
	"go-microplastic-inspector/internal/transport"
	"go-microplastic-inspector/pkg/validation"
)

// Container holds all application dependencies
type Container struct {
	config    *config.Config
	pool      *analyzer.WorkerPool
	publisher *observer.EventPublisher
	metrics   *observer.MetricsObserver
	registry  *service.Registry
	handler   http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	logger.SetLevel(cfg.LogLevel)

	// Build dependency graph
	pool := analyzer.NewWorkerPool(cfg.WorkerCount)
	pool.Start()

	metrics := observer.NewMetricsObserver()
	publisher := observer.NewEventPublisher()
	publisher.Subscribe(observer.NewLoggingObserver(logger.Logger))
	publisher.Subscribe(metrics)

	registry := service.NewRegistry(service.Dependencies{
		Detector:   analyzer.NewSimulator(analyzer.DefaultOptions().WithSeed(cfg.DetectorSeed)),
		Pool:       pool,
		Printer:    export.NewPrinter(cfg.ReportPrintDelay),
		Validator:  validation.NewUploadValidatorWithOptions(cfg.MaxFilesPerBatch, cfg.MaxFileSize),
		Publisher:  publisher,
		PreviewURL: transport.PreviewURL,
	}, cfg.SessionIdleTimeout)

	handler := transport.NewHandler(registry, metrics, pool, cfg)

	return &Container{
		config:    cfg,
		pool:      pool,
		publisher: publisher,
		metrics:   metrics,
		registry:  registry,
		handler:   handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Registry returns the session registry
func (c *Container) Registry() *service.Registry {
	return c.registry
}

// RunJanitor evicts idle sessions until ctx is done
func (c *Container) RunJanitor(ctx context.Context) {
	c.registry.Run(ctx, 0)
}

// Close stops the worker pool; queued jobs still run
func (c *Container) Close() {
	c.pool.Close()
}
