// Package container provides dependency injection for the funds-xlsx
// application. It centralizes the creation and wiring of all application
// dependencies, making them explicit and testable.
package container

import (
	"fmt"

	"fjacquet/funds-xlsx/internal/batch"
	"fjacquet/funds-xlsx/internal/common"
	"fjacquet/funds-xlsx/internal/config"
	"fjacquet/funds-xlsx/internal/factory"
	"fjacquet/funds-xlsx/internal/funds"
	"fjacquet/funds-xlsx/internal/ictax"
	"fjacquet/funds-xlsx/internal/logging"
	"fjacquet/funds-xlsx/internal/models"
	"fjacquet/funds-xlsx/internal/specstore"
	"fjacquet/funds-xlsx/internal/xmlutils"
)

// sourceTypes lists every source the container wires up.
var sourceTypes = []factory.SourceType{
	factory.CSV,
	factory.XLSX,
	factory.XML,
	factory.HTML,
	factory.PDF,
}

// Container holds all application dependencies and provides methods to
// access them. It is immutable after creation - all fields are private and
// can only be reached through getter methods.
type Container struct {
	logger     logging.Logger
	config     *config.Config
	specs      *specstore.Store
	lookup     *ictax.Client
	aggregator *batch.Aggregator
	sources    map[factory.SourceType]models.TableSource
}

// NewContainer creates and wires all application dependencies.
// This is the main entry point for dependency injection in the application.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	// Create logger first as it's needed by other components
	logger := logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)

	// Propagate it to the packages that keep one of their own
	funds.SetLogger(logger)
	xmlutils.SetLogger(logger)
	common.SetLogger(logger)
	common.SetDelimiter([]rune(cfg.CSV.Delimiter)[0])

	specs := specstore.NewStore(cfg.Specs.Directory, logger)

	// Create the lookup client (if enabled)
	var lookup *ictax.Client
	if cfg.Lookup.Enabled {
		opts := []ictax.Option{
			ictax.WithTimeout(cfg.LookupTimeout()),
			ictax.WithDelay(cfg.LookupDelay()),
		}
		if cfg.Lookup.URL != "" {
			opts = append(opts, ictax.WithURL(cfg.Lookup.URL))
		}
		lookup = ictax.NewClient(logger, opts...)
		logger.Info("ICTax lookup enabled")
	} else {
		logger.Info("ICTax lookup disabled")
	}

	// Create sources with dependency injection
	sources := make(map[factory.SourceType]models.TableSource, len(sourceTypes))
	for _, sourceType := range sourceTypes {
		source, err := factory.GetSourceWithLogger(sourceType, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s source: %w", sourceType, err)
		}
		sources[sourceType] = source
	}

	aggregator := batch.NewAggregator(logger)

	logger.Info("Container initialized successfully",
		logging.Field{Key: "sources_count", Value: len(sources)},
		logging.Field{Key: "lookup_enabled", Value: cfg.Lookup.Enabled})

	return &Container{
		logger:     logger,
		config:     cfg,
		specs:      specs,
		lookup:     lookup,
		aggregator: aggregator,
		sources:    sources,
	}, nil
}

// GetSource returns a table source for the given type.
func (c *Container) GetSource(st factory.SourceType) (models.TableSource, error) {
	s, ok := c.sources[st]
	if !ok {
		return nil, fmt.Errorf("unknown source type: %s", st)
	}
	return s, nil
}

// GetSources returns a copy of the source registry.
// This prevents external modification of the internal source map.
func (c *Container) GetSources() map[factory.SourceType]models.TableSource {
	result := make(map[factory.SourceType]models.TableSource, len(c.sources))
	for k, v := range c.sources {
		result[k] = v
	}
	return result
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetSpecs returns the table specification store.
func (c *Container) GetSpecs() *specstore.Store {
	return c.specs
}

// GetLookup returns the ICTax client, or nil when lookups are disabled.
func (c *Container) GetLookup() *ictax.Client {
	return c.lookup
}

// GetAggregator returns the batch aggregator.
func (c *Container) GetAggregator() *batch.Aggregator {
	return c.aggregator
}

// Close performs cleanup of container resources.
// This method should be called when the container is no longer needed.
func (c *Container) Close() error {
	// Currently no resources need explicit cleanup
	// This method is provided for future extensibility
	c.logger.Info("Container closed")
	return nil
}
