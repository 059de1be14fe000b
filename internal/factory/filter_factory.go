package factory

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/mikey/lateral-phish-detector/internal/adapters/filter"
	"github.com/mikey/lateral-phish-detector/internal/config"
	"github.com/mikey/lateral-phish-detector/internal/core"
	"github.com/mikey/lateral-phish-detector/internal/ports"
	"github.com/mikey/lateral-phish-detector/internal/utils"
)

// FilterFactory creates email filters based on configuration
type FilterFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	service       *core.LateralPhishService
	textProcessor *utils.TextProcessor
}

// NewFilterFactory creates a new filter factory
func NewFilterFactory(
	cfg *config.Config,
	logger *zap.Logger,
	service *core.LateralPhishService,
	textProcessor *utils.TextProcessor,
) *FilterFactory {
	return &FilterFactory{
		cfg:           cfg,
		logger:        logger,
		service:       service,
		textProcessor: textProcessor,
	}
}

// CreateEmailFilters creates every filter listed in server.filters
func (f *FilterFactory) CreateEmailFilters() ([]ports.EmailFilter, error) {
	names := f.cfg.GetServer().Filters
	if len(names) == 0 {
		return nil, fmt.Errorf("no filters configured")
	}

	filters := make([]ports.EmailFilter, 0, len(names))
	for _, name := range names {
		emailFilter, err := f.CreateEmailFilter(name)
		if err != nil {
			return nil, err
		}
		filters = append(filters, emailFilter)
	}
	return filters, nil
}

// CreateEmailFilter creates a single filter by name
func (f *FilterFactory) CreateEmailFilter(name string) (ports.EmailFilter, error) {
	switch name {
	case "http":
		cfg := f.cfg.GetHTTP()
		return filter.NewHTTPFilter(
			f.service,
			f.logger,
			cfg.ListenAddress,
			cfg.AllowedOrigins,
			cfg.BodyLimit,
		), nil
	case "smtp", "postfix":
		cfg := f.cfg.GetSMTP()
		return filter.NewSMTPFilter(
			f.service,
			f.logger,
			cfg.ListenAddress,
			cfg.BlockPhishing,
			filter.Headers{
				Status: cfg.Headers.Status,
				Score:  cfg.Headers.Score,
				Domain: cfg.Headers.Domain,
				Error:  cfg.Headers.Error,
			},
			cfg.Postfix.Address,
			cfg.Postfix.Port,
			cfg.Postfix.Enabled,
			cfg.MaxMessageBytes,
			f.cfg.GetScoring().Timeout,
		), nil
	default:
		return nil, fmt.Errorf("unsupported filter type: %s", name)
	}
}

// CreateCLIFilter creates the report-printing filter used by the CLI
func (f *FilterFactory) CreateCLIFilter(out io.Writer, verbose bool) *filter.CLIFilter {
	return filter.NewCLIFilter(f.service, f.logger, f.textProcessor, out, verbose)
}
