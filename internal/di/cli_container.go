package di

import (
	"flag"
	"io"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/lateral-phish-detector/internal/adapters/filter"
	"github.com/mikey/lateral-phish-detector/internal/config"
	"github.com/mikey/lateral-phish-detector/internal/factory"
	"github.com/mikey/lateral-phish-detector/internal/logging"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// Message flags, used when no input file is given
	Subject string
	Body    string
	From    string
	To      string
	Date    string

	// Data flags override the configuration
	CorpusPath     string
	ReputationPath string
	ModelPath      string
	Threshold      float64

	// Input flags
	InputFile  string
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags(args []string) (*CLIFlags, error) {
	flags := &CLIFlags{}
	fs := flag.NewFlagSet("lateral-phish-score", flag.ContinueOnError)

	// Message flags
	fs.StringVar(&flags.Subject, "subject", "", "Message subject")
	fs.StringVar(&flags.Body, "body", "", "Message body (plain text or HTML)")
	fs.StringVar(&flags.From, "from", "", "Sender address")
	fs.StringVar(&flags.To, "to", "", "Comma-separated recipient addresses")
	fs.StringVar(&flags.Date, "date", "", "Send date as YYYY-MM-DD HH:MM:SS")

	// Data flags
	fs.StringVar(&flags.CorpusPath, "corpus", "", "Historical corpus CSV (overrides corpus.csv_path)")
	fs.StringVar(&flags.ReputationPath, "reputation", "", "Domain ranking CSV or zip (overrides reputation.path)")
	fs.StringVar(&flags.ModelPath, "model", "", "Model artifact (overrides model.path)")
	fs.Float64Var(&flags.Threshold, "threshold", 0, "Decision threshold (overrides scoring.threshold)")

	// Input flags
	fs.StringVar(&flags.InputFile, "file", "", "RFC 5322 message file to score instead of the message flags")
	fs.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	fs.StringVar(&flags.ConfigFile, "config", "", "Path to config file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return flags, nil
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags, out io.Writer) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		cfg, err := loadCLIConfig(flags)
		if err != nil {
			return nil, err
		}
		if used := cfg.GetViper().ConfigFileUsed(); used != "" {
			logger.Info("Loaded configuration from file", zap.String("file", used))
		}
		return cfg, nil
	}); err != nil {
		return nil, err
	}

	if err := provideScoring(container); err != nil {
		return nil, err
	}

	// Register CLI filter
	if err := container.Provide(func(f *factory.FilterFactory, flags *CLIFlags) *filter.CLIFilter {
		return f.CreateCLIFilter(out, flags.Verbose)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// loadCLIConfig reads the configuration and applies the flag overrides
func loadCLIConfig(flags *CLIFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flags.ConfigFile != "" {
		cfg, err = config.NewFromFile(flags.ConfigFile)
	} else {
		cfg, err = config.New()
	}
	if err != nil {
		return nil, err
	}

	v := cfg.GetViper()
	if flags.CorpusPath != "" {
		v.Set("corpus.type", "csv")
		v.Set("corpus.csv_path", flags.CorpusPath)
	}
	if flags.ReputationPath != "" {
		v.Set("reputation.path", flags.ReputationPath)
	}
	if flags.ModelPath != "" {
		v.Set("model.path", flags.ModelPath)
	}
	if flags.Threshold > 0 {
		v.Set("scoring.threshold", flags.Threshold)
	}

	return cfg, nil
}
