package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/RepreZen/SwagEdit/config"
	"github.com/RepreZen/SwagEdit/dialects"
	"github.com/RepreZen/SwagEdit/logging"
	"github.com/RepreZen/SwagEdit/providers"
	"github.com/RepreZen/SwagEdit/validation"
	"github.com/RepreZen/SwagEdit/validator"
	"github.com/spf13/cobra"
)

// stdinIndicator is the conventional argument to read a document from stdin.
const stdinIndicator = "-"

const stdinLocation = "<stdin>"

// environment is what every command needs to validate documents.
type environment struct {
	logger   logging.Logger
	config   *config.Config
	registry *dialects.Registry
	stdin    io.Reader
}

func newLogger(w io.Writer, verbose bool) logging.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return logging.NewSlogAdapter(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

func newEnvironment(cmd *cobra.Command, flags *globalFlags) (*environment, error) {
	logger := newLogger(cmd.ErrOrStderr(), flags.verbose)

	cfg, err := loadConfig(flags.configPath, logger)
	if err != nil {
		return nil, err
	}

	validatorOpts := []validator.Option{validator.WithPreferences(cfg.PreferenceStore())}
	if pc := cfg.ProviderConfig(); pc != nil {
		loaded, err := providers.NewLoader(providers.WithLogger(logger)).Load(pc)
		if err != nil {
			return nil, fmt.Errorf("failed to load providers: %w", err)
		}
		logger.Debug("loaded providers", "count", len(loaded))
		validatorOpts = append(validatorOpts, validator.WithProviders(loaded...))
	}

	return &environment{
		logger: logger,
		config: cfg,
		registry: dialects.New(
			dialects.WithLogger(logger),
			dialects.WithValidatorOptions(validatorOpts...),
		),
		stdin: cmd.InOrStdin(),
	}, nil
}

// loadConfig loads the configuration at path or, without a path, the default file of the working directory.
func loadConfig(path string, logger logging.Logger) (*config.Config, error) {
	if path == "" {
		found, ok := config.FindConfig(".")
		if !ok {
			return config.NewConfig(), nil
		}
		path = found
	}

	cfg, err := config.LoadConfigFromFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded configuration", "path", path)
	return cfg, nil
}

// report is the outcome of validating one file.
type report struct {
	file   string
	source []byte
	errs   []*validation.Error
	err    error
}

func (r *report) counts() (errs, warnings int) {
	if r.err != nil {
		errs++
	}
	for _, e := range r.errs {
		if e.GetSeverity() == validation.SeverityError {
			errs++
		} else {
			warnings++
		}
	}
	return errs, warnings
}

func (env *environment) read(file string) ([]byte, error) {
	if file == stdinIndicator {
		data, err := io.ReadAll(env.stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(filepath.Clean(file))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// check reads, parses and validates one file, applying the configuration to its diagnostics.
// A document that cannot be parsed yields its syntax error as a diagnostic.
func (env *environment) check(ctx context.Context, file string) *report {
	r := &report{file: file}
	if file == stdinIndicator {
		r.file = stdinLocation
	}

	r.source, r.err = env.read(file)
	if r.err != nil {
		return r
	}

	doc := dialects.Parse(r.file, r.source)
	if pe := doc.ParseError(); pe != nil {
		r.errs = []*validation.Error{validation.NewLineError(validation.SeverityError, "", pe.Message, pe.Line, pe.Column)}
		return r
	}

	set, err := env.registry.Validate(ctx, doc, "")
	if err != nil {
		r.err = err
		return r
	}
	r.errs = env.config.Filter(ctx, doc, set).Errors()

	env.logger.Debug("validated document", "file", r.file, "version", string(doc.Version()), "diagnostics", len(r.errs))
	return r
}
