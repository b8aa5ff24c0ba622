package providers

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/RepreZen/SwagEdit/logging"
	"github.com/RepreZen/SwagEdit/validator"
	"github.com/evanw/esbuild/pkg/api"
	"github.com/go-sourcemap/sourcemap"
)

// hostShim backs the "swagedit" module scripts import their globals from.
//
//go:embed shim/swagedit.js
var hostShim string

const hostModule = "swagedit"

// Loader loads providers from script files. Transpiled scripts are cached by path and content.
type Loader struct {
	logger logging.Logger

	mu              sync.Mutex
	transpiledCache map[string]*transpiledScript
}

type transpiledScript struct {
	SourceFile string
	Source     []byte
	Code       string
	SourceMap  *sourcemap.Consumer
}

// LoaderOption configures a Loader.
type LoaderOption func(l *Loader)

// WithLogger sets the logger receiving script console output and load warnings.
func WithLogger(logger logging.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logging.OrNop(logger)
	}
}

func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		logger:          logging.NopLogger{},
		transpiledCache: make(map[string]*transpiledScript),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load loads the providers of every script matched by the configured paths. Each call creates
// fresh runtimes, so providers of separate calls share no script state.
func (l *Loader) Load(config *Config) ([]validator.Provider, error) {
	if config == nil || len(config.Paths) == 0 {
		return nil, nil
	}

	files, err := resolveFiles(config.Paths)
	if err != nil {
		return nil, fmt.Errorf("resolving provider scripts: %w", err)
	}

	var providers []validator.Provider
	for _, file := range files {
		source, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", file, err)
		}

		loaded, err := l.LoadSource(file, source, config.GetTimeout())
		if err != nil {
			return nil, err
		}
		providers = append(providers, loaded...)
	}

	return providers, nil
}

// LoadSource loads the providers registered by one script. name is used for error locations and
// its extension selects the loader: .ts is TypeScript, anything else JavaScript.
func (l *Loader) LoadSource(name string, source []byte, timeout time.Duration) ([]validator.Provider, error) {
	script, err := l.transpile(name, source)
	if err != nil {
		return nil, fmt.Errorf("transpiling %q: %w", name, err)
	}

	rt, err := newRuntime(name, l.logger)
	if err != nil {
		return nil, fmt.Errorf("creating runtime for %q: %w", name, err)
	}

	if err := rt.run(script.Code); err != nil {
		return nil, fmt.Errorf("executing %q: %w", name, err)
	}

	if len(rt.registered) == 0 {
		l.logger.Warn("no providers registered", "script", name)
		return nil, nil
	}

	providers := make([]validator.Provider, 0, len(rt.registered))
	for _, obj := range rt.registered {
		p, err := newScriptProvider(rt, obj, script.SourceMap, timeout)
		if err != nil {
			return nil, err
		}
		l.logger.Debug("loaded provider", "provider", p.ID(), "script", name)
		providers = append(providers, p)
	}

	return providers, nil
}

func (l *Loader) transpile(name string, source []byte) (*transpiledScript, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if cached, ok := l.transpiledCache[name]; ok && bytes.Equal(cached.Source, source) {
		return cached, nil
	}

	loader := api.LoaderJS
	if strings.EqualFold(filepath.Ext(name), ".ts") {
		loader = api.LoaderTS
	}

	code, err := bundle(string(source), name, loader)
	if err != nil {
		return nil, err
	}

	sm, code, err := ExtractInlineSourceMap(code)
	if err != nil {
		l.logger.Warn("failed to extract source map", "script", name, "error", err)
	}

	script := &transpiledScript{
		SourceFile: name,
		Source:     bytes.Clone(source),
		Code:       code,
		SourceMap:  sm,
	}
	l.transpiledCache[name] = script
	return script, nil
}

// bundle bundles one script with esbuild, resolving the host module to the embedded shim.
func bundle(source, filename string, loader api.Loader) (string, error) {
	hostPlugin := api.Plugin{
		Name: hostModule,
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: `^` + hostModule + `$`},
				func(args api.OnResolveArgs) (api.OnResolveResult, error) {
					return api.OnResolveResult{Path: args.Path, Namespace: hostModule}, nil
				})
			build.OnLoad(api.OnLoadOptions{Filter: `.*`, Namespace: hostModule},
				func(_ api.OnLoadArgs) (api.OnLoadResult, error) {
					return api.OnLoadResult{Contents: &hostShim, Loader: api.LoaderJS}, nil
				})
		},
	}

	result := api.Build(api.BuildOptions{
		Stdin: &api.StdinOptions{
			Contents:   source,
			Sourcefile: filename,
			Loader:     loader,
		},
		Bundle:         true,
		Write:          false,
		Target:         api.ES2017,
		Format:         api.FormatIIFE,
		Sourcemap:      api.SourceMapInline,
		SourcesContent: api.SourcesContentExclude,
		Plugins:        []api.Plugin{hostPlugin},
		LogLevel:       api.LogLevelSilent,
	})

	if len(result.Errors) > 0 {
		msgs := make([]string, 0, len(result.Errors))
		for _, e := range result.Errors {
			if e.Location != nil {
				msgs = append(msgs, fmt.Sprintf("%s:%d:%d: %s", e.Location.File, e.Location.Line, e.Location.Column, e.Text))
			} else {
				msgs = append(msgs, e.Text)
			}
		}
		return "", fmt.Errorf("esbuild errors:\n%s", strings.Join(msgs, "\n"))
	}
	if len(result.OutputFiles) == 0 {
		return "", fmt.Errorf("esbuild produced no output")
	}

	return string(result.OutputFiles[0].Contents), nil
}

// resolveFiles expands glob patterns to the absolute paths of .js and .ts files, without duplicates.
func resolveFiles(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}

		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				return nil, fmt.Errorf("stat %q: %w", match, err)
			}
			if info.IsDir() {
				continue
			}

			ext := strings.ToLower(filepath.Ext(match))
			if ext != ".ts" && ext != ".js" {
				continue
			}

			absPath, err := filepath.Abs(match)
			if err != nil {
				return nil, fmt.Errorf("abs path %q: %w", match, err)
			}
			if !seen[absPath] {
				seen[absPath] = true
				files = append(files, absPath)
			}
		}
	}

	return files, nil
}
