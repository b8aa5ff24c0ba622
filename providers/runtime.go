package providers

import (
	"fmt"
	"strings"
	"sync"

	"github.com/RepreZen/SwagEdit/logging"
	"github.com/RepreZen/SwagEdit/validation"
	"github.com/dop251/goja"
)

// runtime wraps the goja runtime of one script. goja runtimes are not safe for concurrent use:
// every call into vm holds mu.
type runtime struct {
	mu     sync.Mutex
	vm     *goja.Runtime
	file   string
	logger logging.Logger

	registered []*goja.Object
}

func newRuntime(file string, logger logging.Logger) (*runtime, error) {
	vm := goja.New()
	vm.SetFieldNameMapper(goja.UncapFieldNameMapper())

	rt := &runtime{
		vm:     vm,
		file:   file,
		logger: logger.With("script", file),
	}

	if err := rt.setupConsole(); err != nil {
		return nil, fmt.Errorf("setting up console: %w", err)
	}
	if err := rt.setupGlobals(); err != nil {
		return nil, fmt.Errorf("setting up globals: %w", err)
	}

	return rt, nil
}

func (rt *runtime) setupConsole() error {
	console := rt.vm.NewObject()

	levels := map[string]func(msg string, attrs ...any){
		"log":   rt.logger.Info,
		"info":  rt.logger.Info,
		"debug": rt.logger.Debug,
		"warn":  rt.logger.Warn,
		"error": rt.logger.Error,
	}
	for name, log := range levels {
		if err := console.Set(name, func(call goja.FunctionCall) goja.Value {
			log(formatArgs(call.Arguments))
			return goja.Undefined()
		}); err != nil {
			return err
		}
	}

	return rt.vm.Set("console", console)
}

func formatArgs(args []goja.Value) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = arg.String()
	}
	return strings.Join(parts, " ")
}

func (rt *runtime) setupGlobals() error {
	if err := rt.vm.Set("registerProvider", rt.registerProvider); err != nil {
		return err
	}
	return rt.vm.Set("createDiagnostic", rt.createDiagnostic)
}

// registerProvider(provider) records a provider object; it is validated once the script has run.
func (rt *runtime) registerProvider(call goja.FunctionCall) goja.Value {
	arg := call.Argument(0)
	if goja.IsUndefined(arg) || goja.IsNull(arg) {
		panic(rt.vm.NewTypeError("registerProvider requires a provider argument"))
	}
	rt.registered = append(rt.registered, arg.ToObject(rt.vm))
	return goja.Undefined()
}

// createDiagnostic(severity, message, node[, rule]) builds a diagnostic anchored on node.
func (rt *runtime) createDiagnostic(call goja.FunctionCall) goja.Value {
	if len(call.Arguments) < 3 {
		panic(rt.vm.NewTypeError("createDiagnostic requires 3 arguments: severity, message, node"))
	}

	severity, err := validation.ParseSeverity(call.Argument(0).String())
	if err != nil {
		panic(rt.vm.NewTypeError(err.Error()))
	}
	message := call.Argument(1).String()

	node, ok := call.Argument(2).Export().(*jsNode)
	if !ok {
		panic(rt.vm.NewTypeError("createDiagnostic: node must be a document node"))
	}

	rule := ""
	if r := call.Argument(3); !goja.IsUndefined(r) && !goja.IsNull(r) {
		rule = r.String()
	}

	return rt.vm.ToValue(validation.NewNodeError(severity, rule, message, node.node))
}

func (rt *runtime) run(code string) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	_, err := rt.vm.RunScript(rt.file, code)
	return err
}
