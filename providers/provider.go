package providers

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/RepreZen/SwagEdit/document"
	"github.com/RepreZen/SwagEdit/errors"
	"github.com/RepreZen/SwagEdit/model"
	"github.com/RepreZen/SwagEdit/validation"
	"github.com/RepreZen/SwagEdit/validator"
	"github.com/dop251/goja"
	"github.com/go-sourcemap/sourcemap"
)

const (
	// ErrInvalidProvider is returned when a registered provider lacks an id or a validate function.
	ErrInvalidProvider = errors.Error("invalid provider")
	// ErrTimeout is returned when a provider call exceeds its timeout.
	ErrTimeout = errors.Error("provider execution timeout exceeded")
	// ErrInvalidResult is returned when validate returns something other than an array of diagnostics.
	ErrInvalidResult = errors.Error("provider returned an invalid result")
)

// ScriptProvider is a provider registered by a script. It implements validator.Provider.
type ScriptProvider struct {
	rt        *runtime
	obj       *goja.Object
	validate  goja.Callable
	sourceMap *sourcemap.Consumer
	timeout   time.Duration

	id       string
	versions []string
}

var _ validator.Provider = (*ScriptProvider)(nil)

func newScriptProvider(rt *runtime, obj *goja.Object, sm *sourcemap.Consumer, timeout time.Duration) (*ScriptProvider, error) {
	p := &ScriptProvider{
		rt:        rt,
		obj:       obj,
		sourceMap: sm,
		timeout:   timeout,
	}

	id, err := p.stringMember("id")
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, ErrInvalidProvider.Wrapf("%s: missing id", rt.file)
	}
	p.id = id

	validate, ok := goja.AssertFunction(obj.Get("validate"))
	if !ok {
		return nil, ErrInvalidProvider.Wrapf("%s: provider %s has no validate function", rt.file, id)
	}
	p.validate = validate

	versions, err := p.stringsMember("versions")
	if err != nil {
		return nil, err
	}
	p.versions = versions

	return p, nil
}

// stringMember reads a string property, calling it when it is a function.
func (p *ScriptProvider) stringMember(name string) (string, error) {
	v, err := p.member(name)
	if err != nil || v == nil {
		return "", err
	}
	return v.String(), nil
}

func (p *ScriptProvider) stringsMember(name string) ([]string, error) {
	v, err := p.member(name)
	if err != nil || v == nil {
		return nil, err
	}

	var out []string
	if err := p.rt.vm.ExportTo(v, &out); err != nil {
		return nil, ErrInvalidProvider.Wrapf("%s: %s must be an array of strings", p.rt.file, name)
	}
	return out, nil
}

func (p *ScriptProvider) member(name string) (goja.Value, error) {
	v := p.obj.Get(name)
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, nil
	}
	if fn, ok := goja.AssertFunction(v); ok {
		res, err := fn(p.obj)
		if err != nil {
			return nil, p.handleError(err)
		}
		if goja.IsUndefined(res) || goja.IsNull(res) {
			return nil, nil
		}
		return res, nil
	}
	return v, nil
}

func (p *ScriptProvider) ID() string { return p.id }

// Versions returns the document versions the provider applies to, nil meaning all.
func (p *ScriptProvider) Versions() []string { return p.versions }

// SourceFile returns the script the provider was registered by.
func (p *ScriptProvider) SourceFile() string { return p.rt.file }

func (p *ScriptProvider) IsActive(doc *document.Document) bool {
	if len(p.versions) == 0 {
		return true
	}
	return slices.Contains(p.versions, string(doc.Version()))
}

// Validate calls the script's validate function for one node. Calls are serialised per script and
// interrupted once the timeout elapses or ctx is done.
func (p *ScriptProvider) Validate(ctx context.Context, doc *document.Document, _ string, node model.Node) ([]*validation.Error, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.rt.mu.Lock()
	defer p.rt.mu.Unlock()

	vm := p.rt.vm
	intr := &interrupter{vm: vm}
	defer intr.finish()
	timer := time.AfterFunc(p.timeout, func() {
		intr.interrupt(ErrTimeout.Wrapf("provider %s: %v", p.id, p.timeout))
	})
	defer timer.Stop()
	stop := context.AfterFunc(ctx, func() {
		intr.interrupt(ctx.Err())
	})
	defer stop()

	result, err := p.validate(p.obj, vm.ToValue(wrapNode(node)), vm.ToValue(&jsDocument{doc: doc}))
	if err != nil {
		return nil, p.handleError(err)
	}

	return p.convert(result)
}

// interrupter interrupts the runtime during one call. Interrupts requested by a callback that fires
// after finish are dropped so they cannot abort the next call on the same runtime.
type interrupter struct {
	vm   *goja.Runtime
	mu   sync.Mutex
	done bool
}

func (i *interrupter) interrupt(v any) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.done {
		i.vm.Interrupt(v)
	}
}

func (i *interrupter) finish() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.done = true
	i.vm.ClearInterrupt()
}

func (p *ScriptProvider) handleError(err error) error {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		if cause, ok := interrupted.Value().(error); ok {
			return cause
		}
		return ErrTimeout.Wrapf("provider %s", p.id)
	}

	var exc *goja.Exception
	if errors.As(err, &exc) {
		return fmt.Errorf("provider %s: %w", p.id, MapException(exc, p.rt.file, p.sourceMap))
	}

	return fmt.Errorf("provider %s: %w", p.id, err)
}

func (p *ScriptProvider) convert(result goja.Value) ([]*validation.Error, error) {
	if result == nil || goja.IsUndefined(result) || goja.IsNull(result) {
		return nil, nil
	}

	items, ok := result.Export().([]any)
	if !ok {
		return nil, ErrInvalidResult.Wrapf("provider %s: got %s", p.id, result.ExportType())
	}

	errs := make([]*validation.Error, 0, len(items))
	for _, item := range items {
		e, ok := item.(*validation.Error)
		if !ok {
			return nil, ErrInvalidResult.Wrapf("provider %s: %T is not a diagnostic", p.id, item)
		}
		errs = append(errs, e)
	}
	return errs, nil
}
