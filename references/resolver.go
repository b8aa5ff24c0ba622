package references

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/RepreZen/SwagEdit/errors"
	"github.com/RepreZen/SwagEdit/jsonpointer"
	"github.com/RepreZen/SwagEdit/logging"
	"github.com/RepreZen/SwagEdit/system"
	"github.com/RepreZen/SwagEdit/yml"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultTimeout bounds the load of one referenced document.
	DefaultTimeout = 10 * time.Second
	// prefetchLimit is the number of documents loaded in parallel by Prefetch.
	prefetchLimit = 4
	// DefaultMaxDocumentSize is the largest referenced document loaded, in bytes.
	DefaultMaxDocumentSize = 32 << 20
)

// Resolver resolves references against the referring document and the documents they point to.
// Loaded documents, including failures, are cached for the lifetime of the resolver, so a resolver
// is meant to live for one validation run.
type Resolver struct {
	fs       system.VirtualFS
	client   system.Client
	timeout  time.Duration
	external bool
	maxSize  int64
	logger   logging.Logger

	documents sync.Map // map[string]*loadResult
	group     singleflight.Group
}

type loadResult struct {
	root *yaml.Node
	err  error
}

// ResolverOption configures a Resolver.
type ResolverOption func(r *Resolver)

// WithVirtualFS sets the file system used for file references. The operating system is used by default.
func WithVirtualFS(fsys system.VirtualFS) ResolverOption {
	return func(r *Resolver) {
		if fsys != nil {
			r.fs = fsys
		}
	}
}

// WithHTTPClient sets the client used for http and https references. http.DefaultClient is used by default.
func WithHTTPClient(client system.Client) ResolverOption {
	return func(r *Resolver) {
		if client != nil {
			r.client = client
		}
	}
}

// WithTimeout bounds the load of each referenced document. Non-positive values keep the default.
func WithTimeout(timeout time.Duration) ResolverOption {
	return func(r *Resolver) {
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}

// WithExternalReferences enables or disables loading other documents.
func WithExternalReferences(enabled bool) ResolverOption {
	return func(r *Resolver) {
		r.external = enabled
	}
}

// WithMaxDocumentSize sets the largest referenced document loaded, in bytes. Larger documents are
// unloadable. Non-positive values keep the default.
func WithMaxDocumentSize(size int64) ResolverOption {
	return func(r *Resolver) {
		if size > 0 {
			r.maxSize = size
		}
	}
}

func WithLogger(logger logging.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logging.OrNop(logger)
	}
}

func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		fs:       &system.FileSystem{},
		client:   http.DefaultClient,
		timeout:  DefaultTimeout,
		external: true,
		maxSize:  DefaultMaxDocumentSize,
		logger:   logging.NopLogger{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Target is the node a reference resolves to.
type Target struct {
	// Location is the absolute location of the document holding the node.
	Location string
	Pointer  jsonpointer.JSONPointer
	Node     *yaml.Node
	// Internal is set when the node is in the referring document.
	Internal bool
}

// Line returns the 1-based line of the target node.
func (t *Target) Line() int {
	if t == nil || t.Node == nil {
		return 0
	}
	return t.Node.Line
}

func (t *Target) Column() int {
	if t == nil || t.Node == nil {
		return 0
	}
	return t.Node.Column
}

// Resolve resolves ref found in the document at baseURI whose raw tree is root.
// The error matches ErrInvalidReference, ErrUnresolved, ErrUnloadable or ErrExternalDisabled.
func (r *Resolver) Resolve(ctx context.Context, baseURI string, root *yaml.Node, ref Reference) (*Target, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	jp := ref.GetJSONPointer()

	location := baseURI
	internal := ref.GetURI() == ""
	if !internal {
		result, err := ResolveAbsoluteReference(ref, baseURI)
		if err != nil {
			return nil, ErrInvalidReference.Wrap(err)
		}
		location = result.AbsoluteReference
		internal = location == baseURI
	}

	doc := root
	if !internal {
		if !r.external {
			return nil, ErrExternalDisabled
		}
		var err error
		doc, err = r.Load(ctx, location)
		if err != nil {
			return nil, err
		}
	}

	node, err := jsonpointer.GetYAMLTarget(doc, jp)
	if err != nil {
		return nil, ErrUnresolved.Wrap(err)
	}

	return &Target{
		Location: location,
		Pointer:  jp,
		Node:     node,
		Internal: internal,
	}, nil
}

// Load returns the raw tree of the document at an absolute location. Concurrent loads of the same
// location share one fetch.
func (r *Resolver) Load(ctx context.Context, location string) (*yaml.Node, error) {
	if cached, ok := r.documents.Load(location); ok {
		res := cached.(*loadResult)
		return res.root, res.err
	}

	v, _, _ := r.group.Do(location, func() (any, error) {
		if cached, ok := r.documents.Load(location); ok {
			return cached, nil
		}
		res := r.load(ctx, location)
		r.documents.Store(location, res)
		return res, nil
	})

	res := v.(*loadResult)
	return res.root, res.err
}

// Prefetch loads the documents at the given locations in parallel so later resolutions hit the cache.
func (r *Resolver) Prefetch(ctx context.Context, locations []string) {
	if !r.external || len(locations) == 0 {
		return
	}

	var g errgroup.Group
	g.SetLimit(prefetchLimit)

	seen := make(map[string]struct{}, len(locations))
	for _, location := range locations {
		if _, ok := seen[location]; ok {
			continue
		}
		seen[location] = struct{}{}

		g.Go(func() error {
			_, _ = r.Load(ctx, location)
			return nil
		})
	}

	_ = g.Wait()
}

func (r *Resolver) load(ctx context.Context, location string) *loadResult {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	data, err := r.fetch(ctx, location)
	if err != nil {
		r.logger.Debug("failed to load referenced document", "location", location, "error", err)
		return &loadResult{err: err}
	}

	root, err := yml.Parse(data)
	if err != nil {
		return &loadResult{err: ErrUnloadable.Wrap(err)}
	}

	r.logger.Debug("loaded referenced document", "location", location, "bytes", len(data), "duration", time.Since(start))
	return &loadResult{root: root}
}

func (r *Resolver) fetch(ctx context.Context, location string) ([]byte, error) {
	classification, err := ClassifyReference(location)
	if err != nil {
		return nil, ErrInvalidReference.Wrap(err)
	}

	if classification.IsRemote() {
		return r.fetchURL(ctx, location)
	}

	path, ok := classification.FilePath()
	if !ok {
		return nil, ErrUnloadable.Wrap(fmt.Errorf("unsupported location: %s", location))
	}
	return r.readFile(ctx, path)
}

func (r *Resolver) fetchURL(ctx context.Context, location string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, ErrInvalidReference.Wrap(err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, ErrUnloadable.Wrap(err)
	}
	if resp == nil {
		return nil, ErrUnloadable.Wrap(errors.New("no response"))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, ErrUnresolved.Wrap(fmt.Errorf("HTTP request failed with status %d", resp.StatusCode))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, ErrUnloadable.Wrap(fmt.Errorf("HTTP request failed with status %d", resp.StatusCode))
	}

	// one byte past the limit tells a truncated body from one of exactly the limit
	data, err := io.ReadAll(io.LimitReader(resp.Body, r.maxSize+1))
	if err != nil {
		return nil, ErrUnloadable.Wrap(err)
	}
	if err := r.checkSize(data); err != nil {
		return nil, err
	}
	return data, nil
}

func (r *Resolver) checkSize(data []byte) error {
	if int64(len(data)) > r.maxSize {
		return ErrUnloadable.Wrap(fmt.Errorf("document larger than %d bytes", r.maxSize))
	}
	return nil
}

func (r *Resolver) readFile(ctx context.Context, path string) ([]byte, error) {
	type result struct {
		data []byte
		err  error
	}

	done := make(chan result, 1)
	go func() {
		data, err := system.ReadFile(r.fs, path)
		done <- result{data: data, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ErrUnloadable.Wrap(ctx.Err())
	case res := <-done:
		switch {
		case errors.Is(res.err, fs.ErrNotExist):
			return nil, ErrUnresolved.Wrap(res.err)
		case res.err != nil:
			return nil, ErrUnloadable.Wrap(res.err)
		}
		if err := r.checkSize(res.data); err != nil {
			return nil, err
		}
		return res.data, nil
	}
}
