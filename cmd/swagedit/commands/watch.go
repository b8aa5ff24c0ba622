package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/RepreZen/SwagEdit/cache"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

const debounceDelay = 300 * time.Millisecond

func newWatchCommand(global *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <file>...",
		Short: "Validate documents again whenever they change",
		Long: `Validate the documents, then watch them and validate each one again when it is written.

Changes are debounced; a validation whose document changed again before it finished is not printed.
Referenced documents are reloaded on every change. Stop with Ctrl+C.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment(cmd, global)
			if err != nil {
				return err
			}
			return runWatch(cmd.Context(), env, cmd.OutOrStdout(), args)
		},
	}
}

func runWatch(ctx context.Context, env *environment, out io.Writer, files []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	watched := make(map[string]string, len(files))
	dirs := map[string]struct{}{}
	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", file, err)
		}
		watched[abs] = file
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	// editors often replace files, so watch the directories
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var outMu sync.Mutex
	session := newWatchSession(debounceDelay, func(ctx context.Context, file string) *report {
		return env.check(ctx, file)
	}, func(r *report) {
		outMu.Lock()
		defer outMu.Unlock()
		writeText(out, []*report{r}, false)
	})
	session.beforeRun = cache.ClearAllCaches
	go session.run(ctx)

	for _, file := range files {
		session.submit(file)
	}
	session.flush()

	fmt.Fprintf(out, "Watching %d documents for changes...\n", len(files))

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher channel closed")
			}
			file, ok := watched[filepath.Clean(event.Name)]
			if !ok {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				env.logger.Debug("detected change", "file", file, "op", event.Op.String())
				session.submit(file)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			env.logger.Warn("watcher error", "error", err)

		case <-ctx.Done():
			session.stop()
			return nil
		}
	}
}

type watchJob struct {
	file       string
	generation uint64
}

// watchSession debounces change notifications and validates changed files one at a time.
// Results of a file that changed again while it was being validated are discarded.
type watchSession struct {
	delay    time.Duration
	validate func(ctx context.Context, file string) *report
	emit     func(r *report)

	// beforeRun is called before each debounced batch.
	beforeRun func()

	mu          sync.Mutex
	pending     map[string]struct{}
	order       []string
	timer       *time.Timer
	generations map[string]uint64

	jobs chan watchJob
	// done is closed once jobs are no longer consumed.
	done      chan struct{}
	closeOnce sync.Once
}

func newWatchSession(delay time.Duration, validate func(ctx context.Context, file string) *report, emit func(r *report)) *watchSession {
	return &watchSession{
		delay:       delay,
		validate:    validate,
		emit:        emit,
		pending:     map[string]struct{}{},
		generations: map[string]uint64{},
		jobs:        make(chan watchJob, 64),
		done:        make(chan struct{}),
	}
}

// submit records a change of file and restarts the debounce timer.
func (s *watchSession) submit(file string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pending[file]; !ok {
		s.pending[file] = struct{}{}
		s.order = append(s.order, file)
	}
	// a running validation of file is now stale
	s.generations[file]++

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, s.flush)
}

// flush queues the pending files without waiting for the timer.
func (s *watchSession) flush() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	batch := make([]watchJob, 0, len(s.order))
	for _, file := range s.order {
		batch = append(batch, watchJob{file: file, generation: s.generations[file]})
	}
	s.pending = map[string]struct{}{}
	s.order = nil
	s.mu.Unlock()

	if len(batch) > 0 && s.beforeRun != nil {
		s.beforeRun()
	}
	for _, job := range batch {
		select {
		case s.jobs <- job:
		case <-s.done:
			return
		}
	}
}

func (s *watchSession) current(job watchJob) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[job.file] == job.generation
}

// run validates queued files until ctx is done.
func (s *watchSession) run(ctx context.Context) {
	defer s.shutdown()

	for {
		select {
		case <-ctx.Done():
			return
		case job := <-s.jobs:
			if !s.current(job) {
				continue
			}
			r := s.validate(ctx, job.file)
			if ctx.Err() != nil || !s.current(job) {
				continue
			}
			s.emit(r)
		}
	}
}

// stop cancels the pending debounce and releases any flush waiting on the queue.
func (s *watchSession) stop() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	s.shutdown()
}

func (s *watchSession) shutdown() {
	s.closeOnce.Do(func() { close(s.done) })
}
