package dirsize

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrCanceled is returned when a scan stops because of cancellation.
	ErrCanceled = errors.New("scan canceled")
	// ErrScanInProgress is returned when Scan is called while another scan is active.
	ErrScanInProgress = errors.New("scan already in progress")
	// ErrWorkerCrashed wraps a panic raised inside the walker.
	ErrWorkerCrashed = errors.New("scan worker crashed")
	// ErrNotDirectory is returned when the scan root is not a directory.
	ErrNotDirectory = errors.New("not a directory")
)

// deltaBuffer is the capacity of the walker-to-scanner channel.
const deltaBuffer = 64

// Options configures a Scanner.
type Options struct {
	// SparseThreshold is the logical size above which files are probed (0 = DefaultSparseThreshold).
	SparseThreshold int64
	// ProbeTimeout bounds each disk-usage probe (0 = DefaultProbeTimeout).
	ProbeTimeout time.Duration
	// Prober overrides the du based disk-usage probe.
	Prober Prober
	// ProgressInterval is the minimum spacing of throttled updates (0 = DefaultProgressInterval).
	ProgressInterval time.Duration
	// ProgressHook receives progress updates; may be nil.
	ProgressHook ProgressHook
	// PreCount counts all directories up front for a steadier estimate.
	PreCount bool
	// Logger receives diagnostics; discarded when nil.
	Logger logrus.FieldLogger
}

// Scanner runs directory scans, one at a time.
type Scanner struct {
	opts     Options
	resolver *Resolver
	readDir  func(string) ([]fs.DirEntry, error)
	lstat    func(string) (FileMeta, error)
	log      logrus.FieldLogger

	mu     sync.Mutex
	active *session
}

// New creates a Scanner with opts.
func New(opts Options) *Scanner {
	if opts.Logger == nil {
		opts.Logger = discardLogger()
	}

	return &Scanner{
		opts:     opts,
		resolver: NewResolver(opts.SparseThreshold, opts.ProbeTimeout, opts.Prober, opts.Logger),
		readDir:  defaultReadDir,
		lstat:    lstatMeta,
		log:      opts.Logger,
	}
}

// Cancel asks the active scan to stop and reports whether one was running.
// It returns immediately; the walker stops at its next checkpoint.
func (s *Scanner) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return false
	}

	s.active.log.Info("cancel requested")
	s.active.cancel()

	return true
}

// Scan walks root and returns its tree.
//
// It returns ErrCanceled when canceled through Cancel or ctx, ErrScanInProgress
// when another scan is running, and a wrapped error when root cannot be
// scanned or the walker crashes. Errors below the root are skipped.
func (s *Scanner) Scan(ctx context.Context, root string) (*Node, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sess := newSession(absRoot, s.opts.ProgressInterval, s.log)
	sess.cancel = cancel

	if !s.begin(sess) {
		return nil, ErrScanInProgress
	}
	defer s.end(sess)

	sess.log.Debug("scan started")
	s.emit(sess.progress.start(absRoot))

	if err := checkRoot(absRoot); err != nil {
		sess.log.WithError(err).Error("scan failed")
		s.emit(sess.progress.failed(err))

		return nil, err
	}

	deltas := make(chan delta, deltaBuffer)
	w := &walker{
		resolver: s.resolver,
		readDir:  s.readDir,
		lstat:    s.lstat,
		deltas:   deltas,
		log:      sess.log,
	}

	var (
		group  errgroup.Group
		result *Node
	)

	group.Go(func() (err error) {
		defer close(deltas)
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: %v", ErrWorkerCrashed, r)
			}
		}()

		if s.opts.PreCount {
			n, err := countDirectories(ctx, absRoot)
			if err != nil {
				sess.log.WithError(err).Debug("directory pre-count incomplete")
			}

			w.report(ctx, delta{Seed: n, Current: absRoot})
		}

		result, err = w.walk(ctx, absRoot, true)

		return err
	})

	group.Go(func() error {
		for d := range deltas {
			if p, ok := sess.progress.apply(d); ok {
				s.emit(p)
			}
		}

		return nil
	})

	err = group.Wait()

	log := sess.log.WithField("elapsed", time.Since(sess.started))

	switch {
	case errors.Is(err, ErrCanceled):
		log.Info("scan canceled")
		s.emit(sess.progress.canceled())

		return nil, ErrCanceled
	case err != nil:
		log.WithError(err).Error("scan failed")
		s.emit(sess.progress.failed(err))

		return nil, err
	}

	log.WithField("size", result.Size).Debug("scan finished")
	s.emit(sess.progress.complete(absRoot))

	return result, nil
}

// checkRoot verifies that root exists and is a directory.
func checkRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("accessing path %q: %w", root, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("path %q: %w", root, ErrNotDirectory)
	}

	return nil
}

// begin registers sess as the active scan unless one is already running.
func (s *Scanner) begin(sess *session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil {
		return false
	}

	s.active = sess

	return true
}

func (s *Scanner) end(sess *session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == sess {
		s.active = nil
	}
}

func (s *Scanner) emit(p Progress) {
	if s.opts.ProgressHook != nil {
		s.opts.ProgressHook(p)
	}
}

func discardLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)

	return log
}
