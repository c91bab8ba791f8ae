package dirsize

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultSparseThreshold is the logical size above which files are probed for sparseness.
	DefaultSparseThreshold int64 = 10 << 30
	// DefaultProbeTimeout bounds a single disk-usage probe.
	DefaultProbeTimeout = 5 * time.Second

	blockSize = 512
)

// FileMeta is the metadata the resolver needs about a single file.
type FileMeta struct {
	// Size is the logical size reported by stat.
	Size int64
	// Blocks is the allocation in 512-byte units, or 0 when unknown.
	Blocks int64
}

// Prober reports the bytes actually allocated to a path.
type Prober interface {
	Probe(ctx context.Context, path string) (int64, error)
}

// DiskUsageProber queries allocation by running `du -k`.
type DiskUsageProber struct {
	// Command is the du executable, "du" when empty.
	Command string
}

// Probe runs du against path. The process is killed when ctx is done.
func (p DiskUsageProber) Probe(ctx context.Context, path string) (int64, error) {
	command := p.Command
	if command == "" {
		command = "du"
	}

	cmd := exec.CommandContext(ctx, command, "-k", path)
	cmd.WaitDelay = time.Second

	output, err := cmd.Output()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, fmt.Errorf("running %s: %w", command, ctxErr)
		}

		return 0, fmt.Errorf("running %s: %w", command, err)
	}

	return parseDiskUsage(string(output))
}

// parseDiskUsage converts the first field of du -k output to bytes.
func parseDiskUsage(output string) (int64, error) {
	fields := strings.Fields(output)
	if len(fields) == 0 {
		return 0, errors.New("empty du output")
	}

	kib, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing du output %q: %w", fields[0], err)
	}

	if kib < 0 || kib > math.MaxInt64/1024 {
		return 0, fmt.Errorf("du reported out of range size %d KiB", kib)
	}

	return kib * 1024, nil
}

// Resolver determines how many bytes a file consumes on disk.
type Resolver struct {
	// Threshold is the logical size above which the prober is consulted.
	Threshold int64
	// Timeout bounds each probe.
	Timeout time.Duration
	// Prober queries actual allocation.
	Prober Prober
	// Logger receives sparse-file diagnostics.
	Logger logrus.FieldLogger
}

// NewResolver returns a Resolver with defaults applied for zero values.
func NewResolver(threshold int64, timeout time.Duration, prober Prober, log logrus.FieldLogger) *Resolver {
	if threshold <= 0 {
		threshold = DefaultSparseThreshold
	}

	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}

	if prober == nil {
		prober = DiskUsageProber{}
	}

	if log == nil {
		log = discardLogger()
	}

	return &Resolver{Threshold: threshold, Timeout: timeout, Prober: prober, Logger: log}
}

// Resolve returns the best estimate of the bytes path occupies.
// Failures never surface; they degrade to the logical size.
func (r *Resolver) Resolve(ctx context.Context, path string, meta FileMeta) int64 {
	logical := max(meta.Size, 0)

	if logical <= r.Threshold {
		return logical
	}

	log := r.Logger.WithField("path", path)

	probeCtx, cancel := context.WithTimeout(ctx, r.Timeout)
	actual, err := r.Prober.Probe(probeCtx, path)
	cancel()

	switch {
	case err != nil:
		log.WithError(err).Debug("disk usage probe failed")
	case actual > 0 && actual < logical:
		log.Debugf("sparse file: logical %s, allocated %s", humanize.IBytes(uint64(logical)), humanize.IBytes(uint64(actual)))

		return actual
	}

	if meta.Blocks > 0 && meta.Blocks <= math.MaxInt64/blockSize {
		if allocated := meta.Blocks * blockSize; allocated < logical {
			log.Debugf("using block allocation %s instead of %s", humanize.IBytes(uint64(allocated)), humanize.IBytes(uint64(logical)))

			return allocated
		}
	}

	return logical
}
