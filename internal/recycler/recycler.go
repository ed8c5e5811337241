package recycler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"recycle/internal/database"
	"recycle/internal/disk"
	"recycle/internal/exitcodes"
	"recycle/internal/fsops"
	"recycle/internal/logging"
	"recycle/internal/metrics"
	"recycle/internal/safety"
)

// ActionNoop is the outcome of an invocation without a path. It is never journaled.
const ActionNoop = "NOOP"

// Outcome describes what a single Recycle call did
type Outcome struct {
	Action     string // NOOP, SKIP, BLOCKED, DRY_RUN, TRASH or ERROR
	Path       string
	ObjectType string
	Size       int64
	Location   string // Where the item ended up, when the platform reports it
	ExitCode   int
}

// Recycler moves a single path to the OS trash
type Recycler struct {
	logger    logging.Logger
	trasher   fsops.Trasher
	validator *safety.Validator
	db        *database.TrashDB // Optional journal
	dryRun    bool
	metrics   bool
}

// New creates a Recycler using the platform trash and a validator protecting only volume roots.
// SetValidator replaces the length bound along with the protected paths.
// db may be nil to disable the journal.
func New(logger logging.Logger, maxPathBytes int, dryRun bool, db *database.TrashDB) *Recycler {
	if logger == nil {
		logger = logging.NewStdLogger(nil, false)
	}
	return &Recycler{
		logger:    logger,
		trasher:   fsops.NewOSTrasher(fsops.Options{}),
		validator: safety.NewValidator(maxPathBytes, nil),
		db:        db,
		dryRun:    dryRun,
	}
}

// SetTrasher replaces the trash facility (used for testing)
func (r *Recycler) SetTrasher(t fsops.Trasher) {
	r.trasher = t
}

// SetValidator replaces the safety validator
func (r *Recycler) SetValidator(v *safety.Validator) {
	r.validator = v
}

// EnableMetrics turns on Prometheus bookkeeping. metrics.Init must have been called.
func (r *Recycler) EnableMetrics(on bool) {
	r.metrics = on
}

// Recycle trashes args[0]. Extra arguments are ignored.
// The returned error is nil for NOOP, SKIP, DRY_RUN and TRASH outcomes.
func (r *Recycler) Recycle(ctx context.Context, args []string) (Outcome, error) {
	if len(args) == 0 {
		r.logger.Debug("No path given, nothing to do")
		return Outcome{Action: ActionNoop}, nil
	}
	if len(args) > 1 {
		r.logger.Debug("Ignoring extra arguments", "count", len(args)-1)
	}

	raw := args[0]
	if r.validator.TooLong(raw) {
		r.logger.Warn("Path exceeds length bound, skipping", "bytes", len(raw), "max", r.validator.MaxPathBytes)
		out := Outcome{Action: database.ActionSkip, Path: raw, ObjectType: "unknown"}
		r.record(out, nil, 0)
		return out, nil
	}

	if err := r.validator.ValidateTrashTarget(raw); err != nil {
		r.logger.Error("Refusing to trash", "path", raw, "error", err)
		out := Outcome{
			Action:     database.ActionBlocked,
			Path:       raw,
			ObjectType: "unknown",
			ExitCode:   ExitCode(err),
		}
		r.record(out, err, 0)
		return out, err
	}
	path, _ := safety.NormalizePath(raw)

	out := Outcome{Path: path, ObjectType: "unknown"}
	fi, statErr := os.Lstat(path)
	if statErr == nil {
		out.ObjectType = fsops.ObjectType(fi)
		if r.db != nil || r.metrics {
			out.Size = r.measure(path)
		}
	}

	if r.dryRun {
		r.logger.Info("[DRY RUN] Would move to trash", "path", path, "type", out.ObjectType, "size", out.Size)
		out.Action = database.ActionDryRun
		r.record(out, nil, 0)
		return out, nil
	}

	if err := ctx.Err(); err != nil {
		out.Action = database.ActionError
		out.ExitCode = ExitCode(err)
		r.record(out, err, 0)
		return out, err
	}

	var freeBytes int64 = -1
	if r.metrics {
		if _, free, _, err := disk.GetDiskUsage(filepath.Dir(path)); err == nil {
			freeBytes = free
		}
	}

	start := time.Now()
	location, err := r.trasher.Trash(path)
	duration := time.Since(start)
	if err != nil {
		r.logger.Error("Failed to move to trash", "path", path, "error", err)
		out.Action = database.ActionError
		out.ExitCode = ExitCode(err)
		r.record(out, err, duration)
		return out, err
	}

	out.Action = database.ActionTrash
	out.Location = location
	r.logger.Info("Moved to trash", "path", path, "type", out.ObjectType, "size", out.Size, "location", location)
	r.record(out, nil, duration)
	if freeBytes >= 0 {
		metrics.UpdateSourceVolumeFree(freeBytes)
	}
	return out, nil
}

// measure returns the bytes held at or below path; failures count as zero
func (r *Recycler) measure(path string) int64 {
	stats, err := disk.ScanPath(path)
	if err != nil {
		r.logger.Debug("Failed to measure", "path", path, "error", err)
		return 0
	}
	return stats.UsedBytes
}

// record journals and counts an outcome. Journal failures never change the outcome.
func (r *Recycler) record(out Outcome, opErr error, duration time.Duration) {
	if r.metrics {
		metrics.RecordOperation(out.Action, out.Size, duration)
	}
	if r.db == nil {
		return
	}

	ev := database.TrashEvent{
		Action:        out.Action,
		Path:          out.Path,
		ObjectType:    out.ObjectType,
		Size:          out.Size,
		TrashLocation: out.Location,
		Platform:      runtime.GOOS,
		ExitCode:      out.ExitCode,
	}
	if opErr != nil {
		ev.ErrorMessage = opErr.Error()
	}
	if _, err := r.db.RecordEvent(ev); err != nil {
		r.logger.Warn("Failed to record trash event", "path", out.Path, "error", err)
	}
}

// ExitCode maps a Recycle error onto the process exit status.
// Errors carrying their own code (Windows shell results) keep it.
func ExitCode(err error) int {
	if err == nil {
		return exitcodes.Success
	}

	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}

	switch {
	case errors.Is(err, safety.ErrInvalidPath), errors.Is(err, safety.ErrProtectedPath):
		return exitcodes.SafetyViolation
	case errors.Is(err, fsops.ErrUnsupported),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return exitcodes.RuntimeError
	default:
		return exitcodes.TrashFailed
	}
}
