// FILE: src/internal/sink/file.go
package sink

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"sync/atomic"
	"time"

	"logfunnel/src/internal/core"
	"logfunnel/src/internal/format"

	"github.com/lixenwraith/log"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15-04-05"

	DefaultMaxSizeBytes = 5 * 1024 * 1024
	DefaultMaxAgeDays   = 30
)

// FileOptions configures a file sink. Set once, before the first event.
type FileOptions struct {
	Directory    string
	Name         string
	Extension    string
	MaxSizeBytes int64
	MaxAgeDays   int
	Level        core.Level
}

// FileSink appends formatted log lines to an active file, rotating it
// to dated archives on date change or size overflow, recovering a
// leftover file from a previous run, and deleting stale archives.
//
// Disk layout:
//
//	<dir>/<name>.<ext>                      active file
//	<dir>/<name>-YYYY-MM-DD.<ext>           date-rotated archive
//	<dir>/<name>-YYYY-MM-DD_HH-mm-ss.<ext>  size-rotated archive
type FileSink struct {
	opts      FileOptions
	formatter format.Formatter
	logger    *log.Logger
	startTime time.Time

	// Rotation state, guarded by mu. Processing is strictly
	// serialized: event N's append completes before event N+1 starts.
	mu          sync.Mutex
	initialized bool
	currentDate string    // calendar date of the active file's content
	contentFrom time.Time // when the active file's content began
	size        int64     // running byte count of the active file
	file        *os.File

	// Statistics
	totalProcessed atomic.Uint64
	totalRotations atomic.Uint64
	lastProcessed  atomic.Value // time.Time
}

// NewFileSink creates a file sink. No disk state is touched until the
// first accepted event arrives.
func NewFileSink(opts FileOptions, formatter format.Formatter, logger *log.Logger) (*FileSink, error) {
	if opts.Directory == "" {
		opts.Directory = "./"
		logger.Warn("msg", "No directory provided, current directory will be used",
			"component", "file_sink")
	}
	if opts.Name == "" {
		opts.Name = "logfunnel"
		logger.Warn("msg", fmt.Sprintf("No filename provided, %s will be used", opts.Name),
			"component", "file_sink")
	}
	if opts.Extension == "" {
		opts.Extension = "log"
	}
	if opts.MaxSizeBytes <= 0 {
		opts.MaxSizeBytes = DefaultMaxSizeBytes
	}
	if opts.MaxAgeDays <= 0 {
		opts.MaxAgeDays = DefaultMaxAgeDays
	}

	fs := &FileSink{
		opts:      opts,
		formatter: formatter,
		logger:    logger,
		startTime: time.Now(),
	}
	fs.lastProcessed.Store(time.Time{})

	return fs, nil
}

func (fs *FileSink) WillHandle(ev core.BufferedEvent) bool {
	return ev.Level >= fs.opts.Level
}

// Handle appends one event to the active file, rotating first when the
// event's calendar date or the size limit demands it.
func (fs *FileSink) Handle(ev core.BufferedEvent) error {
	if !fs.WillHandle(ev) {
		return nil
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if !fs.initialized {
		fs.initialize(ev.Time)
	}

	if d := ev.Time.Format(dateLayout); d != fs.currentDate {
		fs.rotate(fs.dateArchivePath(fs.currentDate))
		fs.currentDate = d
		fs.contentFrom = ev.Time
		fs.size = 0
	}

	line, err := fs.formatter.Format(ev)
	if err != nil {
		return fmt.Errorf("failed to format event: %w", err)
	}

	if fs.size > 0 && fs.size+int64(len(line)) > fs.opts.MaxSizeBytes {
		// Archive name carries the time the rotated content started,
		// not the rotation instant
		fs.rotate(fs.sizeArchivePath(fs.currentDate, fs.contentFrom))
		fs.contentFrom = ev.Time
		fs.size = 0
	}

	if err := fs.append(line); err != nil {
		return err
	}
	fs.size += int64(len(line))

	fs.totalProcessed.Add(1)
	fs.lastProcessed.Store(time.Now())
	return nil
}

func (fs *FileSink) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.file != nil {
		err := fs.file.Close()
		fs.file = nil
		return err
	}
	return nil
}

func (fs *FileSink) GetStats() SinkStats {
	lastProc, _ := fs.lastProcessed.Load().(time.Time)

	return SinkStats{
		Type:           "file",
		TotalProcessed: fs.totalProcessed.Load(),
		StartTime:      fs.startTime,
		LastProcessed:  lastProc,
		Details: map[string]any{
			"directory": fs.opts.Directory,
			"name":      fs.opts.Name,
			"rotations": fs.totalRotations.Load(),
		},
	}
}

// initialize recovers state from an existing active file, then runs
// archive cleanup. "Now" is the first accepted event's timestamp. Must
// be called with mu held.
func (fs *FileSink) initialize(now time.Time) {
	fs.initialized = true
	fs.currentDate = now.Format(dateLayout)
	fs.contentFrom = now
	fs.size = 0

	if err := os.MkdirAll(fs.opts.Directory, 0755); err != nil {
		fs.logger.Error("msg", "Failed to create log directory",
			"component", "file_sink",
			"directory", fs.opts.Directory,
			"error", err)
	}

	info, err := os.Stat(fs.activePath())
	switch {
	case err == nil:
		if d := info.ModTime().Format(dateLayout); d != fs.currentDate {
			// Leftover from a previous run; archive it under the
			// file's own date before today's content starts
			fs.rotate(fs.dateArchivePath(d))
		} else {
			fs.size = info.Size()
		}
	case !errors.Is(err, os.ErrNotExist):
		fs.logger.Warn("msg", "Cannot stat active log file",
			"component", "file_sink",
			"path", fs.activePath(),
			"error", err)
	}

	fs.cleanup(now)
}

// rotate renames the active file to the given archive path. A missing
// source is a benign no-op; other failures are logged and the sink
// keeps appending to the still-active path.
func (fs *FileSink) rotate(archivePath string) {
	if fs.file != nil {
		if err := fs.file.Close(); err != nil {
			fs.logger.Warn("msg", "Failed to close active log file before rotation",
				"component", "file_sink",
				"error", err)
		}
		fs.file = nil
	}

	if err := os.Rename(fs.activePath(), archivePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return
		}
		fs.logger.Error("msg", "Log rotation failed",
			"component", "file_sink",
			"archive", archivePath,
			"error", err)
		return
	}

	fs.totalRotations.Add(1)
}

// append writes one formatted line to the active file, opening it
// when needed
func (fs *FileSink) append(line []byte) error {
	if fs.file == nil {
		f, err := os.OpenFile(fs.activePath(), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		fs.file = f
	}

	if _, err := fs.file.Write(line); err != nil {
		return fmt.Errorf("log append failed: %w", err)
	}
	return nil
}

// cleanup deletes archives whose filename date is older than the
// retention window, measured from the initializing event's timestamp.
// Non-matching files are left untouched.
func (fs *FileSink) cleanup(now time.Time) {
	pattern := regexp.MustCompile(
		"^" + regexp.QuoteMeta(fs.opts.Name+"-") +
			`(\d{4}-\d{2}-\d{2})(?:_\d{2}-\d{2}-\d{2})?` +
			regexp.QuoteMeta("."+fs.opts.Extension) + "$")
	cutoff := now.AddDate(0, 0, -fs.opts.MaxAgeDays).Format(dateLayout)

	entries, err := os.ReadDir(fs.opts.Directory)
	if err != nil {
		fs.logger.Warn("msg", "Archive cleanup scan failed",
			"component", "file_sink",
			"directory", fs.opts.Directory,
			"error", err)
		return
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := pattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		if _, err := time.Parse(dateLayout, m[1]); err != nil {
			continue
		}
		// ISO dates compare correctly as strings
		if m[1] >= cutoff {
			continue
		}
		path := filepath.Join(fs.opts.Directory, entry.Name())
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			fs.logger.Warn("msg", "Failed to delete stale archive",
				"component", "file_sink",
				"path", path,
				"error", err)
		}
	}
}

func (fs *FileSink) activePath() string {
	return filepath.Join(fs.opts.Directory, fs.opts.Name+"."+fs.opts.Extension)
}

func (fs *FileSink) dateArchivePath(date string) string {
	return filepath.Join(fs.opts.Directory,
		fmt.Sprintf("%s-%s.%s", fs.opts.Name, date, fs.opts.Extension))
}

func (fs *FileSink) sizeArchivePath(date string, from time.Time) string {
	return filepath.Join(fs.opts.Directory,
		fmt.Sprintf("%s-%s_%s.%s", fs.opts.Name, date, from.Format(clockLayout), fs.opts.Extension))
}
