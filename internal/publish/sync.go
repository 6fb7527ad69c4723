// Package publish uploads the generated reports and serves them locally for
// preview.
package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

type SyncOptions struct {
	Command string
	Args    []string
	// Target is the rsync destination; the course is appended as a
	// subdirectory.
	Target string
}

// Runner executes a command and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

type RsyncSyncer struct {
	opts   SyncOptions
	run    Runner
	logger *slog.Logger
}

func NewSyncer(opts SyncOptions, logger *slog.Logger) *RsyncSyncer {
	if opts.Command == "" {
		opts.Command = "rsync"
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &RsyncSyncer{opts: opts, run: execRunner, logger: logger}
}

// WithRunner replaces the command runner.
func (s *RsyncSyncer) WithRunner(run Runner) *RsyncSyncer {
	s.run = run
	return s
}

// Destination returns where files for course are uploaded.
func (s *RsyncSyncer) Destination(course string) string {
	return strings.TrimRight(s.opts.Target, "/") + "/" + course + "/"
}

// Command returns the argument list passed to the sync binary.
func (s *RsyncSyncer) Command(course string, files []string) []string {
	args := make([]string, 0, len(s.opts.Args)+len(files)+1)
	args = append(args, s.opts.Args...)
	args = append(args, files...)
	return append(args, s.Destination(course))
}

// Sync uploads files. A failed upload is returned with the tool output and
// is not retried.
func (s *RsyncSyncer) Sync(ctx context.Context, course string, files []string) error {
	if s.opts.Target == "" {
		return errors.New("sync: no target configured")
	}
	if len(files) == 0 {
		return nil
	}
	args := s.Command(course, files)
	s.logger.DebugContext(ctx, "sync_started", "command", s.opts.Command, "args", strings.Join(args, " "))

	out, err := s.run(ctx, s.opts.Command, args...)
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if line != "" {
			s.logger.DebugContext(ctx, "sync_output", "line", line)
		}
	}
	if err != nil {
		return fmt.Errorf("sync %s to %s: %w: %s", course, s.Destination(course), err, strings.TrimSpace(string(out)))
	}
	s.logger.InfoContext(ctx, "sync_completed", "course", course, "files", len(files), "destination", s.Destination(course))
	return nil
}
