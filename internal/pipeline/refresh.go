package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/natefinch/atomic"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"ticket-stats/internal/report"
)

var (
	// ErrTimeout is returned when regeneration exceeds its time budget.
	ErrTimeout = errors.New("report regeneration timed out")
	// ErrBusy is returned when another refresh is still running.
	ErrBusy = errors.New("another refresh is in progress")
)

// Refresher replaces the ticket workbook and regenerates the report as one
// transaction: on failure the previous workbook is restored from backup and
// the previous report stays in place.
type Refresher struct {
	runner     *Runner
	opts       Options
	backupFile string
	timeout    time.Duration
	sem        *semaphore.Weighted
}

// NewRefresher creates a Refresher for opts. timeout bounds every regeneration.
func NewRefresher(runner *Runner, opts Options, backupFile string, timeout time.Duration) *Refresher {
	return &Refresher{
		runner:     runner,
		opts:       opts,
		backupFile: backupFile,
		timeout:    timeout,
		sem:        semaphore.NewWeighted(1),
	}
}

type outcome struct {
	res *Result
	err error
}

// Regenerate rebuilds the report from the current workbook within the time budget.
func (f *Refresher) Regenerate(ctx context.Context) (*Result, error) {
	if !f.sem.TryAcquire(1) {
		return nil, ErrBusy
	}
	return f.regenerate(ctx)
}

// regenerate expects the semaphore to be held and releases it once the run has finished,
// even when the caller stopped waiting after a timeout.
func (f *Refresher) regenerate(ctx context.Context) (*Result, error) {
	runCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	opts := f.opts
	opts.OutputFile = ""

	done := make(chan outcome, 1)
	go func() {
		defer f.sem.Release(1)
		res, err := f.runner.Run(runCtx, opts)
		done <- outcome{res: res, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			if errors.Is(out.err, context.DeadlineExceeded) {
				return nil, ErrTimeout
			}
			return nil, out.err
		}
		if runCtx.Err() != nil {
			return nil, ErrTimeout
		}
		if f.opts.OutputFile != "" {
			if err := report.Write(f.opts.OutputFile, out.res.Document); err != nil {
				return nil, err
			}
		}
		return out.res, nil
	case <-runCtx.Done():
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, runCtx.Err()
	}
}

// Replace installs staged as the new ticket workbook and regenerates the report.
// staged is consumed: it is moved into place or removed.
func (f *Refresher) Replace(ctx context.Context, staged string) (*Result, error) {
	defer os.Remove(staged)

	if !f.sem.TryAcquire(1) {
		return nil, ErrBusy
	}

	hadSource, err := f.backup()
	if err != nil {
		f.sem.Release(1)
		return nil, err
	}

	if err := moveFile(staged, f.opts.TicketFile); err != nil {
		f.sem.Release(1)
		return nil, fmt.Errorf("failed to install uploaded workbook: %w", err)
	}

	res, err := f.regenerate(ctx)
	if err != nil {
		log.Error().Err(err).Str("source", f.opts.TicketFile).Msg("Regeneration failed, restoring previous workbook")
		if rerr := f.restore(hadSource); rerr != nil {
			log.Error().Err(rerr).Msg("Failed to restore previous workbook")
			return nil, errors.Join(err, rerr)
		}
		return nil, err
	}

	log.Info().Str("source", f.opts.TicketFile).Int("tickets", res.Document.Summary.TotalTickets).Msg("Workbook replaced")
	return res, nil
}

func (f *Refresher) backup() (bool, error) {
	if _, err := os.Stat(f.opts.TicketFile); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to inspect current workbook: %w", err)
	}
	if err := copyFile(f.opts.TicketFile, f.backupFile); err != nil {
		return false, fmt.Errorf("failed to back up current workbook: %w", err)
	}
	return true, nil
}

func (f *Refresher) restore(hadSource bool) error {
	if !hadSource {
		if err := os.Remove(f.opts.TicketFile); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}
	return copyFile(f.backupFile, f.opts.TicketFile)
}

func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	return copyFile(src, dst)
}

// copyFile writes src to dst through a temporary sibling so dst is never half written.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	return atomic.WriteFile(dst, in)
}
