package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dealgrid/vendorsync/internal/app"
	"github.com/dealgrid/vendorsync/internal/config"
	"github.com/dealgrid/vendorsync/internal/outbox/domain"
)

// outboxStatusReport is the serializable shape of the outbox-status output.
type outboxStatusReport struct {
	Pending   int                 `json:"pending"`
	Exhausted int                 `json:"exhausted"`
	Entries   []outboxEntryReport `json:"exhausted_entries,omitempty"`
}

type outboxEntryReport struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Attempts  int    `json:"attempts"`
	LastError string `json:"last_error,omitempty"`
	UpdatedAt string `json:"updated_at"`
}

// RunOutboxStatus prints the outbox queue depth and the exhausted entries
// awaiting manual intervention. Format is "text" or "json".
func RunOutboxStatus(ctx context.Context, format string, limit int, io IOTuple) error {
	cfg := config.Load()

	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	repo, err := container.OutboxRepository()
	if err != nil {
		return err
	}

	pending, err := repo.CountPending(ctx, cfg.WorkerMaxAttempts)
	if err != nil {
		return fmt.Errorf("failed to count pending entries: %w", err)
	}

	exhausted, err := repo.CountExhausted(ctx, cfg.WorkerMaxAttempts)
	if err != nil {
		return fmt.Errorf("failed to count exhausted entries: %w", err)
	}

	entries, err := repo.ListExhausted(ctx, cfg.WorkerMaxAttempts, limit)
	if err != nil {
		return fmt.Errorf("failed to list exhausted entries: %w", err)
	}

	report := buildOutboxStatusReport(pending, exhausted, entries)

	switch format {
	case "json":
		encoder := json.NewEncoder(io.Writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	case "text":
		return writeOutboxStatusText(io, report)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func buildOutboxStatusReport(pending, exhausted int, entries []*domain.OutboxEntry) outboxStatusReport {
	report := outboxStatusReport{
		Pending:   pending,
		Exhausted: exhausted,
	}
	for _, entry := range entries {
		item := outboxEntryReport{
			ID:        entry.ID.String(),
			Type:      entry.Type,
			Attempts:  entry.Attempts,
			UpdatedAt: entry.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
		if entry.LastError != nil {
			item.LastError = *entry.LastError
		}
		report.Entries = append(report.Entries, item)
	}
	return report
}

func writeOutboxStatusText(io IOTuple, report outboxStatusReport) error {
	if _, err := fmt.Fprintf(io.Writer, "pending entries:   %d\n", report.Pending); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(io.Writer, "exhausted entries: %d\n", report.Exhausted); err != nil {
		return err
	}
	if len(report.Entries) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(io.Writer, "\nexhausted entries awaiting intervention:"); err != nil {
		return err
	}
	for _, entry := range report.Entries {
		if _, err := fmt.Fprintf(
			io.Writer,
			"  %s  type=%s attempts=%d updated_at=%s last_error=%q\n",
			entry.ID, entry.Type, entry.Attempts, entry.UpdatedAt, entry.LastError,
		); err != nil {
			return err
		}
	}
	return nil
}
