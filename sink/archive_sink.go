package sink

import (
	"collab-lab/domain/event"
	"collab-lab/repositories"
	"context"
	"fmt"
	"log/slog"
)

// ArchiveSink persists the latest content per document whenever a
// document-update event is observed. Same last-writer-wins semantics as
// the in-memory session snapshot.
type ArchiveSink struct {
	repository repositories.ISnapshotRepository
	log        *slog.Logger
}

func NewArchiveSink(repository repositories.ISnapshotRepository, log *slog.Logger) ArchiveSink {
	return ArchiveSink{repository: repository, log: log}
}

func (d ArchiveSink) Consume(_ context.Context, e event.Event) error {
	switch evt := e.(type) {
	case event.DocumentUpdated:
		return d.repository.Store(repositories.Snapshot{
			DocumentID: evt.Document,
			Content:    evt.Content,
			UpdatedBy:  evt.UpdatedBy,
		})
	default:
		d.log.Debug(fmt.Sprintf("Not archived event : %v", e.Tag()))
		return nil
	}
}
