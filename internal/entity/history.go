package entity

import "time"

// History event kinds. The trail is append-only and used for audit display
// only, never for pipeline decisions.
const (
	HistoryEventGrabbed      = "Grabbed"
	HistoryEventImported     = "Imported"
	HistoryEventImportFailed = "ImportFailed"
	HistoryEventDeleted      = "Deleted"
)

// HistoryRecord is one append-only audit trail entry.
type HistoryRecord struct {
	ID          int64
	EventType   string
	GameID      int64
	GameTitle   string
	SourceTitle string
	Date        time.Time
	Data        string // Free-form detail, e.g. concatenated import errors
}
