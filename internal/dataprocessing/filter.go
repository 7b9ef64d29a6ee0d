package dataprocessing

import (
	"time"

	"paygcli/pkg/contracts/domain"
)

// SnapshotFilter keeps the rows taken at one exact time of day.
type SnapshotFilter struct {
	clock time.Duration
}

// NewSnapshotFilter creates a filter for the given offset from midnight.
func NewSnapshotFilter(clock time.Duration) SnapshotFilter {
	return SnapshotFilter{clock: clock}
}

// Apply returns the matching rows in input order. An unparsed batch is
// returned unchanged. Zero matches yield an empty batch.
func (f SnapshotFilter) Apply(batch *domain.Batch) *domain.Batch {
	if batch.TimeState == domain.TimestampsUnparsed {
		return batch
	}

	kept := make([]domain.Record, 0, len(batch.Records))
	for _, rec := range batch.Records {
		if t, ok := rec.Timestamp.Time(); ok && timeOfDay(t) == f.clock {
			kept = append(kept, rec)
		}
	}
	return batch.WithRecords(kept)
}

func timeOfDay(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
}
