package dataprocessing

import (
	"strings"

	apperrors "paygcli/internal/errors"
	"paygcli/pkg/contracts/domain"
)

// Combine concatenates batches in argument order. Every batch must carry
// the same counter set as the first one, compared without regard to order.
// The combined batch is unparsed as soon as one input is.
func Combine(batches ...*domain.Batch) (*domain.Batch, error) {
	if len(batches) == 0 {
		return nil, apperrors.NewAppValidationError("no sources to combine")
	}
	if len(batches) == 1 {
		return batches[0], nil
	}

	reference := batches[0]
	want := make(map[string]bool, len(reference.Counters))
	for _, c := range reference.Counters {
		want[c] = true
	}

	total := 0
	sources := make([]string, 0, len(batches))
	for _, b := range batches {
		if b != reference {
			if missing, unexpected := diffCounters(want, b.Counters); len(missing) > 0 || len(unexpected) > 0 {
				return nil, apperrors.NewSchemaMismatchError(b.Source, missing, unexpected).
					WithContext("reference", reference.Source)
			}
		}
		total += len(b.Records)
		sources = append(sources, b.Source)
	}

	combined := &domain.Batch{
		Source:    strings.Join(sources, "+"),
		Counters:  reference.Counters,
		Records:   make([]domain.Record, 0, total),
		TimeState: domain.TimestampsParsed,
	}
	for _, b := range batches {
		combined.Records = append(combined.Records, b.Records...)
		if b.TimeState == domain.TimestampsUnparsed {
			combined.TimeState = domain.TimestampsUnparsed
		}
	}

	return combined, nil
}

func diffCounters(want map[string]bool, got []string) (missing, unexpected []string) {
	seen := make(map[string]bool, len(got))
	for _, c := range got {
		seen[c] = true
		if !want[c] {
			unexpected = append(unexpected, c)
		}
	}
	for c := range want {
		if !seen[c] {
			missing = append(missing, c)
		}
	}
	return missing, unexpected
}
