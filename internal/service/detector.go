package service

import "notifeed/internal/domain"

// Detection is the outcome of comparing one fetch against the feed's
// seen set.
type Detection struct {
	// NewEntries are the entries to notify, in the order the feed
	// declared them.
	NewEntries []domain.Entry
	// ObservedIDs are all distinct entry ids present in the fetch;
	// committing them keeps the seen set a superset of prior state.
	ObservedIDs []string
	// Seeded is true when the feed had never been polled before. The
	// whole fetch is recorded as seen and nothing is dispatched, so
	// adding an established feed does not replay its backlog.
	Seeded bool
}

// Detect classifies fetched entries against the feed's prior seen set.
// Entries duplicated within a single fetch count once. An id that was
// ever seen is never classified as new again, regardless of where it
// appears in later fetches.
func Detect(entries []domain.Entry, prior map[string]struct{}, initialized bool) Detection {
	det := Detection{
		ObservedIDs: make([]string, 0, len(entries)),
		Seeded:      !initialized,
	}

	inFetch := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		if _, dup := inFetch[entry.ID]; dup {
			continue
		}
		inFetch[entry.ID] = struct{}{}
		det.ObservedIDs = append(det.ObservedIDs, entry.ID)

		if initialized {
			if _, ok := prior[entry.ID]; !ok {
				det.NewEntries = append(det.NewEntries, entry)
			}
		}
	}

	return det
}
