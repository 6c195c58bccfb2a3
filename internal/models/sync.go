package models

// SyncState tells whether an entity's ID was issued by the backend.
type SyncState string

const (
	// SyncPending marks an entity that still carries a locally generated temporary ID.
	SyncPending SyncState = "pending"
	// SyncSynced marks an entity whose ID was assigned by the remote store.
	SyncSynced SyncState = "synced"
)

// IsSynced reports whether the state is SyncSynced
func (s SyncState) IsSynced() bool {
	return s == SyncSynced
}

// cloneStrings returns a copy of s that shares no backing array with it.
// nil stays nil so that omitted lists survive a clone unchanged.
func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
