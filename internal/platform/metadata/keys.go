package metadata

// --- SQLite Keys ---
// These keys are used for the 'key' column in the 'metadata' SQLite table.
const (
	// LastRecallSweepDateKey stores the local calendar date ("2006-01-02") of
	// the last completed recall notification sweep. The sweep refuses to run
	// twice for the same date, which is what makes re-running it safe.
	LastRecallSweepDateKey = "last_recall_sweep_date"
)
