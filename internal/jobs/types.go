package jobs

const (
	// TaskRefreshCountry refreshes one country across both stores.
	TaskRefreshCountry = "refresh:country"

	// TaskSnapshotRun executes a whole snapshot run.
	TaskSnapshotRun = "refresh:snapshot"
)

type RefreshCountryPayload struct {
	Country string `json:"country"`
	Force   bool   `json:"force,omitempty"`
}

type SnapshotRunPayload struct {
	RunType   string   `json:"run_type"`
	Countries []string `json:"countries,omitempty"`
}
