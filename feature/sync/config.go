package sync

// Config holds configuration for the reconciliation pipeline.
type Config struct {
	// IntervalMinutes is the scheduler interval. Zero disables scheduling;
	// runs then only happen via the admin API or CLI.
	IntervalMinutes int `mapstructure:"interval_minutes" default:"0"`
	// Scope names the snapshot blob for this reference set.
	Scope string `mapstructure:"scope" default:"default"`
	// SnapshotBackend selects where snapshots live: "file" or "s3".
	SnapshotBackend string `mapstructure:"snapshot_backend" default:"file"`
	// SnapshotDir is the directory used by the file backend.
	SnapshotDir string `mapstructure:"snapshot_dir" default:"data/snapshots"`
	// References is a comma-separated fallback reference set used when no
	// database is connected.
	References string `mapstructure:"references" default:""`
	// MaxPages caps scan depth.
	MaxPages int `mapstructure:"max_pages" default:"1000"`
	// Concurrency is the scan's page fetch fan-out.
	Concurrency int `mapstructure:"concurrency" default:"6"`
}
