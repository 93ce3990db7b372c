package config

// SnapshotConfig controls where report exports are written and how long they are kept.
type SnapshotConfig struct {
	Folder        string `koanf:"folder"`
	RetentionDays int    `koanf:"retention_days"`
}
