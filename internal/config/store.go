package config

// StoreConfig selects the storage collaborator.
type StoreConfig struct {
	Driver       string `koanf:"driver"`
	DSN          string `koanf:"dsn"`
	DatasetPath  string `koanf:"dataset_path"`
	MaxOpenConns int    `koanf:"max_open_conns"`
}
