package types

// AppConfig represents the complete application configuration.
type AppConfig struct {
	Verbose bool          `mapstructure:"verbose"`
	Config  string        `mapstructure:"config"`
	Project ProjectConfig `mapstructure:"project" validate:"required"`
	Data    DataConfig    `mapstructure:"data" validate:"required"`
	Cache   CacheConfig   `mapstructure:"cache" validate:"required"`
}

// ProjectConfig holds project-related settings.
type ProjectConfig struct {
	RootDir string `mapstructure:"rootDir" validate:"required"`
}

// DataConfig holds storage configuration for the collection backing files.
type DataConfig struct {
	Dir    string `mapstructure:"dir" validate:"required"`
	Format string `mapstructure:"format" validate:"required,oneof=json yaml toml"`
}

// CacheConfig holds settings for the per-collection read cache.
type CacheConfig struct {
	// TTLMillis is the freshness window in milliseconds. Zero disables
	// caching entirely: every read goes to disk.
	TTLMillis int `mapstructure:"ttlMillis" validate:"min=0"`
}
