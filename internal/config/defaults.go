package config

// Default values for optional configuration fields.
const (
	DefaultDBPort        = 5432
	DefaultDBSSLMode     = "prefer"
	DefaultSQLType       = "postgresql"
	DefaultMaintenanceDB = "postgres"
	DefaultMaxConns      = 4
	DefaultMinConns      = 1
	DefaultDataDir       = "datasets"
	DefaultExtension     = ".parquet"
	DefaultParallelism   = 4
	DefaultLogLevel      = "info"
)

func (c *Config) applyDefaults() {
	// Database defaults
	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.SQLType == "" {
		c.Database.SQLType = DefaultSQLType
	}
	if c.Database.MaintenanceDB == "" {
		c.Database.MaintenanceDB = DefaultMaintenanceDB
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}

	// Ingest defaults
	if c.Ingest.DataDir == "" {
		c.Ingest.DataDir = DefaultDataDir
	}
	if c.Ingest.Extension == "" {
		c.Ingest.Extension = DefaultExtension
	}
	if c.Ingest.Parallelism == 0 {
		c.Ingest.Parallelism = DefaultParallelism
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}
