package config

// Config is the root configuration for the session store tools.
type Config struct {
	Database DBConfig     `yaml:"database"`
	Ingest   IngestConfig `yaml:"ingest"`
	Log      LogConfig    `yaml:"log"`
}

// DBConfig holds the relational store connection.
type DBConfig struct {
	Host          string `yaml:"hostname"`
	Port          int    `yaml:"port"`
	Name          string `yaml:"database_name"`
	User          string `yaml:"username"`
	Password      string `yaml:"password"`
	SQLType       string `yaml:"sql_type"`       // Dialect; only postgres is supported
	SSLMode       string `yaml:"ssl_mode"`
	MaintenanceDB string `yaml:"maintenance_db"` // Database used to create Name when missing
	MaxConns      int    `yaml:"max_conns"`
	MinConns      int    `yaml:"min_conns"`
}

// IngestConfig holds archive ingestion settings.
type IngestConfig struct {
	DataDir     string `yaml:"data_dir"`
	Extension   string `yaml:"extension"`
	Parallelism int    `yaml:"parallelism"` // parquet column decoders per file
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
}
