package config

// EnvPrefix is applied by envconfig when resolving variables without an
// explicit envconfig tag.
const EnvPrefix = "MOKOLO"

// Recognized application environments.
const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names referenced outside struct tags.
const (
	EnvAppEnv = "MOKOLO_APP_ENV"
	EnvDBDSN  = "MOKOLO_DB_DSN"
	EnvDBHost = "MOKOLO_DB_HOST"
	EnvDBUser = "MOKOLO_DB_USER"
	EnvDBName = "MOKOLO_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
