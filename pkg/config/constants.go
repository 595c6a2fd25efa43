package config

// EnvPrefix is passed to envconfig; individual fields carry fully prefixed
// names, so the prefix itself stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv = "CHIFA_APP_ENV"

	EnvDBDSN  = "CHIFA_DB_DSN"
	EnvDBHost = "CHIFA_DB_HOST"
	EnvDBUser = "CHIFA_DB_USER"
	EnvDBName = "CHIFA_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
