package config

// EnvPrefix is passed to envconfig; individual fields carry explicit names so
// the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "GAMESTORE_DB_DSN"
	EnvDBHost = "GAMESTORE_DB_HOST"
	EnvDBUser = "GAMESTORE_DB_USER"
	EnvDBName = "GAMESTORE_DB_NAME"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
