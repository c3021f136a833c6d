package config

const (
	// EnvPrefix is empty because every variable carries the TRAVELHUB_ prefix
	// in its envconfig tag already.
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "TRAVELHUB_DB_DSN"
	EnvDBHost = "TRAVELHUB_DB_HOST"
	EnvDBUser = "TRAVELHUB_DB_USER"
	EnvDBName = "TRAVELHUB_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
