package config

// EnvPrefix namespaces every variable read by envconfig.
const EnvPrefix = "MEDDOT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "MEDDOT_APP_ENV"
	EnvPort     = "MEDDOT_APP_PORT"
	EnvLogLevel = "MEDDOT_LOG_LEVEL"

	EnvDBDSN  = "MEDDOT_DB_DSN"
	EnvDBHost = "MEDDOT_DB_HOST"
	EnvDBUser = "MEDDOT_DB_USER"
	EnvDBName = "MEDDOT_DB_NAME"

	EnvRedisURL = "MEDDOT_REDIS_URL"

	EnvJWTSecret   = "MEDDOT_JWT_SECRET"
	EnvJWTIssuer   = "MEDDOT_JWT_ISSUER"
	EnvJWTAudience = "MEDDOT_JWT_AUDIENCE"

	EnvSendgridAPIKey = "MEDDOT_SENDGRID_API_KEY"
	EnvMailFromEmail  = "MEDDOT_MAIL_FROM_EMAIL"

	EnvToastDefaultDuration = "MEDDOT_TOAST_DEFAULT_DURATION"
	EnvToastSweepInterval   = "MEDDOT_TOAST_SWEEP_INTERVAL"

	EnvFixupFeatureFlag = "MEDDOT_FIXUP_FEATURE_FLAG"
	EnvFixupAdminEmail  = "MEDDOT_FIXUP_ADMIN_EMAIL"
	EnvFixupSeedRoom    = "MEDDOT_FIXUP_SEED_ROOM"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
