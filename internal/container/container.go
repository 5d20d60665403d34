package container

import (
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/aquatech-dashboard/config"
	"github.com/oksasatya/aquatech-dashboard/internal/application"
	"github.com/oksasatya/aquatech-dashboard/internal/domain/repository"
	"github.com/oksasatya/aquatech-dashboard/pkg/helpers"
)

// app-level container to share constructed components across packages.
// Router modules auto-wire from these singletons; nil means not configured.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	esClient    *elasticsearch.Client
	rabbitPub   *helpers.RabbitPublisher

	identityBackend repository.IdentityProvider
	telemetryReader repository.TelemetryReader
	audit           *application.ActivityAudit
)

func SetConfig(c *config.Config) { cfg = c }
func GetConfig() *config.Config  { return cfg }
func SetLogger(l *logrus.Logger) { logger = l }
func GetLogger() *logrus.Logger {
	if logger != nil {
		return logger
	}
	return logrus.StandardLogger()
}
func SetPGPool(p *pgxpool.Pool)                 { pgPool = p }
func GetPGPool() *pgxpool.Pool                  { return pgPool }
func SetRedis(r *redis.Client)                  { redisClient = r }
func GetRedis() *redis.Client                   { return redisClient }
func SetES(c *elasticsearch.Client)             { esClient = c }
func GetES() *elasticsearch.Client              { return esClient }
func SetRabbitPub(p *helpers.RabbitPublisher)   { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher    { return rabbitPub }
func SetIdentity(b repository.IdentityProvider) { identityBackend = b }
func GetIdentity() repository.IdentityProvider  { return identityBackend }
func SetTelemetry(r repository.TelemetryReader) { telemetryReader = r }
func GetTelemetry() repository.TelemetryReader  { return telemetryReader }
func SetAudit(a *application.ActivityAudit)     { audit = a }
func GetAudit() *application.ActivityAudit      { return audit }
