package router

import (
	"context"
	"fmt"

	"github.com/oksasatya/aquatech-dashboard/internal/application"
	"github.com/oksasatya/aquatech-dashboard/internal/container"
	"github.com/oksasatya/aquatech-dashboard/internal/domain/repository"
	"github.com/oksasatya/aquatech-dashboard/internal/infrastructure/filestore"
	"github.com/oksasatya/aquatech-dashboard/internal/infrastructure/identity"
	"github.com/oksasatya/aquatech-dashboard/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/aquatech-dashboard/internal/infrastructure/postgres"
	"github.com/oksasatya/aquatech-dashboard/internal/infrastructure/queue"
	"github.com/oksasatya/aquatech-dashboard/internal/infrastructure/redisstore"
	"github.com/oksasatya/aquatech-dashboard/internal/infrastructure/telemetry"
	handlers "github.com/oksasatya/aquatech-dashboard/internal/interface/http"
	"github.com/oksasatya/aquatech-dashboard/internal/router/modules"
	"github.com/oksasatya/aquatech-dashboard/pkg/helpers"
)

type AuthModuleDeps struct {
	Resolver *application.AuthResolver
	Accounts *application.AccountService
	Sessions *application.SessionIssuer
	Cookies  *helpers.Manager
	Handler  *handlers.AuthHandler
}

func buildAuthDeps() (AuthModuleDeps, error) {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	local, err := filestore.NewCredentialStore(cfg.FallbackUsersFile, helpers.NewPasswordHasher(cfg.BcryptCost))
	if err != nil {
		return AuthModuleDeps{}, fmt.Errorf("open fallback accounts: %w", err)
	}

	var (
		profiles repository.ProfileRepository
		resets   repository.ResetTokenRepository
	)
	if pool := container.GetPGPool(); pool != nil {
		profiles = pginfra.NewProfileRepository(pool)
		resets = pginfra.NewResetTokenRepository(pool)
	} else {
		profiles = memory.NewProfileRepository()
		resets = memory.NewResetTokenRepository()
	}

	var sessionStore repository.SessionStore = memory.NewSessionStore()
	if rdb := container.GetRedis(); rdb != nil {
		sessionStore = redisstore.NewSessionStore(rdb)
	}

	var notifier repository.ResetNotifier = queue.LogNotifier{Logger: logger}
	if pub := container.GetRabbitPub(); pub != nil {
		notifier = queue.NewResetNotifier(pub, logger)
	}

	backend := container.GetIdentity()
	if backend == nil {
		backend = identity.NullBackend{}
	}
	audit := container.GetAudit()

	demo := application.DemoAccount{Enabled: cfg.DemoEnabled, Email: cfg.DemoEmail, Password: cfg.DemoPassword}
	resolver := application.NewAuthResolver(backend, profiles, local, demo, audit, logger)
	tokens := application.NewResetTokenRegistry(resets, cfg.ResetTokenTTL, nil)
	accounts := application.NewAccountService(backend, profiles, local, tokens, notifier, audit, logger, application.AccountConfig{
		ResetURL:         cfg.ResetPasswordURL,
		ResetViaProvider: cfg.ResetViaProvider,
	})
	sessions := application.NewSessionIssuer(sessionStore, helpers.NewSessionTokens(cfg.SessionSecret), cfg.SessionTTL, cfg.RememberTTL)
	cookies := helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure)

	return AuthModuleDeps{
		Resolver: resolver,
		Accounts: accounts,
		Sessions: sessions,
		Cookies:  cookies,
		Handler:  handlers.NewAuthHandler(resolver, accounts, sessions, cookies, logger, cfg.ExposeResetLink),
	}, nil
}

func healthChecks() map[string]handlers.HealthCheck {
	checks := map[string]handlers.HealthCheck{}
	if pool := container.GetPGPool(); pool != nil {
		checks["postgres"] = pool.Ping
	}
	if rdb := container.GetRedis(); rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	return checks
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) error {
	authDeps, err := buildAuthDeps()
	if err != nil {
		return err
	}
	cfg := container.GetConfig()
	rdb := container.GetRedis()

	reader := container.GetTelemetry()
	if reader == nil {
		reader = telemetry.NewSimulated()
	}

	r.Add(modules.NewDebugModule(handlers.NewHealthHandler(healthChecks()), rdb, cfg.DebugMetricsEnabled))
	r.Add(modules.NewAuthModule(authDeps.Handler, authDeps.Sessions, authDeps.Cookies, rdb))
	r.Add(modules.NewTelemetryModule(handlers.NewTelemetryHandler(reader, container.GetLogger()), authDeps.Sessions, authDeps.Cookies, rdb))
	return nil
}
