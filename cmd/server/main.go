// server runs the HTTP API.
package main

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"projecthub/backend/internal/audit"
	auditrepo "projecthub/backend/internal/audit/repository"
	"projecthub/backend/internal/config"
	"projecthub/backend/internal/db"
	healthhandler "projecthub/backend/internal/health/handler"
	identityhandler "projecthub/backend/internal/identity/handler"
	identityservice "projecthub/backend/internal/identity/service"
	"projecthub/backend/internal/mail"
	membershiprepo "projecthub/backend/internal/membership/repository"
	membershipservice "projecthub/backend/internal/membership/service"
	organizationhandler "projecthub/backend/internal/organization/handler"
	organizationrepo "projecthub/backend/internal/organization/repository"
	organizationservice "projecthub/backend/internal/organization/service"
	"projecthub/backend/internal/platform/rbac"
	projecthandler "projecthub/backend/internal/project/handler"
	projectrepo "projecthub/backend/internal/project/repository"
	projectservice "projecthub/backend/internal/project/service"
	"projecthub/backend/internal/security"
	"projecthub/backend/internal/server"
	taskhandler "projecthub/backend/internal/task/handler"
	taskrepo "projecthub/backend/internal/task/repository"
	taskservice "projecthub/backend/internal/task/service"
	userrepo "projecthub/backend/internal/user/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}

	log := newLogger(cfg)

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}
	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("open database")
	}
	defer database.Close()

	privKey, err := security.ParsePrivateKey(cfg.JWTPrivateKey)
	if err != nil {
		log.WithError(err).Fatal("parse JWT private key")
	}
	pubKey, err := security.ParsePublicKey(cfg.JWTPublicKey)
	if err != nil {
		log.WithError(err).Fatal("parse JWT public key")
	}
	tokens := security.NewTokenProvider(privKey, pubKey, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL())
	hasher := security.NewHasher(cfg.BcryptCost)

	users := userrepo.NewPostgresRepository(database)
	orgs := organizationrepo.NewPostgresRepository(database)
	projects := projectrepo.NewPostgresRepository(database)
	memberships := membershiprepo.NewPostgresRepository(database)
	tasks := taskrepo.NewPostgresRepository(database)

	auditStore := auditrepo.NewPostgresRepository(database)
	auditLogger := audit.NewLogger(auditStore, log)

	var mailer mail.Sender = mail.NopSender{}
	if cfg.MailAPIKey != "" && cfg.MailBaseURL != "" {
		mailer = mail.NewAPIClient(cfg.MailAPIKey, cfg.MailBaseURL, cfg.MailFrom)
	}

	authorizer := rbac.NewAuthorizer(orgs, projects, memberships)
	bootstrapper := organizationservice.NewBootstrapper(users, orgs, memberships, auditLogger)
	orgService := organizationservice.NewOrgs(users, orgs, auditLogger)
	projectService := projectservice.NewProjects(projects, authorizer, auditLogger)
	taskService := taskservice.NewTasks(tasks, authorizer)
	invitations := membershipservice.NewInvitations(users, memberships, authorizer, hasher, mailer, auditLogger, log)
	authService := identityservice.NewAuthService(users, bootstrapper, hasher, tokens)

	router := server.NewRouter(server.Deps{
		Log:      log,
		Tokens:   tokens,
		Auth:     identityhandler.NewAuth(authService),
		Orgs:     organizationhandler.NewOrgs(orgService, orgs, memberships, invitations, authorizer, auditStore),
		Projects: projecthandler.NewProjects(projectService, memberships, invitations, authorizer),
		Tasks:    taskhandler.NewTasks(taskService),
		Health:   healthhandler.NewHealth(database),
	})

	srv := server.New(cfg.HTTPAddr, router)
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	if err := server.Shutdown(srv, 15*time.Second); err != nil {
		log.WithError(err).Error("shutdown")
	}
}

func newLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.New()
	if cfg.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}
	return log
}
