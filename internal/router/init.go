package router

import (
	"accounthub/internal/application"
	"accounthub/internal/container"
	pginfra "accounthub/internal/infrastructure/postgres"
	handlers "accounthub/internal/interface/http"
	"accounthub/internal/router/modules"
	"accounthub/pkg/helpers"
)

// InitModules wires repositories, services and handlers from the container
// singletons and registers every feature module. Called once at startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	var blobs application.BlobStore
	if gcs := container.GetGCS(); gcs != nil && cfg.GCSBucket != "" {
		blobs = &helpers.GCSBlobStore{Client: gcs, Bucket: cfg.GCSBucket}
	}

	userRepo := pginfra.NewUserRepository(container.GetPGPool())
	docRepo := pginfra.NewDocumentRepository(container.GetPGPool())

	accounts := application.NewAccountService(userRepo, blobs, container.GetRabbitPub(), logger, cfg.DefaultAvatar, cfg.MailSendEnabled)
	documents := application.NewDocumentService(docRepo, blobs, logger, container.GetES(), cfg.ESDocumentsIndex)

	cookies := helpers.NewCookieManager(cfg.CookieDomain, cfg.CookieSecure)
	gate := container.GetGate()

	accountHandler := handlers.NewAccountHandler(accounts, documents, gate, logger, cookies, cfg.DefaultLanguage)
	documentHandler := handlers.NewDocumentHandler(documents, logger, cfg.MaxUploadBytes)
	languageHandler := handlers.NewLanguageHandler(cfg, gate, cookies, logger)

	r.Add(modules.NewAccountModule(accountHandler, gate))
	r.Add(modules.NewDocumentModule(documentHandler, gate))
	r.Add(modules.NewLocaleModule(languageHandler))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
