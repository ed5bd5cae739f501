package main

import (
	"context"
	"log"

	api "mailroute-backend/cmd/api"
	dispatchUsecase "mailroute-backend/internal/dispatch/usecase"
	emaildomain "mailroute-backend/internal/email/domain"
	emailRepo "mailroute-backend/internal/email/repository"
	emailUsecase "mailroute-backend/internal/email/usecase"
	routingdomain "mailroute-backend/internal/routing/domain"
	routingRepo "mailroute-backend/internal/routing/repository"
	routingUsecase "mailroute-backend/internal/routing/usecase"
	threadUsecase "mailroute-backend/internal/thread/usecase"
	"mailroute-backend/pkg/attachment"
	"mailroute-backend/pkg/config"
	"mailroute-backend/pkg/database"
	"mailroute-backend/pkg/transport"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(
		&routingdomain.Endpoint{},
		&routingdomain.EmailAddress{},
		&routingdomain.MailDomain{},
		&routingdomain.Webhook{},
		&emaildomain.ReceivedEmail{},
		&emaildomain.SentEmail{},
		&emaildomain.DeliveryOutcome{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	endpointRepository := routingRepo.NewEndpointRepository(db)
	addressRepository := routingRepo.NewEmailAddressRepository(db)
	domainRepository := routingRepo.NewDomainRepository(db)
	webhookRepository := routingRepo.NewWebhookRepository(db)
	receivedRepository := emailRepo.NewReceivedEmailRepository(db)
	sentRepository := emailRepo.NewSentEmailRepository(db)
	outcomeRepository := emailRepo.NewDeliveryOutcomeRepository(db)

	// Initialize outbound transport
	sender := newSender(cfg)
	log.Printf("[DEBUG] outbound transport: %s", sender.Name())

	// Initialize use cases (dependency injection)
	resolver := routingUsecase.NewResolverUsecase(addressRepository, endpointRepository, domainRepository, webhookRepository)
	processor := attachment.NewProcessor()
	webhookDispatcher := dispatchUsecase.NewWebhookDispatcher(cfg.WebhookDefaultTimeout)
	forwardDispatcher := dispatchUsecase.NewForwardDispatcher(sender, sentRepository, processor, cfg.DefaultForwardFrom)
	tracker := dispatchUsecase.NewTracker(outcomeRepository)
	pipeline := dispatchUsecase.NewPipelineUsecase(receivedRepository, resolver, webhookDispatcher, forwardDispatcher, tracker)
	emailUsecaseInstance := emailUsecase.NewEmailUsecase(receivedRepository, outcomeRepository)
	threaderInstance := threadUsecase.NewThreaderUsecase(receivedRepository, sentRepository)

	// Initialize HTTP handler
	handler := api.NewHandler(emailUsecaseInstance, pipeline, threaderInstance, cfg)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func newSender(cfg *config.Config) transport.Sender {
	switch cfg.OutboundTransport {
	case "ses":
		sender, err := transport.NewSES(context.Background(), transport.SESConfig{
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		})
		if err != nil {
			log.Fatal("Failed to initialize SES transport:", err)
		}
		return sender
	case "smtp":
		return transport.NewSMTP(transport.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
		})
	default:
		log.Printf("[WARN] unknown or unset OUTBOUND_TRANSPORT %q, using stdout", cfg.OutboundTransport)
		return transport.NewStdout()
	}
}
