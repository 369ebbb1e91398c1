package main

import (
	"context"
	"os"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"video-generation-orchestrator/application/services"
	"video-generation-orchestrator/config"
	"video-generation-orchestrator/infrastructure/adapters"
	"video-generation-orchestrator/infrastructure/gin_interface/controllers"
	"video-generation-orchestrator/middleware"
)

func main() {
	_ = godotenv.Load()

	logger := adapters.NewZerologWrapper()

	postgresConfig, err := config.GetPostgresConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get postgres config")
	}

	sqsConfig, err := config.GetSqsConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get sqs config")
	}

	jwksUrl := os.Getenv("JWKS_URL")
	if jwksUrl == "" {
		log.Fatal().Msg("JWKS_URL is not set!")
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, postgresConfig.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to postgres")
	}
	defer pool.Close()

	sess := session.Must(session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
	}))
	sqsClient := sqs.New(sess)

	jobStore := adapters.NewPostgresJobStore(logger, pool)
	storyboardStore := adapters.NewPostgresStoryboardStore(pool)
	actorCatalog := adapters.NewPostgresActorCatalog(pool)
	dispatchPublisher := adapters.NewSqsDispatchPublisher(logger, sqsClient, sqsConfig)

	submission := services.NewSubmissionService(logger, jobStore, dispatchPublisher, storyboardStore, actorCatalog)

	generationsController := controllers.NewGenerationsController(logger, submission)

	router := gin.Default()

	if err := router.SetTrustedProxies(nil); err != nil {
		log.Fatal().Err(err).Msg("Failed to set trusted proxies!")
	}

	authHandler, err := middleware.NewAuthHandler(jwksUrl)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create auth handler!")
	}
	router.Use(authHandler.AuthMiddleware())

	generationsController.RegisterRoutes(router)

	if err := router.Run(":8080"); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server!")
	}
}
