package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog/log"

	"video-generation-orchestrator/application/services"
	"video-generation-orchestrator/config"
	"video-generation-orchestrator/infrastructure/adapters"
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

	s3Config, err := config.GetS3Config()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get s3 config")
	}

	checkpointsConfig, err := config.GetCheckpointsConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get checkpoints config")
	}

	imageModelConfig, err := config.GetImageModelConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get image model config")
	}

	videoModelConfig, err := config.GetVideoModelConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get video model config")
	}

	executorConfig, err := config.GetExecutorConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get executor config")
	}

	castingConfig, err := config.GetCastingConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get casting config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, postgresConfig.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to postgres")
	}
	defer pool.Close()

	panicHandler := func(p interface{}) {
		logger.Error(fmt.Errorf("%v", p), "Panic in worker pool")
	}
	workerPool, err := ants.NewPool(executorConfig.WorkerPoolSize, ants.WithPanicHandler(panicHandler))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create worker pool")
	}
	defer workerPool.Release()

	sess := session.Must(session.NewSessionWithOptions(session.Options{
		Config:            aws.Config{Region: aws.String(s3Config.Region)},
		SharedConfigState: session.SharedConfigEnable,
	}))
	s3Client := s3.New(sess)
	dynamoClient := dynamodb.New(sess)
	sqsClient := sqs.New(sess)

	contentFetcher := adapters.NewContentFetcher(logger)

	jobStore := adapters.NewPostgresJobStore(logger, pool)
	actorCatalog := adapters.NewPostgresActorCatalog(pool)
	assetStore := adapters.NewPostgresAssetStore(pool)
	checkpointStore := adapters.NewDynamoCheckpointStore(logger, dynamoClient, checkpointsConfig)
	mediaStore := adapters.NewS3MediaStore(logger, s3Client, s3Config)

	imageSynthesizer := adapters.NewImageSynthesizer(contentFetcher, imageModelConfig, logger)
	videoSynthesizer := adapters.NewVideoSynthesizer(contentFetcher, videoModelConfig, logger)
	assembler := adapters.NewFFmpegAssembler(logger)

	resolver := services.NewRoleResolver(logger, actorCatalog, castingConfig)
	pipeline := services.NewScenePipeline(logger, workerPool, resolver, imageSynthesizer,
		videoSynthesizer, mediaStore, assembler, assetStore, jobStore)
	executor := services.NewStepExecutor(logger, workerPool, jobStore, checkpointStore, pipeline, executorConfig)

	consumerService := services.NewDispatchConsumer(logger, jobStore, executor)
	consumer := adapters.NewSqsDispatchConsumer(logger, sqsClient, sqsConfig, consumerService)

	logger.Info("dispatch consumer started")
	consumer.Poll(ctx)
	logger.Info("dispatch consumer stopped")
}
