package adapters

import (
	"bytes"
	"context"
	"io"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"

	"video-generation-orchestrator/application/ports/outbound"
	"video-generation-orchestrator/config"
)

type s3MediaStore struct {
	logger   outbound.LoggerPort
	s3Svc    *s3.S3
	s3Config *config.S3Config
}

// NewS3MediaStore reads and writes generated assets. Keys are fully formed by
// the callers; the bucket is fixed per deployment.
func NewS3MediaStore(logger outbound.LoggerPort, s3Svc *s3.S3, s3Config *config.S3Config) outbound.MediaStorePort {
	return &s3MediaStore{
		logger:   logger,
		s3Svc:    s3Svc,
		s3Config: s3Config,
	}
}

func (s *s3MediaStore) Put(ctx context.Context, key string, body []byte, contentType string) error {
	putInput := &s3.PutObjectInput{
		Bucket:        aws.String(s.s3Config.BucketName),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(contentType),
	}

	_, err := s.s3Svc.PutObjectWithContext(ctx, putInput)
	if err != nil {
		s.logger.ErrorWithFields(err, "Failed to upload object to S3", map[string]interface{}{
			"bucket": s.s3Config.BucketName,
			"key":    key,
		})
		return err
	}

	s.logger.DebugWithFields("Uploaded object to S3", map[string]interface{}{
		"key": key,
	})
	return nil
}

func (s *s3MediaStore) Get(ctx context.Context, key string) ([]byte, error) {
	output, err := s.s3Svc.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.s3Config.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		s.logger.ErrorWithFields(err, "Failed to fetch object from S3", map[string]interface{}{
			"bucket": s.s3Config.BucketName,
			"key":    key,
		})
		return nil, err
	}
	defer func() {
		if err := output.Body.Close(); err != nil {
			s.logger.Error(err, "Failed to close S3 object body")
		}
	}()

	return io.ReadAll(output.Body)
}

func (s *s3MediaStore) UploadFile(ctx context.Context, key string, fileName string) error {
	file, err := os.Open(fileName)
	if err != nil {
		s.logger.Error(err, "Failed to open file for upload")
		return err
	}

	defer func(file *os.File) {
		if err := file.Close(); err != nil {
			s.logger.Error(err, "Failed to close uploaded file")
			return
		}
		if err := os.Remove(file.Name()); err != nil {
			s.logger.Error(err, "Failed to remove uploaded file")
		}
	}(file)

	putInput := &s3.PutObjectInput{
		Bucket: aws.String(s.s3Config.BucketName),
		Key:    aws.String(key),
		Body:   file,
	}
	_, err = s.s3Svc.PutObjectWithContext(ctx, putInput)
	if err != nil {
		s.logger.ErrorWithFields(err, "Failed to upload file to S3", map[string]interface{}{
			"bucket": s.s3Config.BucketName,
			"key":    key,
		})
	}
	return err
}
