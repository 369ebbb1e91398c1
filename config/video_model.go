package config

import (
	"fmt"
	"os"
)

type VideoModelConfig struct {
	ApiUrl string
	ApiKey string
	Model  string
}

func GetVideoModelConfig() (*VideoModelConfig, error) {
	apiUrl := os.Getenv("VIDEO_MODEL_API_URL")
	if apiUrl == "" {
		return nil, fmt.Errorf("VIDEO_MODEL_API_URL must be set")
	}
	apiKey := os.Getenv("VIDEO_MODEL_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("VIDEO_MODEL_API_KEY must be set")
	}
	model := os.Getenv("VIDEO_MODEL")
	if model == "" {
		return nil, fmt.Errorf("VIDEO_MODEL must be set")
	}
	return &VideoModelConfig{
		ApiUrl: apiUrl,
		ApiKey: apiKey,
		Model:  model,
	}, nil
}
