package config

import (
	"fmt"
	"os"
)

type CheckpointsConfig struct {
	TableName string
}

func GetCheckpointsConfig() (*CheckpointsConfig, error) {
	tableName := os.Getenv("CHECKPOINT_TABLE_NAME")
	if tableName == "" {
		return nil, fmt.Errorf("CHECKPOINT_TABLE_NAME must be set")
	}

	return &CheckpointsConfig{
		TableName: tableName,
	}, nil
}
