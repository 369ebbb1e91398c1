package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCastingConfig(t *testing.T) {
	t.Setenv("CASTING_DEFAULT_ACTOR_ID", "actor-default")
	t.Setenv("CASTING_ROLE_DEFAULTS", "hero=actor-hero, rival=actor-rival")

	cfg, err := GetCastingConfig()
	require.NoError(t, err)

	assert.Equal(t, "actor-hero", cfg.ActorFor("hero"))
	assert.Equal(t, "actor-rival", cfg.ActorFor("rival"))
	assert.Equal(t, "actor-default", cfg.ActorFor("bystander"))
}

func TestGetCastingConfigRequiresDefault(t *testing.T) {
	t.Setenv("CASTING_DEFAULT_ACTOR_ID", "")

	_, err := GetCastingConfig()
	require.Error(t, err)
}

func TestGetCastingConfigRejectsMalformedDefaults(t *testing.T) {
	t.Setenv("CASTING_DEFAULT_ACTOR_ID", "actor-default")
	t.Setenv("CASTING_ROLE_DEFAULTS", "hero")

	_, err := GetCastingConfig()
	require.Error(t, err)
}
