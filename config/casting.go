package config

import (
	"fmt"
	"os"
	"strings"
)

// CastingConfig is the automatic-casting policy: an unbound role resolves to
// the default actor configured for its role name, falling back to the global
// default. Configuration driven so re-resolution on retry is reproducible.
type CastingConfig struct {
	DefaultActorID string
	RoleDefaults   map[string]string
}

func GetCastingConfig() (*CastingConfig, error) {
	defaultActorID := os.Getenv("CASTING_DEFAULT_ACTOR_ID")
	if defaultActorID == "" {
		return nil, fmt.Errorf("CASTING_DEFAULT_ACTOR_ID must be set")
	}

	roleDefaults := make(map[string]string)
	// CASTING_ROLE_DEFAULTS is a comma separated list of roleName=actorId.
	if raw := os.Getenv("CASTING_ROLE_DEFAULTS"); raw != "" {
		for _, pair := range strings.Split(raw, ",") {
			parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
			if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
				return nil, fmt.Errorf("CASTING_ROLE_DEFAULTS entry %q is not roleName=actorId", pair)
			}
			roleDefaults[parts[0]] = parts[1]
		}
	}

	return &CastingConfig{
		DefaultActorID: defaultActorID,
		RoleDefaults:   roleDefaults,
	}, nil
}

// ActorFor returns the policy actor for a role name.
func (c *CastingConfig) ActorFor(roleName string) string {
	if actorID, ok := c.RoleDefaults[roleName]; ok {
		return actorID
	}
	return c.DefaultActorID
}
