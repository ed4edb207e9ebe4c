package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/Tyrowin/roomchat/internal/server"
)

// parseFlags runs the root flag set over args and returns the resulting
// configuration without starting anything.
func parseFlags(t *testing.T, args ...string) server.Config {
	t.Helper()

	var got server.Config
	cmd := &cli.Command{
		Name:  "roomchat",
		Flags: rootFlags(),
		Action: func(_ context.Context, c *cli.Command) error {
			cfg := server.NewConfigFromEnv()
			overrideFromFlags(cfg, c)
			got = *cfg
			return nil
		},
	}

	require.NoError(t, cmd.Run(context.Background(), append([]string{"roomchat"}, args...)))
	return got
}

func TestFlagsOverrideDefaults(t *testing.T) {
	cfg := parseFlags(t,
		"--addr", ":2000",
		"--http-addr", ":9090",
		"--banner", "hi",
		"--rooms-file", "/tmp/rooms.yaml",
		"--redis-url", "redis://localhost:6379/0",
	)

	assert.Equal(t, ":2000", cfg.ChatAddr)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "hi", cfg.Banner)
	assert.Equal(t, "/tmp/rooms.yaml", cfg.RoomsFile)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
}

func TestUnsetFlagsKeepDefaults(t *testing.T) {
	cfg := parseFlags(t)

	assert.Equal(t, ":19567", cfg.ChatAddr)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
}

func TestEmptyHTTPAddrFlagDisablesGateway(t *testing.T) {
	cfg := parseFlags(t, "--http-addr", "")

	assert.Empty(t, cfg.HTTPAddr)
}
