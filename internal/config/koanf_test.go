// boardcrawl - Multi-Source Community Post Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardcrawl

package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_PassesValidation(t *testing.T) {
	cfg := defaultConfig()
	require.NoError(t, cfg.Validate())
}

func TestLoadWithKoanf_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("REDDIT_CLIENT_ID", "abc123")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := LoadWithKoanf()
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, "abc123", cfg.Reddit.ClientID)
	require.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Security.AllowedOrigins)
}

func TestLoadWithKoanf_ProductionRequiresAllowedOrigins(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	_, err := LoadWithKoanf()
	require.Error(t, err)
}

func TestFindConfigFile_RespectsConfigPathEnvVar(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/custom.yaml"
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 4000\n"), 0o644))

	t.Setenv(ConfigPathEnvVar, path)
	require.Equal(t, path, findConfigFile())
}

func TestValidate_RejectsBadPort(t *testing.T) {
	cfg := defaultConfig()
	cfg.Server.Port = 0
	require.Error(t, cfg.Validate())
}

func TestValidate_RejectsOversizedFileCap(t *testing.T) {
	cfg := defaultConfig()
	cfg.Media.MaxFileBytes = cfg.Media.MaxArchiveBytes + 1
	require.Error(t, cfg.Validate())
}
