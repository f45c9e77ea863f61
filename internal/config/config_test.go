package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/require"
)

func baseEnv() map[string]string {
	return map[string]string{
		"DB_DSN":             "postgres://localhost:5432/notely",
		"JWT_ACCESS_SECRET":  "access-secret",
		"JWT_REFRESH_SECRET": "refresh-secret",
		"GROQ_API_KEY":       "gsk_test",
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(baseEnv()))
	require.NoError(t, err)

	require.Equal(t, ":8000", cfg.Addr)
	require.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	require.Equal(t, 7*24*time.Hour, cfg.RefreshTokenTTL)
	require.Equal(t, 10, cfg.BcryptCost)
	require.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	require.Equal(t, "https://api.groq.com/openai/v1", cfg.GroqBaseURL)
	require.Equal(t, "llama-3.1-8b-instant", cfg.GroqModel)
}

func TestLoadRequired(t *testing.T) {
	for _, key := range []string{"DB_DSN", "JWT_ACCESS_SECRET", "JWT_REFRESH_SECRET", "GROQ_API_KEY"} {
		t.Run(key, func(t *testing.T) {
			env := baseEnv()
			delete(env, key)

			_, err := load(context.Background(), envconfig.MapLookuper(env))
			require.Error(t, err)
		})
	}
}

func TestLoadOverrides(t *testing.T) {
	env := baseEnv()
	env["ADDR"] = ":9000"
	env["ACCESS_TOKEN_TTL"] = "5m"
	env["CORS_ALLOWED_ORIGINS"] = "https://notes.example.com,https://app.example.com"

	cfg, err := load(context.Background(), envconfig.MapLookuper(env))
	require.NoError(t, err)

	require.Equal(t, ":9000", cfg.Addr)
	require.Equal(t, 5*time.Minute, cfg.AccessTokenTTL)
	require.Equal(t, []string{"https://notes.example.com", "https://app.example.com"}, cfg.AllowedOrigins)
}
