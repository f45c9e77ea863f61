package config

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds runtime configuration for the notely API service.
type Config struct {
	Addr             string        `env:"ADDR,default=:8000"`
	DBDSN            string        `env:"DB_DSN,required"`
	JWTAccessSecret  string        `env:"JWT_ACCESS_SECRET,required"`
	JWTRefreshSecret string        `env:"JWT_REFRESH_SECRET,required"`
	AccessTokenTTL   time.Duration `env:"ACCESS_TOKEN_TTL,default=15m"`
	RefreshTokenTTL  time.Duration `env:"REFRESH_TOKEN_TTL,default=168h"`
	BcryptCost       int           `env:"BCRYPT_COST,default=10"`
	AllowedOrigins   []string      `env:"CORS_ALLOWED_ORIGINS,default=http://localhost:3000"`
	GroqAPIKey       string        `env:"GROQ_API_KEY,required"`
	GroqBaseURL      string        `env:"GROQ_BASE_URL,default=https://api.groq.com/openai/v1"`
	GroqModel        string        `env:"GROQ_MODEL,default=llama-3.1-8b-instant"`
	OTLPEndpoint     string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	NATSURL          string        `env:"NATS_URL"`
	AvatarBucket     string        `env:"AVATAR_BUCKET"`
	AvatarURLBase    string        `env:"AVATAR_URL_BASE"`
}

// Load returns a Config populated from environment variables. Missing
// required values (database DSN, the two signing secrets, the LLM API key)
// fail here rather than surfacing later as undefined behaviour.
func Load(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
