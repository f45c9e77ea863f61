package handlers

import (
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"gorm.io/gorm"

	"notely/internal/ai"
	"notely/internal/auth"
	"notely/internal/token"
	gos3 "notely/pkg/s3"
)

// Store holds external dependencies required by the API layer. Bus and S3
// are optional collaborators; the handlers degrade gracefully without them.
type Store struct {
	DB  *pgxpool.Pool
	ORM *gorm.DB
	Bus *nats.Conn
	S3  *gos3.Client
}

// Config controls runtime behaviour for the API handlers.
type Config struct {
	AllowedOrigins []string
	AvatarBucket   string
	AvatarURLBase  string
}

// API wires dependencies and configuration for the HTTP handlers.
type API struct {
	store  *Store
	auth   *auth.Service
	tokens *token.Service
	ai     *ai.Client
	config Config
}

// New initialises the API layer.
func New(store *Store, authSvc *auth.Service, tokens *token.Service, aiClient *ai.Client, cfg Config) (*API, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if store.DB == nil {
		return nil, errors.New("store DB is required")
	}
	if store.ORM == nil {
		return nil, errors.New("store ORM is required")
	}
	if authSvc == nil {
		return nil, errors.New("auth service is required")
	}
	if tokens == nil {
		return nil, errors.New("token service is required")
	}
	if aiClient == nil {
		return nil, errors.New("ai client is required")
	}

	return &API{
		store:  store,
		auth:   authSvc,
		tokens: tokens,
		ai:     aiClient,
		config: cfg,
	}, nil
}
