package definitions

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mx-space/metafields/internal/models"
	"github.com/mx-space/metafields/internal/pkg/shopify"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultTTL = 5 * time.Minute
	keyPrefix  = "mf:definitions:"
)

// Lister fetches definitions from the Admin API.
type Lister interface {
	ListMetafieldDefinitions(ctx context.Context, ownerType string) ([]shopify.Definition, error)
}

// Cache is the string cache the catalogue is kept in. Get returns "" on a miss.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Service serves the product metafield definition catalogue of one shop.
type Service struct {
	lister Lister
	cache  Cache
	key    string
	ttl    time.Duration
	logger *zap.Logger
	group  singleflight.Group
}

type ServiceOption func(*Service)

func WithLogger(logger *zap.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCache enables caching. A nil cache disables it.
func WithCache(cache Cache, ttl time.Duration) ServiceOption {
	return func(s *Service) {
		s.cache = cache
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func NewService(lister Lister, shop string, opts ...ServiceOption) *Service {
	s := &Service{
		lister: lister,
		key:    keyPrefix + shop,
		ttl:    DefaultTTL,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("DefinitionService")
	return s
}

// List returns product metafield definitions, from cache unless refresh is
// set. Concurrent misses share one upstream call, which outlives the
// cancellation of whichever request started it.
func (s *Service) List(ctx context.Context, refresh bool) ([]models.MetafieldDefinition, error) {
	if !refresh {
		if defs, ok := s.cached(ctx); ok {
			return defs, nil
		}
	}

	shared := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do(s.key, func() (interface{}, error) {
		return s.fetch(shared)
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.MetafieldDefinition), nil
}

func (s *Service) cached(ctx context.Context) ([]models.MetafieldDefinition, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, s.key)
	if err != nil {
		s.logger.Warn("definition cache read failed", zap.Error(err))
		return nil, false
	}
	if raw == "" {
		return nil, false
	}
	var defs []models.MetafieldDefinition
	if err := json.Unmarshal([]byte(raw), &defs); err != nil {
		s.logger.Warn("definition cache entry is corrupt", zap.Error(err))
		return nil, false
	}
	return defs, true
}

func (s *Service) fetch(ctx context.Context) ([]models.MetafieldDefinition, error) {
	remote, err := s.lister.ListMetafieldDefinitions(ctx, shopify.OwnerTypeProduct)
	if err != nil {
		return nil, fmt.Errorf("list metafield definitions: %w", err)
	}
	defs := make([]models.MetafieldDefinition, 0, len(remote))
	for _, d := range remote {
		defs = append(defs, models.MetafieldDefinition{
			ID:        d.ID,
			Name:      d.Name,
			Namespace: d.Namespace,
			Key:       d.Key,
			Type: models.MetafieldDefinitionType{
				Name:      d.Type.Name,
				ValueType: d.Type.ValueType,
			},
		})
	}

	if s.cache != nil {
		raw, err := json.Marshal(defs)
		if err == nil {
			err = s.cache.Set(ctx, s.key, string(raw), s.ttl)
		}
		if err != nil {
			s.logger.Warn("definition cache write failed", zap.Error(err))
		}
	}
	s.logger.Debug("metafield definitions fetched", zap.Int("count", len(defs)))
	return defs, nil
}
