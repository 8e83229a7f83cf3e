// Package cache implementa ports.Cache sobre Redis, con un backend noop cuando está deshabilitada.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/telar-erp/internal/application/ports"
	"github.com/jhoicas/telar-erp/pkg/config"
	"github.com/jhoicas/telar-erp/pkg/logger"
)

var (
	_ ports.Cache = Noop{}
	_ ports.Cache = (*Redis)(nil)
)

// New construye la caché configurada (redis o noop). Con redis hace ping al arrancar.
func New(ctx context.Context, cfg config.CacheConfig, log *logger.Logger) (ports.Cache, func() error, error) {
	switch cfg.Driver {
	case "noop", "":
		log.Info().Msg("caché deshabilitada; usando noop")
		return Noop{}, func() error { return nil }, nil
	case "redis":
		client := NewClient(cfg)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		log.Info().Str("addr", cfg.Addr).Msg("caché redis conectada")
		return NewRedis(client, cfg.TTL), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("driver de caché no soportado: %s", cfg.Driver)
	}
}

// NewClient cliente go-redis a partir de la configuración (compartido con el lock del scheduler).
func NewClient(cfg config.CacheConfig) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// Noop nunca guarda nada: toda lectura es un miss.
type Noop struct{}

func (Noop) Get(context.Context, string, any) error { return ports.ErrCacheMiss }

func (Noop) Set(context.Context, string, any, time.Duration) error { return nil }

func (Noop) DeletePrefix(context.Context, string) error { return nil }

// Redis guarda valores serializados en JSON.
type Redis struct {
	client     goredis.UniversalClient
	defaultTTL time.Duration
}

// NewRedis construye la caché sobre un cliente existente; ttl se usa cuando Set recibe 0.
func NewRedis(client goredis.UniversalClient, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Redis{client: client, defaultTTL: ttl}
}

func (s *Redis) Get(ctx context.Context, key string, dest any) error {
	if key == "" {
		return ports.ErrCacheMiss
	}
	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return ports.ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("redis get: %w", err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		// valor corrupto o de otra versión: se trata como miss
		_ = s.client.Del(ctx, key).Err()
		return ports.ErrCacheMiss
	}
	return nil
}

func (s *Redis) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if key == "" {
		return errors.New("cache key is required")
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("redis set: encode: %w", err)
	}
	return s.client.Set(ctx, key, raw, ttl).Err()
}

// DeletePrefix recorre las claves con SCAN y las borra por lotes.
func (s *Redis) DeletePrefix(ctx context.Context, prefix string) error {
	if prefix == "" {
		return errors.New("cache prefix is required")
	}
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, prefix+"*", 200).Result()
		if err != nil {
			return fmt.Errorf("redis scan: %w", err)
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis del: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
