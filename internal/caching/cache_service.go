package caching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"bizsuite/internal/logger"
	"bizsuite/internal/metrics"
	"bizsuite/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "bizsuite"

type CacheService interface {
	// Product caching
	GetProduct(ctx context.Context, tenantID, productID uuid.UUID) (*models.Product, error)
	SetProduct(ctx context.Context, tenantID uuid.UUID, product *models.Product, ttl time.Duration) error
	DeleteProduct(ctx context.Context, tenantID, productID uuid.UUID) error

	// Quotation caching
	GetQuotation(ctx context.Context, tenantID, quotationID uuid.UUID) (*models.Quotation, error)
	SetQuotation(ctx context.Context, tenantID uuid.UUID, quotation *models.Quotation, ttl time.Duration) error
	DeleteQuotation(ctx context.Context, tenantID, quotationID uuid.UUID) error

	// Customer list caching, keyed by a digest of the query
	GetCustomerList(ctx context.Context, tenantID uuid.UUID, queryKey string, dest interface{}) (bool, error)
	SetCustomerList(ctx context.Context, tenantID uuid.UUID, queryKey string, value interface{}, ttl time.Duration) error
	InvalidateCustomerLists(ctx context.Context, tenantID uuid.UUID) error

	// Cache invalidation
	InvalidateTenantCache(ctx context.Context, tenantID uuid.UUID) error

	// Generic string operations
	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error

	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client  *redis.Client
	metrics *metrics.Metrics
}

func NewRedisCacheService(addr, password string, db int, m *metrics.Metrics) CacheService {
	// Accept redis://host:port as well as host:port
	parsedAddr := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://")

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		logger.FromContext(context.Background()).Warn("redis ping failed on initialization", zap.Error(pingErr), zap.String("addr", parsedAddr))
	}

	return NewCacheServiceWithClient(client, m)
}

// NewCacheServiceWithClient wraps an existing client
func NewCacheServiceWithClient(client *redis.Client, m *metrics.Metrics) CacheService {
	if m == nil {
		m = metrics.NewNop()
	}
	return &redisCacheService{client: client, metrics: m}
}

func productKey(tenantID, productID uuid.UUID) string {
	return fmt.Sprintf("%s:product:%s:%s", keyPrefix, tenantID.String(), productID.String())
}

func quotationKey(tenantID, quotationID uuid.UUID) string {
	return fmt.Sprintf("%s:quotation:%s:%s", keyPrefix, tenantID.String(), quotationID.String())
}

func customerListKey(tenantID uuid.UUID, queryKey string) string {
	return fmt.Sprintf("%s:customers:%s:%s", keyPrefix, tenantID.String(), queryKey)
}

// getJSON decodes the value at key into dest; a miss returns false with no error
func (r *redisCacheService) getJSON(ctx context.Context, op, key string, dest interface{}) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.metrics.CacheOperations.WithLabelValues(op, "miss").Inc()
			return false, nil
		}
		r.metrics.CacheOperations.WithLabelValues(op, "error").Inc()
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		r.metrics.CacheOperations.WithLabelValues(op, "error").Inc()
		return false, err
	}
	r.metrics.CacheOperations.WithLabelValues(op, "hit").Inc()
	return true, nil
}

func (r *redisCacheService) setJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) GetProduct(ctx context.Context, tenantID, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	found, err := r.getJSON(ctx, "product", productKey(tenantID, productID), &product)
	if err != nil || !found {
		return nil, err
	}
	return &product, nil
}

func (r *redisCacheService) SetProduct(ctx context.Context, tenantID uuid.UUID, product *models.Product, ttl time.Duration) error {
	return r.setJSON(ctx, productKey(tenantID, product.ID), product, ttl)
}

func (r *redisCacheService) DeleteProduct(ctx context.Context, tenantID, productID uuid.UUID) error {
	return r.client.Del(ctx, productKey(tenantID, productID)).Err()
}

func (r *redisCacheService) GetQuotation(ctx context.Context, tenantID, quotationID uuid.UUID) (*models.Quotation, error) {
	var quotation models.Quotation
	found, err := r.getJSON(ctx, "quotation", quotationKey(tenantID, quotationID), &quotation)
	if err != nil || !found {
		return nil, err
	}
	return &quotation, nil
}

func (r *redisCacheService) SetQuotation(ctx context.Context, tenantID uuid.UUID, quotation *models.Quotation, ttl time.Duration) error {
	return r.setJSON(ctx, quotationKey(tenantID, quotation.ID), quotation, ttl)
}

func (r *redisCacheService) DeleteQuotation(ctx context.Context, tenantID, quotationID uuid.UUID) error {
	return r.client.Del(ctx, quotationKey(tenantID, quotationID)).Err()
}

func (r *redisCacheService) GetCustomerList(ctx context.Context, tenantID uuid.UUID, queryKey string, dest interface{}) (bool, error) {
	return r.getJSON(ctx, "customer_list", customerListKey(tenantID, queryKey), dest)
}

func (r *redisCacheService) SetCustomerList(ctx context.Context, tenantID uuid.UUID, queryKey string, value interface{}, ttl time.Duration) error {
	return r.setJSON(ctx, customerListKey(tenantID, queryKey), value, ttl)
}

func (r *redisCacheService) InvalidateCustomerLists(ctx context.Context, tenantID uuid.UUID) error {
	return r.deletePattern(ctx, fmt.Sprintf("%s:customers:%s:*", keyPrefix, tenantID.String()))
}

func (r *redisCacheService) InvalidateTenantCache(ctx context.Context, tenantID uuid.UUID) error {
	return r.deletePattern(ctx, fmt.Sprintf("%s:*:%s:*", keyPrefix, tenantID.String()))
}

// deletePattern walks matching keys with SCAN so large keyspaces do not block redis
func (r *redisCacheService) deletePattern(ctx context.Context, pattern string) error {
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) > 0 {
		return r.client.Del(ctx, keys...).Err()
	}
	return nil
}

func (r *redisCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil // cache miss
		}
		return "", err
	}
	return val, nil
}

func (r *redisCacheService) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
