package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"kudi/internal/models"

	"github.com/redis/go-redis/v9"
)

type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheService(client *redis.Client, defaultTTL time.Duration) *CacheService {
	return &CacheService{
		client: client,
		ttl:    defaultTTL,
	}
}

// Base operations
func (s *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	return s.SetWithTTL(ctx, key, value, s.ttl)
}

func (s *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache value: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return true, nil
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

// Key generation
func (s *CacheService) GenerateKey(entityType, keyType string, value interface{}) string {
	return fmt.Sprintf("%s:%s:%v", entityType, keyType, value)
}

// Wallet caching
//
// Every invalidation bumps a per-user version. A reader takes the version
// before it loads the wallet and CacheWallet writes the snapshot only while
// that version still holds, so a load that raced an adjustment is never
// cached.
const walletVersionTTL = 24 * time.Hour

func (s *CacheService) walletKey(userID string) string {
	return s.GenerateKey("wallet", "user", userID)
}

func (s *CacheService) walletVersionKey(userID string) string {
	return s.GenerateKey("wallet", "version", userID)
}

// WalletVersion returns the user's invalidation counter, zero if never bumped.
func (s *CacheService) WalletVersion(ctx context.Context, userID string) (int64, error) {
	v, err := s.client.Get(ctx, s.walletVersionKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// CacheWallet stores the snapshot if no invalidation happened since version
// was read. A skipped write is not an error.
func (s *CacheService) CacheWallet(ctx context.Context, wallet *models.Wallet, version int64) error {
	if wallet == nil {
		return errors.New("cannot cache nil wallet")
	}
	data, err := json.Marshal(wallet)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	versionKey := s.walletVersionKey(wallet.UserID)
	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, versionKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.walletKey(wallet.UserID), data, s.ttl)
			return nil
		})
		return err
	}, versionKey)
	if errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

// GetWallet returns the cached wallet, or nil on a miss.
func (s *CacheService) GetWallet(ctx context.Context, userID string) (*models.Wallet, error) {
	var wallet models.Wallet
	found, err := s.Get(ctx, s.walletKey(userID), &wallet)
	if err != nil || !found {
		return nil, err
	}
	return &wallet, nil
}

// InvalidateWallet drops the snapshot and bumps the version in one step.
func (s *CacheService) InvalidateWallet(ctx context.Context, userID string) error {
	versionKey := s.walletVersionKey(userID)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, versionKey)
		pipe.Expire(ctx, versionKey, walletVersionTTL)
		pipe.Del(ctx, s.walletKey(userID))
		return nil
	})
	return err
}

// Rate caching
func (s *CacheService) rateKey(from, to models.Currency) string {
	return s.GenerateKey("rate", "pair", string(from)+"_"+string(to))
}

func (s *CacheService) CacheRate(ctx context.Context, rate *models.ExchangeRate, ttl time.Duration) error {
	if rate == nil {
		return errors.New("cannot cache nil rate")
	}
	return s.SetWithTTL(ctx, s.rateKey(rate.FromCurrency, rate.ToCurrency), rate, ttl)
}

// GetRate returns the cached active rate for the pair, or nil on a miss.
func (s *CacheService) GetRate(ctx context.Context, from, to models.Currency) (*models.ExchangeRate, error) {
	var rate models.ExchangeRate
	found, err := s.Get(ctx, s.rateKey(from, to), &rate)
	if err != nil || !found {
		return nil, err
	}
	return &rate, nil
}

func (s *CacheService) InvalidateRate(ctx context.Context, from, to models.Currency) error {
	return s.Delete(ctx, s.rateKey(from, to))
}

// Close closes the Redis client connection
func (s *CacheService) Close() error {
	return s.client.Close()
}
