package kvstore

import (
	"context"
	"fmt"
	"os"

	"github.com/hackgods/medication-reminder/internal/config"
	redisclient "github.com/hackgods/medication-reminder/internal/redis"
)

const redisKeyPrefix = "medrem:"

// Open selects a backend from cfg.StorageDriver.
func Open(ctx context.Context, cfg config.Config) (Store, error) {
	switch Driver(cfg.StorageDriver) {
	case DriverMemory:
		return NewMemory(), nil
	case DriverSQLite:
		return NewSQLite(cfg.SQLitePath)
	case DriverPostgres:
		return NewPostgres(ctx, cfg.PostgresDSN)
	case DriverRedis:
		rdb, err := redisclient.NewRedisClient(ctx, RedisOptions(cfg))
		if err != nil {
			return nil, err
		}
		return NewRedis(rdb, redisKeyPrefix), nil
	case DriverS3:
		return NewS3(ctx, S3Options{
			Bucket:          cfg.S3Bucket,
			Prefix:          cfg.S3Prefix,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		})
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, cfg.StorageDriver)
	}
}

func RedisOptions(cfg config.Config) redisclient.Options {
	return redisclient.Options{
		Addr:     cfg.RedisAddr,
		Username: cfg.RedisUsername,
		Password: cfg.RedisPassword,
	}
}
