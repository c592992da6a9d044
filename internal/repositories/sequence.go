package repositories

import (
	"context"
	"fmt"

	"marketplace/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderNumberSequence is the name of the counter backing order numbers.
const OrderNumberSequence = "order_number"

// Sequence hands out strictly increasing numbers per name. Two callers never
// receive the same value.
type Sequence interface {
	Next(ctx context.Context, name string) (int64, error)
}

// GORMSequence keeps counters in the sequences table and increments them with
// a single UPDATE inside a transaction.
type GORMSequence struct {
	db *gorm.DB
}

func NewGORMSequence(db *gorm.DB) *GORMSequence {
	return &GORMSequence{db: db}
}

func (s *GORMSequence) Next(ctx context.Context, name string) (int64, error) {
	var seq models.Sequence
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.Sequence{Name: name}).Error; err != nil {
			return err
		}
		err := tx.Model(&models.Sequence{}).Where("name = ?", name).
			UpdateColumn("value", gorm.Expr("value + ?", 1)).Error
		if err != nil {
			return err
		}
		return tx.First(&seq, "name = ?", name).Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to advance sequence %s: %w", name, err)
	}
	return seq.Value, nil
}

// RedisSequence increments counters with INCR under a key prefix.
type RedisSequence struct {
	client *redis.Client
	prefix string
}

func NewRedisSequence(client *redis.Client) *RedisSequence {
	return &RedisSequence{client: client, prefix: "seq:"}
}

func (s *RedisSequence) Next(ctx context.Context, name string) (int64, error) {
	n, err := s.client.Incr(ctx, s.prefix+name).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to advance sequence %s: %w", name, err)
	}
	return n, nil
}
