package repository

import (
	"context"

	"github.com/siteintel-service/internal/domain"
)

// StreamRepository определяет методы для работы с Redis Streams
type StreamRepository interface {
	// CreateConsumerGroup создаёт consumer group для стрима
	CreateConsumerGroup(ctx context.Context, stream, group string) error

	// ConsumeStream читает сообщения из стрима с использованием consumer group
	ConsumeStream(ctx context.Context, stream, group, consumer string) (<-chan domain.StreamMessage, error)

	// AckMessage подтверждает обработку сообщения
	AckMessage(ctx context.Context, stream, group, messageID string) error

	// PublishToStream публикует сообщение в стрим
	PublishToStream(ctx context.Context, stream string, data interface{}) error
}
