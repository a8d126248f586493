package intel

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/siteintel-service/internal/domain"
	"github.com/siteintel-service/internal/domain/repository"
	"github.com/siteintel-service/internal/usecase"
	"github.com/siteintel-service/internal/worker"
)

const retryBackoff = 500 * time.Millisecond

// PrewarmWorker прогревает ward-кеш: читает из стрима точки недавних
// запросов и прогоняет по ним агрегатор, чтобы перезагрузка страницы
// получала приблизительные скоры мгновенно
type PrewarmWorker struct {
	*worker.BaseWorker
	streamRepo   repository.StreamRepository
	intelUC      *usecase.IntelligenceUseCase
	stream       string
	consumerName string
	maxRetries   int
}

// NewPrewarmWorker создает новый PrewarmWorker
func NewPrewarmWorker(
	streamRepo repository.StreamRepository,
	intelUC *usecase.IntelligenceUseCase,
	stream string,
	consumerGroup string,
	maxRetries int,
	logger *zap.Logger,
) *PrewarmWorker {
	hostname, _ := os.Hostname()
	consumerName := fmt.Sprintf("%s-%d", hostname, os.Getpid())

	return &PrewarmWorker{
		BaseWorker:   worker.NewBaseWorker("intel-prewarm", consumerGroup, logger),
		streamRepo:   streamRepo,
		intelUC:      intelUC,
		stream:       stream,
		consumerName: consumerName,
		maxRetries:   maxRetries,
	}
}

// Start запускает воркер
func (w *PrewarmWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting PrewarmWorker",
		zap.String("stream", w.stream),
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.consumerName))

	// Создаем consumer group
	if err := w.streamRepo.CreateConsumerGroup(ctx, w.stream, w.ConsumerGroup()); err != nil {
		logger.Error("Failed to create consumer group", zap.Error(err))
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	msgChan, err := w.streamRepo.ConsumeStream(ctx, w.stream, w.ConsumerGroup(), w.consumerName)
	if err != nil {
		return fmt.Errorf("failed to consume stream: %w", err)
	}

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil

		case <-ctx.Done():
			logger.Info("Context cancelled")
			return ctx.Err()

		case msg, ok := <-msgChan:
			if !ok {
				logger.Info("Stream channel closed")
				return nil
			}
			w.handleMessage(ctx, msg)
		}
	}
}

// handleMessage обрабатывает одно сообщение стрима. Битые сообщения
// подтверждаются и пропускаются, чтобы не застревали в pending
func (w *PrewarmWorker) handleMessage(ctx context.Context, msg domain.StreamMessage) {
	logger := w.Logger()

	var req domain.PrewarmRequest
	if err := json.Unmarshal([]byte(msg.Data), &req); err != nil {
		logger.Warn("Failed to parse prewarm message, skipping",
			zap.String("message_id", msg.ID),
			zap.Error(err))
		_ = w.streamRepo.AckMessage(ctx, w.stream, w.ConsumerGroup(), msg.ID)
		return
	}

	if err := w.prewarm(ctx, req); err != nil {
		logger.Error("Prewarm failed after retries",
			zap.String("message_id", msg.ID),
			zap.Float64("lat", req.Lat),
			zap.Float64("lng", req.Lng),
			zap.Error(err))
		// ACK даже при неудаче: ward-кеш - оптимизация,
		// бесконечный реплей сообщения не нужен
	}

	if err := w.streamRepo.AckMessage(ctx, w.stream, w.ConsumerGroup(), msg.ID); err != nil {
		logger.Warn("Failed to ack message",
			zap.String("message_id", msg.ID),
			zap.Error(err))
	}
}

// prewarm прогоняет агрегатор с ретраями; успешная агрегация сама
// записывает результат в ward-кеш
func (w *PrewarmWorker) prewarm(ctx context.Context, req domain.PrewarmRequest) error {
	var lastErr error

	for attempt := 1; attempt <= w.maxRetries; attempt++ {
		_, err := w.intelUC.GetLocationIntelligence(ctx, req.Lat, req.Lng, req.RadiusMeters)
		if err == nil {
			w.Logger().Debug("Ward prewarmed",
				zap.Float64("lat", req.Lat),
				zap.Float64("lng", req.Lng),
				zap.Int("attempt", attempt))
			return nil
		}

		lastErr = err
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryBackoff * time.Duration(attempt)):
		}
	}

	return lastErr
}
