package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/observability"
)

// Service turns completed calculations into stored records.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Record persists c as a new history record.
func (s *Service) Record(ctx context.Context, c calculator.Calculation) error {
	now := s.now()
	rec := Record{
		ID:         uuid.New().String(),
		Name:       fmt.Sprintf("Calculation %d", now.UnixMilli()),
		Expression: c.Expression,
		Result:     calculator.FormatNumber(c.Result),
		Operation:  c.Operator.Name(),
		CreatedAt:  now.UTC(),
	}

	if err := s.store.Create(ctx, rec); err != nil {
		errorCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "create")))
		return fmt.Errorf("create history record: %w", err)
	}
	recordsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", rec.Operation)))

	observability.LoggerWithTrace(ctx).Debug("calculation recorded",
		zap.String("id", rec.ID),
		zap.String("expression", rec.Expression),
		zap.String("result", rec.Result),
	)
	return nil
}

func (s *Service) List(ctx context.Context, limit int) ([]Record, error) {
	return s.store.List(ctx, limit)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

func (s *Service) Clear(ctx context.Context) error {
	return s.store.Clear(ctx)
}
