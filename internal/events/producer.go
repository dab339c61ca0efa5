package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/wearvault/storefront-service/internal/domain"
)

type KafkaProducer struct {
	writer *kafka.Writer
	logger *zap.Logger
}

func NewKafkaProducer(brokers, topic string, logger *zap.Logger) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}

	return &KafkaProducer{
		writer: writer,
		logger: logger,
	}
}

func (p *KafkaProducer) publish(key string, payload interface{}) error {
	eventBytes, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error("Failed to marshal event", zap.Error(err))
		return err
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: eventBytes,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish message",
			zap.String("event_id", key),
			zap.Error(err))
		return err
	}

	return nil
}

func (p *KafkaProducer) PublishOrderCreated(order *domain.Order, requestID string) error {
	event := OrderCreatedEvent{
		EventID:   uuid.NewString(),
		OrderID:   order.OrderID,
		UserID:    order.UserID,
		Total:     order.Total,
		Items:     order.Lines,
		Status:    string(order.Status),
		Timestamp: time.Now(),
		RequestID: requestID,
	}

	if err := p.publish(event.EventID, event); err != nil {
		return err
	}

	p.logger.Info("Event published successfully",
		zap.String("event_id", event.EventID),
		zap.String("order_id", event.OrderID))
	return nil
}

func (p *KafkaProducer) PublishStockDeducted(orderID string, line domain.CartLine) error {
	event := StockDeductedEvent{
		EventID:     uuid.NewString(),
		OrderID:     orderID,
		ProductID:   line.ProductID,
		Type:        line.Type,
		Size:        line.Size,
		Quantity:    line.Quantity,
		RentalWeeks: line.RentalWeeks,
		Timestamp:   time.Now(),
	}
	return p.publish(event.EventID, event)
}

func (p *KafkaProducer) PublishStockDeductionFailed(orderID, productID, reason string) error {
	event := StockDeductionFailedEvent{
		EventID:   uuid.NewString(),
		OrderID:   orderID,
		ProductID: productID,
		Reason:    reason,
		Timestamp: time.Now(),
	}
	return p.publish(event.EventID, event)
}

func (p *KafkaProducer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
