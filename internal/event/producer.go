package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ShadEl7/her-essence-website/internal/cart"
	pkgkafka "github.com/ShadEl7/her-essence-website/pkg/kafka"
	"github.com/ShadEl7/her-essence-website/pkg/logger"
)

// Kafka topics for cart events.
var (
	TopicCountChanged = pkgkafka.Topic("cart", "count_changed")
	TopicItemAdded    = pkgkafka.Topic("cart", "item_added")
)

// AggregateTypeCart is the aggregate type of every cart event.
const AggregateTypeCart = "cart"

// SourceStorefront identifies events originating from this service.
const SourceStorefront = "storefront"

// CountChangedData is the payload for a cart.count_changed event.
type CountChangedData struct {
	Key       string         `json:"key"`
	ItemCount int            `json:"item_count"`
	Total     int64          `json:"total"`
	Items     []CartItemData `json:"items"`
}

// ItemAddedData is the payload for a cart.item_added event.
type ItemAddedData struct {
	Key         string `json:"key"`
	ProductName string `json:"product_name"`
	ItemCount   int    `json:"item_count"`
}

// CartItemData is the item payload within cart events.
type CartItemData struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

// Publisher is the subset of *pkgkafka.Producer the observer needs.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes cart events to Kafka. It is a cart.Observer; publish
// failures are logged and never reach the cart.
type Producer struct {
	publisher Publisher
	logger    *slog.Logger
}

var (
	_ cart.Observer = (*Producer)(nil)
	_ Publisher     = (*pkgkafka.Producer)(nil)
)

// NewProducer creates a cart event producer.
func NewProducer(publisher Publisher, l *slog.Logger) *Producer {
	if l == nil {
		l = logger.Discard()
	}
	return &Producer{publisher: publisher, logger: l}
}

// Notify publishes e to its topic.
func (p *Producer) Notify(ctx context.Context, e cart.Event) {
	topic, data := p.payload(e)
	if topic == "" {
		return
	}

	if err := p.publish(ctx, topic, e.Key, data); err != nil {
		p.logger.ErrorContext(ctx, "failed to publish cart event",
			slog.String("topic", topic),
			slog.String("key", e.Key),
			slog.String("error", err.Error()),
		)
		return
	}

	p.logger.DebugContext(ctx, "published cart event",
		slog.String("topic", topic),
		slog.String("key", e.Key),
		slog.Int("item_count", e.Count),
	)
}

func (p *Producer) payload(e cart.Event) (string, any) {
	switch e.Type {
	case cart.EventCountChanged:
		items := make([]CartItemData, len(e.Items))
		for i, item := range e.Items {
			items[i] = CartItemData{
				ID:       item.ID.String(),
				Name:     item.Name,
				Price:    item.Price,
				Quantity: item.Quantity,
			}
		}
		return TopicCountChanged, CountChangedData{
			Key:       e.Key,
			ItemCount: e.Count,
			Total:     e.Items.Total(),
			Items:     items,
		}
	case cart.EventItemAdded:
		return TopicItemAdded, ItemAddedData{
			Key:         e.Key,
			ProductName: e.ProductName,
			ItemCount:   e.Count,
		}
	default:
		return "", nil
	}
}

func (p *Producer) publish(ctx context.Context, topic, key string, data any) error {
	evt, err := pkgkafka.NewEvent(topic, key, AggregateTypeCart, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		evt.WithCorrelationID(id)
	}
	if session := logger.CartSessionFromContext(ctx); session != "" {
		evt.WithMetadata("cart_session", session)
	}

	if err := p.publisher.Publish(ctx, topic, evt); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}
	return nil
}
