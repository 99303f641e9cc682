package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/axisir/axisir-stack/common/messaging"
	"github.com/axisir/axisir-stack/common/middleware"
)

// Publisher publishes respond domain events.
type Publisher struct {
	client messaging.Publisher
}

// NewPublisher creates a new publisher on client. A nil client discards every event.
func NewPublisher(client messaging.Publisher) *Publisher {
	if client == nil {
		client = messaging.NoopPublisher{}
	}
	return &Publisher{client: client}
}

// PublishIncidentCreated publishes an incident created event.
func (p *Publisher) PublishIncidentCreated(ctx context.Context, event *IncidentEvent) error {
	return p.publish(ctx, messaging.SubjectRespondIncidentsCreated, event)
}

// PublishIncidentUpdated publishes an incident updated event, and a closed
// event as well when the incident has just been closed.
func (p *Publisher) PublishIncidentUpdated(ctx context.Context, event *IncidentEvent, closed bool) error {
	if err := p.publish(ctx, messaging.SubjectRespondIncidentsUpdated, event); err != nil {
		return err
	}
	if closed {
		return p.publish(ctx, messaging.SubjectRespondIncidentsClosed, event)
	}
	return nil
}

// PublishIndicatorLinked publishes an indicator linked event.
func (p *Publisher) PublishIndicatorLinked(ctx context.Context, event *IndicatorLinkedEvent) error {
	return p.publish(ctx, messaging.SubjectRespondIndicatorsLinked, event)
}

// PublishAssetGrouped publishes an asset grouped event.
func (p *Publisher) PublishAssetGrouped(ctx context.Context, event *AssetGroupedEvent) error {
	return p.publish(ctx, messaging.SubjectRespondAssetsGrouped, event)
}

// publish wraps data in an Event envelope and sends it with the request id header.
func (p *Publisher) publish(ctx context.Context, subject string, data interface{}) error {
	requestID := middleware.GetRequestID(ctx)
	event, err := messaging.NewEvent(subject, requestID, data)
	if err != nil {
		return err
	}
	bytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	msg := &messaging.Message{Subject: subject, Data: bytes}
	if requestID != "" {
		msg.Metadata = map[string]string{messaging.HeaderRequestID: requestID}
	}
	return p.client.PublishMsg(ctx, msg)
}
