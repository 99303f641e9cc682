package service

import (
	"context"

	natsevents "github.com/axisir/axisir-stack/respond/internal/nats"
)

type noopEvents struct{}

func (noopEvents) PublishIncidentCreated(context.Context, *natsevents.IncidentEvent) error {
	return nil
}

func (noopEvents) PublishIncidentUpdated(context.Context, *natsevents.IncidentEvent, bool) error {
	return nil
}

func (noopEvents) PublishIndicatorLinked(context.Context, *natsevents.IndicatorLinkedEvent) error {
	return nil
}

func (noopEvents) PublishAssetGrouped(context.Context, *natsevents.AssetGroupedEvent) error {
	return nil
}
