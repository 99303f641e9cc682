package nats

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axisir/axisir-stack/common/messaging"
	"github.com/axisir/axisir-stack/common/middleware"
)

type recordingPublisher struct {
	msgs []*messaging.Message
}

func (r *recordingPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	r.msgs = append(r.msgs, &messaging.Message{Subject: subject, Data: data})
	return nil
}

func (r *recordingPublisher) PublishMsg(ctx context.Context, msg *messaging.Message) error {
	r.msgs = append(r.msgs, msg)
	return nil
}

func (r *recordingPublisher) Close() error { return nil }

// contextWithRequestID runs the RequestID middleware to obtain a request-scoped context.
func contextWithRequestID(t *testing.T, id string) context.Context {
	t.Helper()
	var ctx context.Context
	h := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx = r.Context()
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.RequestIDHeader, id)
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.NotNil(t, ctx)
	return ctx
}

func TestPublishIncidentUpdated_ClosedAlsoPublishesClosed(t *testing.T) {
	rec := &recordingPublisher{}
	p := NewPublisher(rec)

	err := p.PublishIncidentUpdated(context.Background(), &IncidentEvent{CaseID: 4, Status: "CLOSED"}, true)
	require.NoError(t, err)

	require.Len(t, rec.msgs, 2)
	assert.Equal(t, messaging.SubjectRespondIncidentsUpdated, rec.msgs[0].Subject)
	assert.Equal(t, messaging.SubjectRespondIncidentsClosed, rec.msgs[1].Subject)
}

func TestPublishCarriesRequestID(t *testing.T) {
	rec := &recordingPublisher{}
	p := NewPublisher(rec)
	ctx := contextWithRequestID(t, "req-123")

	require.NoError(t, p.PublishAssetGrouped(ctx, &AssetGroupedEvent{AssetID: 1, GroupIDs: []int64{2}}))

	require.Len(t, rec.msgs, 1)
	msg := rec.msgs[0]
	assert.Equal(t, "req-123", msg.Metadata[messaging.HeaderRequestID])

	var event messaging.Event
	require.NoError(t, json.Unmarshal(msg.Data, &event))
	assert.Equal(t, messaging.SubjectRespondAssetsGrouped, event.Subject)
	assert.Equal(t, "req-123", event.RequestID)

	var payload AssetGroupedEvent
	require.NoError(t, json.Unmarshal(event.Payload, &payload))
	assert.Equal(t, []int64{2}, payload.GroupIDs)
}

func TestNewPublisherNilClientDiscards(t *testing.T) {
	p := NewPublisher(nil)
	assert.NoError(t, p.PublishIncidentCreated(context.Background(), &IncidentEvent{CaseID: 1}))
}
