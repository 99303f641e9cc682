// Package nats provides NATS message broker integration for the respond service.
package nats

import "time"

// IncidentEvent is published to respond.incidents.created, .updated and
// .closed whenever an incident is written.
type IncidentEvent struct {
	CaseID    int64      `json:"case_id"`
	CompanyID int64      `json:"company_id"`
	Title     string     `json:"title"`
	Status    string     `json:"status"`
	Priority  string     `json:"priority,omitempty"`
	Assignee  *int64     `json:"assignee,omitempty"`
	OpenedAt  time.Time  `json:"opened_at"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
	ActorID   int64      `json:"actor_id,omitempty"`
}

// IndicatorLinkedEvent is published to respond.indicators.linked when an
// indicator is created together with its first link.
type IndicatorLinkedEvent struct {
	IOCID    int64     `json:"ioc_id"`
	LinkID   int64     `json:"link_id"`
	CaseID   *int64    `json:"case_id,omitempty"`
	AssetID  *int64    `json:"asset_id,omitempty"`
	Type     string    `json:"type"`
	Value    string    `json:"value"`
	LinkType string    `json:"link_type,omitempty"`
	LinkedAt time.Time `json:"linked_at"`
}

// AssetGroupedEvent is published to respond.assets.grouped when an asset's
// group membership changes.
type AssetGroupedEvent struct {
	AssetID  int64   `json:"asset_id"`
	GroupIDs []int64 `json:"group_ids"`
	Removed  bool    `json:"removed"`
}
