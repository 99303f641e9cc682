package models

import (
	"encoding/json"
	"time"
)

// Indicator is an indicator of compromise: identity and classification only.
type Indicator struct {
	IOCID          int64           `db:"ioc_id" json:"iocId"`
	Type           string          `db:"type" json:"type"`
	Value          string          `db:"value" json:"value"`
	Classification *string         `db:"classification" json:"classification,omitempty"`
	Priority       *string         `db:"priority" json:"priority,omitempty"`
	ClassifiedBy   *int64          `db:"classified_by" json:"classifiedBy,omitempty"`
	MetaData       json.RawMessage `db:"meta_data" json:"metaData,omitempty"`
	DetectedAt     *time.Time      `db:"detected_at" json:"detectedAt,omitempty"`
	TLP            *string         `db:"tlp" json:"tlp,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updatedAt"`
}

// IndicatorLink relates an indicator to a case and an asset. It is the
// record of "indicator X relates to case/asset Y".
type IndicatorLink struct {
	LinkID      int64           `db:"link_id" json:"linkId"`
	IOCID       int64           `db:"ioc_id" json:"iocId"`
	CaseID      *int64          `db:"case_id" json:"caseId,omitempty"`
	AssetID     *int64          `db:"asset_id" json:"assetId,omitempty"`
	LinkType    *string         `db:"link_type" json:"linkType,omitempty"`
	Value       *string         `db:"value" json:"value,omitempty"`
	LinkedBy    *int64          `db:"linked_by" json:"linkedBy,omitempty"`
	MetaData    json.RawMessage `db:"meta_data" json:"metaData,omitempty"`
	TLP         *string         `db:"tlp" json:"tlp,omitempty"`
	AttackPhase *string         `db:"attack_phase" json:"attackPhase,omitempty"`
	Confidence  *int32          `db:"confidence" json:"confidence,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
}

// IOCRecord is a link merged with its indicator. Link fields win on
// collision; the indicator contributes only the fields the link lacks.
type IOCRecord struct {
	IndicatorLink
	Type           string     `json:"type"`
	Classification *string    `json:"classification,omitempty"`
	Priority       *string    `json:"priority,omitempty"`
	ClassifiedBy   *int64     `json:"classifiedBy,omitempty"`
	DetectedAt     *time.Time `json:"detectedAt,omitempty"`
}

// MergeIOC builds the IOC view of link. ind may be nil when the indicator row
// is missing, in which case only link fields are present.
func MergeIOC(link IndicatorLink, ind *Indicator) IOCRecord {
	rec := IOCRecord{IndicatorLink: link}
	if ind == nil {
		return rec
	}
	rec.Type = ind.Type
	rec.Classification = ind.Classification
	rec.Priority = ind.Priority
	rec.ClassifiedBy = ind.ClassifiedBy
	rec.DetectedAt = ind.DetectedAt
	if rec.Value == nil {
		v := ind.Value
		rec.Value = &v
	}
	if rec.TLP == nil {
		rec.TLP = ind.TLP
	}
	if len(rec.MetaData) == 0 {
		rec.MetaData = ind.MetaData
	}
	return rec
}

// IndicatorCreated is returned by indicator create.
type IndicatorCreated struct {
	Indicator Indicator     `json:"indicator"`
	Link      IndicatorLink `json:"link"`
}

// CreateIndicatorRequest is the body of POST /indicators/create. It carries
// both the indicator and the case/asset context of its first link.
type CreateIndicatorRequest struct {
	Type           string          `json:"type"`
	Value          string          `json:"value"`
	Classification *string         `json:"classification"`
	Priority       *string         `json:"priority"`
	ClassifiedBy   *int64          `json:"classifiedBy"`
	MetaData       json.RawMessage `json:"metaData"`
	DetectedAt     *time.Time      `json:"detectedAt"`
	TLP            *string         `json:"tlp"`

	CaseID      *int64  `json:"caseId"`
	AssetID     *int64  `json:"assetId"`
	LinkType    *string `json:"linkType"`
	AttackPhase *string `json:"attackPhase"`
	Confidence  *int32  `json:"confidence"`
}

// UpdateIndicatorRequest is the body of POST /indicators/update. Nil fields are left unchanged.
type UpdateIndicatorRequest struct {
	IOCID          FlexibleID      `json:"iocId"`
	Type           *string         `json:"type"`
	Value          *string         `json:"value"`
	Classification *string         `json:"classification"`
	Priority       *string         `json:"priority"`
	ClassifiedBy   *int64          `json:"classifiedBy"`
	MetaData       json.RawMessage `json:"metaData"`
	DetectedAt     *time.Time      `json:"detectedAt"`
	TLP            *string         `json:"tlp"`
}
