package models

import (
	"encoding/json"
	"time"
)

// Asset is a host, device or service owned by a company.
type Asset struct {
	AssetID         int64           `db:"asset_id" json:"assetId"`
	CompanyID       *int64          `db:"company_id" json:"companyId,omitempty"`
	ParentAssetID   *int64          `db:"parent_asset_id" json:"parentAssetId,omitempty"`
	AssetGroupID    *string         `db:"asset_group_id" json:"assetGroupId,omitempty"` // legacy encoded list
	Name            string          `db:"name" json:"name"`
	Type            *string         `db:"type" json:"type,omitempty"`
	OperatingSystem *string         `db:"operating_system" json:"operatingSystem,omitempty"`
	Status          *string         `db:"status" json:"status,omitempty"`
	Priority        *string         `db:"priority" json:"priority,omitempty"`
	MetaData        json.RawMessage `db:"meta_data" json:"metaData,omitempty"`
	TLP             *string         `db:"tlp" json:"tlp,omitempty"`
	LastHeartbeat   *time.Time      `db:"last_heartbeat" json:"lastHeartbeat,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updatedAt"`
}

// AssetDetail is an asset with the groups it is assigned to.
type AssetDetail struct {
	Asset
	Groups []int64 `json:"groups"`
}

// AssetGroup is a named collection of assets within a company.
type AssetGroup struct {
	AssetGroupID int64     `db:"asset_group_id" json:"assetGroupId"`
	CompanyID    int64     `db:"company_id" json:"companyId"`
	Title        string    `db:"title" json:"title"`
	Description  *string   `db:"description" json:"description,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// AssetGroupAssign is one asset-to-group assignment row. Duplicates are allowed.
type AssetGroupAssign struct {
	ID           int64 `db:"id" json:"id"`
	AssetGroupID int64 `db:"asset_group_id" json:"assetGroupId"`
	AssetID      int64 `db:"asset_id" json:"assetId"`
}

// AssetWriteResult is returned by asset create and update. Warnings carry
// non-fatal problems such as an unparseable group list.
type AssetWriteResult struct {
	AssetID  int64    `json:"assetId"`
	Groups   []int64  `json:"groups"`
	Warnings []string `json:"-"`
}

// SaveAssetRequest is the body of POST /assets/create and /assets/update.
// AssetID is required for update and ignored for create.
type SaveAssetRequest struct {
	AssetID         FlexibleID      `json:"assetId"`
	CompanyID       *int64          `json:"companyId"`
	ParentAssetID   *int64          `json:"parentAssetId"`
	AssetGroupID    *EncodedGroups  `json:"assetGroupId"`
	Name            *string         `json:"name"`
	Type            *string         `json:"type"`
	OperatingSystem *string         `json:"operatingSystem"`
	Status          *string         `json:"status"`
	Priority        *string         `json:"priority"`
	MetaData        json.RawMessage `json:"metaData"`
	TLP             *string         `json:"tlp"`
	LastHeartbeat   *time.Time      `json:"lastHeartbeat"`
}

// CreateAssetGroupRequest is the body of POST /assets/createAssetGroup.
type CreateAssetGroupRequest struct {
	CompanyID   FlexibleID `json:"companyId"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
}

// AssignAssetToGroupRequest is the body of POST /assets/assignAssetToGroup.
type AssignAssetToGroupRequest struct {
	AssetGroupID FlexibleID `json:"assetGroupId"`
	AssetID      FlexibleID `json:"assetId"`
	IsRemove     bool       `json:"isRemove"`
}
