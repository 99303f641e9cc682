package handlers

import (
	"context"
	"net/http"

	"github.com/axisir/axisir-stack/common/httputil"
	"github.com/axisir/axisir-stack/respond/internal/models"
)

// listAssetsBy serves the asset listings that differ only in their owner id.
func (h *Handler) listAssetsBy(param, message string, list func(ctx context.Context, id int64) ([]models.Asset, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, valid := pathID(w, r, param)
		if !valid {
			return
		}
		assets, err := list(r.Context(), id)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		ok(w, assets, message)
	}
}

// ListAssetsByCompany handles GET /assets/getAssetsByCompanyId/{companyId}
func (h *Handler) ListAssetsByCompany(w http.ResponseWriter, r *http.Request) {
	h.listAssetsBy("companyId", "Assets found", h.svc.Assets.ListByCompany)(w, r)
}

// ListAssetsByGroup handles GET /assets/getAssetsByAssetGroup/{assetGroupId}
func (h *Handler) ListAssetsByGroup(w http.ResponseWriter, r *http.Request) {
	h.listAssetsBy("assetGroupId", "Assets found", h.svc.Assets.ListByGroup)(w, r)
}

// ListInfectedAssets handles GET /assets/getInfectedAssets/{companyId}
func (h *Handler) ListInfectedAssets(w http.ResponseWriter, r *http.Request) {
	h.listAssetsBy("companyId", "Infected assets found", h.svc.Assets.ListInfected)(w, r)
}

// ListAssetGroups handles GET /assets/getAssetGroups/{companyId}
func (h *Handler) ListAssetGroups(w http.ResponseWriter, r *http.Request) {
	companyID, valid := pathID(w, r, "companyId")
	if !valid {
		return
	}

	groups, err := h.svc.Assets.ListGroups(r.Context(), companyID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ok(w, groups, "Asset groups found")
}

// GetAsset handles GET /assets/getById/{id}
func (h *Handler) GetAsset(w http.ResponseWriter, r *http.Request) {
	assetID, valid := pathID(w, r, "id")
	if !valid {
		return
	}

	asset, err := h.svc.Assets.GetByID(r.Context(), assetID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ok(w, asset, "Asset found")
}

// CreateAsset handles POST /assets/create
func (h *Handler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	var req models.SaveAssetRequest
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.svc.Assets.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	created(w, res, "Asset created", res.Warnings)
}

// UpdateAsset handles POST /assets/update
func (h *Handler) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	var req models.SaveAssetRequest
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.svc.Assets.Update(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSONAPIData(w, http.StatusOK, res, &httputil.Meta{Message: "Asset updated", Warnings: res.Warnings})
}

// CreateAssetGroup handles POST /assets/createAssetGroup
func (h *Handler) CreateAssetGroup(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAssetGroupRequest
	if !h.decode(w, r, &req) {
		return
	}

	group, err := h.svc.Assets.CreateGroup(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	created(w, group, "Asset group created", nil)
}

// AssignAssetToGroup handles POST /assets/assignAssetToGroup
func (h *Handler) AssignAssetToGroup(w http.ResponseWriter, r *http.Request) {
	var req models.AssignAssetToGroupRequest
	if !h.decode(w, r, &req) {
		return
	}

	assignment, err := h.svc.Assets.AssignToGroup(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.IsRemove {
		ok(w, assignment, "Asset removed from group")
		return
	}
	ok(w, assignment, "Asset assigned to group")
}
