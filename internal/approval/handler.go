package approval

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/tms/timesheet-management/internal/auth"
	"github.com/tms/timesheet-management/internal/transport"
	"github.com/tms/timesheet-management/pkg/logger"
)

type ServiceAPI interface {
	UpdateStatus(identity auth.Identity, approvalID int64, dto UpdateStatusDTO) (*Approval, error)
	GetByID(identity auth.Identity, approvalID int64) (*Approval, error)
	ListForManager(identity auth.Identity, managerID int64) ([]ApprovalView, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.L()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

// ListApprovals returns the caller's adjudication queue. Admins may inspect
// another manager's queue via the manager_id query parameter.
func (h *Handler) ListApprovals(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	managerID := identity.UserID
	if idStr := r.URL.Query().Get("manager_id"); idStr != "" {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid manager ID")
			return
		}
		managerID = id
	}

	views, err := h.Service.ListForManager(identity, managerID)
	if err != nil {
		h.Logger.Error("ListApprovals: service error", "error", err, "manager_id", managerID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"approvals": views,
	})
}

func (h *Handler) GetApproval(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid approval ID")
		return
	}

	a, err := h.Service.GetByID(identity, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, a)
}

// UpdateApprovalStatus adjudicates a pending approval as APPROVED or REJECTED.
func (h *Handler) UpdateApprovalStatus(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.Logger.Error("UpdateApprovalStatus: invalid approval ID", "id", idStr)
		h.WriteError(w, http.StatusBadRequest, "invalid approval ID")
		return
	}

	var dto UpdateStatusDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("UpdateApprovalStatus: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := h.Service.UpdateStatus(identity, id, dto)
	if err != nil {
		h.Logger.Error("UpdateApprovalStatus: service error", "error", err, "approval_id", id, "manager_id", identity.UserID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("UpdateApprovalStatus: approval adjudicated",
		"approval_id", a.ID,
		"timesheet_id", a.TimesheetID,
		"status", a.Status)

	h.WriteJSON(w, http.StatusOK, a)
}
