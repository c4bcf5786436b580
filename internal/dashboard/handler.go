package dashboard

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/tms/timesheet-management/internal/auth"
	"github.com/tms/timesheet-management/internal/transport"
	"github.com/tms/timesheet-management/pkg/logger"
)

type ServiceAPI interface {
	EmployeeStats(identity auth.Identity) (*EmployeeStats, error)
	ManagerStats(identity auth.Identity, managerID int64) (*ManagerStats, error)
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

func (h *Handler) EmployeeStats(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	stats, err := h.Service.EmployeeStats(identity)
	if err != nil {
		h.Logger.Error("EmployeeStats: service error", "error", err, "user_id", identity.UserID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) ManagerStats(w http.ResponseWriter, r *http.Request) {
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

	stats, err := h.Service.ManagerStats(identity, managerID)
	if err != nil {
		h.Logger.Error("ManagerStats: service error", "error", err, "manager_id", managerID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, stats)
}
