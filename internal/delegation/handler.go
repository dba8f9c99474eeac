package delegation

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/tenangdev/leave-management/internal"
	"github.com/tenangdev/leave-management/internal/transport"
	"github.com/tenangdev/leave-management/pkg/logger"
)

type ServiceAPI interface {
	Delegate(ctx context.Context, senderEmpID, orgID int64, dto DelegateDTO) (*Delegation, error)
	ListSent(ctx context.Context, senderEmpID, orgID int64) ([]*Delegation, error)
	ListReceived(ctx context.Context, receiverEmpID, orgID int64) ([]*Delegation, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.LoggerWrapper()),
		Service:     service,
	}
}

func (h *Handler) Delegate(w http.ResponseWriter, r *http.Request) {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto DelegateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("Delegate: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.Service.Delegate(r.Context(), actor.EmpID, actor.OrgID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, record)
}

func (h *Handler) ListSent(w http.ResponseWriter, r *http.Request) {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	rows, err := h.Service.ListSent(r.Context(), actor.EmpID, actor.OrgID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"delegations": rows})
}

func (h *Handler) ListReceived(w http.ResponseWriter, r *http.Request) {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok || actor == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	rows, err := h.Service.ListReceived(r.Context(), actor.EmpID, actor.OrgID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"delegations": rows})
}
