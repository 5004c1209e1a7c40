package web

import (
	"net/http"
)

func (h *Handlers) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.plans.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "plans retrieved", mapSlice(plans, newPlanResponse))
}

func (h *Handlers) GetPlan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	plan, err := h.plans.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "plan retrieved", newPlanResponse(*plan))
}

// PlanSubscribers lists the users holding a plan.
func (h *Handlers) PlanSubscribers(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	users, err := h.plans.Subscribers(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "subscribers retrieved", mapSlice(users, newUserResponse))
}

func (h *Handlers) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	plan, err := h.plans.Create(r.Context(), req.model())
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, "plan created", newPlanResponse(*plan))
}

func (h *Handlers) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req planRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	plan, err := h.plans.Update(r.Context(), id, req.model())
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "plan updated", newPlanResponse(*plan))
}

func (h *Handlers) DeletePlan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.plans.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "plan deleted", nil)
}
