package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"creator-subscription-service/internal/domain"
	"creator-subscription-service/internal/domain/model"
	"creator-subscription-service/internal/infra/metrics"
	"creator-subscription-service/internal/usecase"
)

// ---- DTOs ----

type planCreateRequest struct {
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	DurationDays int             `json:"durationDays"`
}

type planResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	DurationDays int             `json:"durationDays"`
	CreatorID    string          `json:"creatorId"`
}

type subscribeRequest struct {
	AutoRenewal bool `json:"autoRenewal"`
}

type subscriptionResponse struct {
	ID           string          `json:"id"`
	UserID       string          `json:"userId"`
	PlanName     string          `json:"planName"`
	Price        decimal.Decimal `json:"price"`
	DurationDays int             `json:"durationDays"`
	Status       string          `json:"status"`
	StartDate    string          `json:"startDate"`
	EndDate      string          `json:"endDate"`
	IsActive     bool            `json:"isActive"`
	AutoRenewal  string          `json:"autoRenewal"`
}

type listItemResponse struct {
	ID            string          `json:"id"`
	FanName       string          `json:"fanName"`
	CreatorID     string          `json:"creatorId"`
	CreatorName   string          `json:"creatorName"`
	PlanName      string          `json:"planName"`
	Price         decimal.Decimal `json:"price"`
	DurationDays  int             `json:"durationInDays"`
	StartDate     string          `json:"startDate"`
	EndDate       string          `json:"endDate"`
	DurationText  string          `json:"durationText"`
	Status        string          `json:"status"`
	AutoRenewal   string          `json:"autoRenewal"`
	RemainingDays int             `json:"remainingDays"`
}

type updateSubscriptionRequest struct {
	AutoRenewal *bool `json:"autoRenewal"`
}

func toPlanResponse(p *model.Plan) planResponse {
	return planResponse{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		DurationDays: p.DurationDays,
		CreatorID:    p.CreatorID,
	}
}

// toSubscriptionResponse flattens a subscription with its plan. The
// isActive boolean is derived from status here, at the serialization
// boundary; it is not stored.
func toSubscriptionResponse(s *model.Subscription, p *model.Plan) subscriptionResponse {
	return subscriptionResponse{
		ID:           s.ID,
		UserID:       s.UserID,
		PlanName:     p.Name,
		Price:        p.Price,
		DurationDays: p.DurationDays,
		Status:       string(s.Status),
		StartDate:    formatDate(s.StartDate),
		EndDate:      formatDate(s.EndDate),
		IsActive:     s.IsActive(),
		AutoRenewal:  autoRenewalFlag(s.AutoRenewal),
	}
}

// autoRenewalFlag is the lowercase on/off form used by subscription
// responses; dashboard rows and the CSV use the capitalized form.
func autoRenewalFlag(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

func toListItemResponse(it *usecase.ListItem) listItemResponse {
	return listItemResponse{
		ID:            it.SubscriptionID,
		FanName:       it.FanName,
		CreatorID:     it.CreatorID,
		CreatorName:   it.CreatorName,
		PlanName:      it.PlanName,
		Price:         it.Price,
		DurationDays:  it.DurationDays,
		StartDate:     formatDate(it.StartDate),
		EndDate:       formatDate(it.EndDate),
		DurationText:  it.DurationText,
		Status:        it.Status,
		AutoRenewal:   autoRenewalText(it.AutoRenewal),
		RemainingDays: it.RemainingDays,
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func autoRenewalText(on bool) string {
	if on {
		return "On"
	}
	return "Off"
}

// ---- plumbing ----

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrInvalidArgument):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		s.log.Error().Err(err).Msg("internal error")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// ---- plan handlers ----

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req planCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	plan, err := s.plans.Create(r.Context(), req.Name, req.Description, req.Price, req.DurationDays, id.UserID, id.FirstName, id.LastName)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPlanResponse(plan))
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.plans.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]planResponse, 0, len(plans))
	for _, p := range plans {
		out = append(out, toPlanResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListPlansByCreator(w http.ResponseWriter, r *http.Request) {
	plans, err := s.plans.ListByCreator(r.Context(), chi.URLParam(r, "creatorID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]planResponse, 0, len(plans))
	for _, p := range plans {
		out = append(out, toPlanResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

// ---- subscription handlers ----

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req subscribeRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	planID := chi.URLParam(r, "planID")
	sub, err := s.subs.Subscribe(r.Context(), id.UserID, planID, id.FirstName, id.LastName, req.AutoRenewal)
	if err != nil {
		s.writeError(w, err)
		return
	}
	metrics.IncSubscriptionsCreated()

	plan, err := s.plans.Get(r.Context(), sub.PlanID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSubscriptionResponse(sub, plan))
}

func (s *Server) handleListUserSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := s.subs.ListByUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	out := make([]subscriptionResponse, 0, len(subs))
	plans := make(map[string]*model.Plan, len(subs))
	for _, sub := range subs {
		plan, ok := plans[sub.PlanID]
		if !ok {
			p, err := s.plans.Get(r.Context(), sub.PlanID)
			if err != nil {
				s.writeError(w, err)
				return
			}
			plans[sub.PlanID] = p
			plan = p
		}
		out = append(out, toSubscriptionResponse(sub, plan))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCancelSubscription(w http.ResponseWriter, r *http.Request) {
	if err := s.subs.Cancel(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	metrics.IncSubscriptionsCancelled()
	w.WriteHeader(http.StatusNoContent)
}

// ---- dashboard handlers ----

func (s *Server) handleTotalActive(w http.ResponseWriter, r *http.Request) {
	n, err := s.stats.TotalActive(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) handleMonthlyRevenue(w http.ResponseWriter, r *http.Request) {
	sum, err := s.stats.MonthlyRevenue(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleExpiringSoon(w http.ResponseWriter, r *http.Request) {
	n, err := s.stats.ExpiringSoon(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) handleNewToday(w http.ResponseWriter, r *http.Request) {
	n, err := s.stats.NewToday(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func filterParam(r *http.Request) string {
	f := r.URL.Query().Get("filter")
	if f == "" {
		return usecase.FilterAll
	}
	return f
}

func (s *Server) handleDashboardList(w http.ResponseWriter, r *http.Request) {
	items, err := s.dashboard.List(r.Context(), filterParam(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]listItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, toListItemResponse(it))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDashboardGet(w http.ResponseWriter, r *http.Request) {
	item, err := s.dashboard.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toListItemResponse(item))
}

func (s *Server) handleDashboardUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	item, err := s.dashboard.Update(r.Context(), chi.URLParam(r, "id"), req.AutoRenewal)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toListItemResponse(item))
}

func (s *Server) handleDashboardCancel(w http.ResponseWriter, r *http.Request) {
	item, err := s.dashboard.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	metrics.IncSubscriptionsCancelled()
	writeJSON(w, http.StatusOK, toListItemResponse(item))
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	filter := filterParam(r)

	// Validate the filter before any byte is written so an error can still
	// produce a clean status code.
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="subscriptions.csv"`)
	if err := s.export.ExportCSV(r.Context(), w, filter); err != nil {
		w.Header().Del("Content-Disposition")
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		s.writeError(w, err)
		return
	}
}
