package replenish

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/replenish/pkg/ledger"
	"github.com/dmitrymomot/replenish/pkg/paycycle"
	"github.com/dmitrymomot/replenish/pkg/remind"
	"github.com/dmitrymomot/replenish/pkg/subscription"
)

const dateLayout = "2006-01-02"

type usageRequest struct {
	ProductID      string `json:"product_id"`
	CustomerID     string `json:"customer_id"`
	PurchaseDate   string `json:"purchase_date"`
	RepurchaseDate string `json:"repurchase_date,omitempty"`
}

// handleRecordUsage appends a usage event. A repurchase date closes the event
// on ingestion; without one an open event is recorded.
func (s *Service) handleRecordUsage(w http.ResponseWriter, r *http.Request) {
	var req usageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ProductID == "" || req.CustomerID == "" {
		respondError(w, http.StatusBadRequest, "product_id and customer_id are required")
		return
	}

	purchase, err := time.Parse(dateLayout, req.PurchaseDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "purchase_date must be YYYY-MM-DD")
		return
	}

	event := ledger.UsageEvent{
		ProductID:    req.ProductID,
		CustomerID:   req.CustomerID,
		PurchaseDate: purchase,
	}
	if req.RepurchaseDate != "" {
		repurchase, err := time.Parse(dateLayout, req.RepurchaseDate)
		if err != nil {
			respondError(w, http.StatusBadRequest, "repurchase_date must be YYYY-MM-DD")
			return
		}
		event = event.CloseWith(repurchase)
	}

	if err := s.estimator.RecordUsage(r.Context(), event); err != nil {
		s.logger.ErrorContext(r.Context(), "failed to record usage event", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "failed to record usage event")
		return
	}
	respondJSON(w, http.StatusCreated, event)
}

type purchaseRequest struct {
	CustomerID   string `json:"customer_id"`
	ProductID    string `json:"product_id"`
	PurchaseDate string `json:"purchase_date"`
}

// handleRecordPurchase records a repurchase, closing the customer's open
// event and resetting any outstanding reminder for the pair.
func (s *Service) handleRecordPurchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CustomerID == "" || req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "customer_id and product_id are required")
		return
	}
	purchase, err := time.Parse(dateLayout, req.PurchaseDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "purchase_date must be YYYY-MM-DD")
		return
	}

	if err := s.coordinator.OnPurchase(r.Context(), req.CustomerID, req.ProductID, purchase); err != nil {
		s.logger.ErrorContext(r.Context(), "failed to record purchase", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "failed to record purchase")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleProductPrediction(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	pred, err := s.estimator.PredictForProduct(r.Context(), productID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "product prediction failed", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "prediction failed")
		return
	}
	respondJSON(w, http.StatusOK, pred)
}

func (s *Service) handleCustomerPrediction(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerID")
	productID := chi.URLParam(r, "productID")

	pred, err := s.estimator.PredictForCustomer(r.Context(), customerID, productID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "customer prediction failed", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "prediction failed")
		return
	}
	respondJSON(w, http.StatusOK, pred)
}

func (s *Service) handleProductRecommendation(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")

	pred, err := s.estimator.PredictForProduct(r.Context(), productID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "product prediction failed", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "recommendation failed")
		return
	}
	respondJSON(w, http.StatusOK, s.recommender.Recommend(subscription.FromProduct(pred)))
}

func (s *Service) handleCustomerRecommendation(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerID")
	productID := chi.URLParam(r, "productID")

	product, err := s.estimator.PredictForProduct(r.Context(), productID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "product prediction failed", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "recommendation failed")
		return
	}
	customer, err := s.estimator.PredictForCustomer(r.Context(), customerID, productID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "customer prediction failed", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "recommendation failed")
		return
	}
	respondJSON(w, http.StatusOK, s.recommender.Recommend(subscription.FromCustomer(customer, product)))
}

type scheduleRequest struct {
	AnchorDay     int    `json:"anchor_day,omitempty"`
	Frequency     string `json:"frequency,omitempty"`
	LastCycleDate string `json:"last_cycle_date,omitempty"`
}

// handleScheduleReminder schedules a reminder for the pair. An optional body
// declares the customer's pay cycle, which takes precedence over detection.
func (s *Service) handleScheduleReminder(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerID")
	productID := chi.URLParam(r, "productID")

	var opts []remind.ScheduleOption
	if r.Body != nil && r.ContentLength != 0 {
		var req scheduleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Frequency != "" {
			pattern, err := declaredPattern(req)
			if err != nil {
				respondError(w, http.StatusBadRequest, err.Error())
				return
			}
			opts = append(opts, remind.WithDeclaredPattern(pattern))
		}
	}

	sched, err := s.coordinator.ScheduleReminder(r.Context(), customerID, productID, opts...)
	if err != nil {
		if errors.Is(err, remind.ErrNoPurchaseHistory) {
			respondError(w, http.StatusUnprocessableEntity, "no purchase history for customer and product")
			return
		}
		s.logger.ErrorContext(r.Context(), "scheduling failed",
			slog.String("customer_id", customerID),
			slog.String("product_id", productID),
			slog.Any("error", err),
		)
		respondError(w, http.StatusInternalServerError, "scheduling failed")
		return
	}
	respondJSON(w, http.StatusCreated, sched)
}

// handleGetReminder returns the pair's pending schedule, 404 when idle.
func (s *Service) handleGetReminder(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerID")
	productID := chi.URLParam(r, "productID")

	sched, err := s.schedules.GetPending(r.Context(), customerID, productID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "schedule lookup failed", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "schedule lookup failed")
		return
	}
	if sched == nil {
		respondError(w, http.StatusNotFound, "no pending reminder")
		return
	}
	respondJSON(w, http.StatusOK, sched)
}

type batchRequest struct {
	ProductIDs []string        `json:"product_ids"`
	Cycle      scheduleRequest `json:"cycle,omitempty"`
}

type batchResponse struct {
	Schedules []remind.Schedule `json:"schedules"`
	Scheduled int               `json:"scheduled"`
	Failed    int               `json:"failed"`
	Errors    map[string]string `json:"errors,omitempty"`
}

// handleScheduleBatch schedules reminders for several products at once.
// Failures are reported per product; the response is 207 when partial.
func (s *Service) handleScheduleBatch(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerID")

	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.ProductIDs) == 0 {
		respondError(w, http.StatusBadRequest, "product_ids is required")
		return
	}

	var opts []remind.ScheduleOption
	if req.Cycle.Frequency != "" {
		pattern, err := declaredPattern(req.Cycle)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		opts = append(opts, remind.WithDeclaredPattern(pattern))
	}

	result := s.coordinator.ScheduleBatch(r.Context(), customerID, req.ProductIDs, opts...)

	resp := batchResponse{
		Schedules: result.Schedules,
		Scheduled: result.Scheduled,
		Failed:    result.Failed,
	}
	if len(result.Errors) > 0 {
		resp.Errors = make(map[string]string, len(result.Errors))
		for productID, err := range result.Errors {
			resp.Errors[productID] = err.Error()
		}
	}

	status := http.StatusCreated
	if result.Failed > 0 {
		status = http.StatusMultiStatus
	}
	respondJSON(w, status, resp)
}

type sweepResponse struct {
	Dispatched int               `json:"dispatched"`
	Failed     int               `json:"failed"`
	Errors     map[string]string `json:"errors,omitempty"`
}

// handleSweep dispatches every due reminder. Intended to be hit by the host's
// cron in lieu of an internal scheduler loop.
func (s *Service) handleSweep(w http.ResponseWriter, r *http.Request) {
	dispatched, failures, err := s.coordinator.SweepDue(r.Context())
	if err != nil {
		if errors.Is(err, remind.ErrSweepUnsupported) {
			respondError(w, http.StatusNotImplemented, "schedule store does not support sweeping")
			return
		}
		s.logger.ErrorContext(r.Context(), "sweep failed", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "sweep failed")
		return
	}

	resp := sweepResponse{Dispatched: dispatched, Failed: len(failures)}
	if len(failures) > 0 {
		resp.Errors = make(map[string]string, len(failures))
		for id, err := range failures {
			resp.Errors[id.String()] = err.Error()
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

func declaredPattern(req scheduleRequest) (paycycle.Pattern, error) {
	freq, err := paycycle.ParseFrequency(req.Frequency)
	if err != nil {
		return paycycle.Pattern{}, err
	}
	var lastCycle time.Time
	if req.LastCycleDate != "" {
		lastCycle, err = time.Parse(dateLayout, req.LastCycleDate)
		if err != nil {
			return paycycle.Pattern{}, errors.New("last_cycle_date must be YYYY-MM-DD")
		}
	}
	return paycycle.Declared(req.AnchorDay, freq, lastCycle)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
