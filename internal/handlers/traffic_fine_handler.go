package handlers

import (
	"net/http"
	"strconv"
	"time"

	"rental-backend/internal/services"
	"rental-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type TrafficFineHandler struct {
	Service *services.TrafficFineService
	Sync    *services.FineSyncService
}

func NewTrafficFineHandler(s *services.TrafficFineService, sync *services.FineSyncService) *TrafficFineHandler {
	return &TrafficFineHandler{Service: s, Sync: sync}
}

func (h *TrafficFineHandler) ListFines(w http.ResponseWriter, r *http.Request) {
	vehicleID, _ := strconv.Atoi(r.URL.Query().Get("vehicle_id"))

	fines, err := h.Service.ListFines(r.Context(), vehicleID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, fines)
}

func (h *TrafficFineHandler) GetFine(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	fine, err := h.Service.GetFine(r.Context(), id)
	if err != nil {
		utils.Error(w, http.StatusNotFound, "Fine not found")
		return
	}
	utils.JSON(w, http.StatusOK, fine)
}

// SyncFines pulls fines from the traffic authority. The lookback window
// defaults to 30 days and is overridable with ?since=YYYY-MM-DD.
func (h *TrafficFineHandler) SyncFines(w http.ResponseWriter, r *http.Request) {
	since := time.Now().AddDate(0, 0, -30)
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			utils.Error(w, http.StatusBadRequest, "since must be YYYY-MM-DD")
			return
		}
		since = parsed
	}

	result, err := h.Sync.SyncFines(r.Context(), since)
	if err != nil {
		utils.Error(w, http.StatusBadGateway, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, result)
}

func (h *TrafficFineHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	fine, err := h.Service.MarkPaid(r.Context(), id)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, fine)
}

func (h *TrafficFineHandler) Dispute(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	if err := h.Service.Dispute(r.Context(), id); err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "Fine disputed"})
}
