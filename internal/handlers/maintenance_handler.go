package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"rental-backend/internal/models"
	"rental-backend/internal/services"
	"rental-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type MaintenanceHandler struct {
	Service *services.MaintenanceService
}

func NewMaintenanceHandler(s *services.MaintenanceService) *MaintenanceHandler {
	return &MaintenanceHandler{Service: s}
}

func (h *MaintenanceHandler) ScheduleMaintenance(w http.ResponseWriter, r *http.Request) {
	var req models.CreateMaintenanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	record, err := h.Service.ScheduleMaintenance(r.Context(), &req)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.JSON(w, http.StatusCreated, record)
}

func (h *MaintenanceHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	record, err := h.Service.GetRecord(r.Context(), id)
	if err != nil {
		utils.Error(w, http.StatusNotFound, "Maintenance record not found")
		return
	}
	utils.JSON(w, http.StatusOK, record)
}

func (h *MaintenanceHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	vehicleID, _ := strconv.Atoi(r.URL.Query().Get("vehicle_id"))

	records, err := h.Service.ListRecords(r.Context(), vehicleID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, records)
}

func (h *MaintenanceHandler) Start(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	if err := h.Service.Start(r.Context(), id); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "Maintenance started"})
}

func (h *MaintenanceHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	var req struct {
		Cost float64 `json:"cost"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.Service.Complete(r.Context(), id, req.Cost); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "Maintenance completed"})
}

func (h *MaintenanceHandler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	if err := h.Service.DeleteRecord(r.Context(), id); err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "Record deleted"})
}
