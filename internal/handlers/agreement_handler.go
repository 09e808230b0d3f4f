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

type AgreementHandler struct {
	Service   *services.AgreementService
	Conflicts *services.BookingConflictService
}

func NewAgreementHandler(s *services.AgreementService, conflicts *services.BookingConflictService) *AgreementHandler {
	return &AgreementHandler{Service: s, Conflicts: conflicts}
}

func (h *AgreementHandler) CreateAgreement(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAgreementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	agreement, err := h.Service.CreateAgreement(r.Context(), &req)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.JSON(w, http.StatusCreated, agreement)
}

func (h *AgreementHandler) GetAgreement(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	agreement, err := h.Service.GetAgreement(r.Context(), id)
	if err != nil {
		utils.Error(w, http.StatusNotFound, "Agreement not found")
		return
	}
	utils.JSON(w, http.StatusOK, agreement)
}

func (h *AgreementHandler) ListAgreements(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")

	agreements, err := h.Service.ListAgreements(r.Context(), status)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, agreements)
}

func (h *AgreementHandler) Activate(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	agreement, err := h.Service.Activate(r.Context(), id)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, agreement)
}

func (h *AgreementHandler) Close(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Status == "" {
		req.Status = models.AgreementStatusClosed
	}

	agreement, err := h.Service.Close(r.Context(), id, req.Status)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, agreement)
}

func (h *AgreementHandler) UpdateAgreement(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	var req models.UpdateAgreementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	agreement, err := h.Service.UpdateAgreement(r.Context(), id, &req)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, agreement)
}

func (h *AgreementHandler) DeleteAgreement(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	if err := h.Service.DeleteAgreement(r.Context(), id); err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "Agreement deleted"})
}

// DetectConflicts reports double bookings on a vehicle without resolving.
// ?exclude=<agreementId> leaves the caller's own agreement out of the report.
func (h *AgreementHandler) DetectConflicts(w http.ResponseWriter, r *http.Request) {
	vehicleID, _ := strconv.Atoi(mux.Vars(r)["vehicleId"])
	excludeID, _ := strconv.Atoi(r.URL.Query().Get("exclude"))

	report, err := h.Conflicts.DetectConflicts(r.Context(), vehicleID, excludeID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, report)
}

// ResolveConflicts cancels all but one active agreement on the vehicle. The
// optional body names the agreement to keep; the newest active one wins when
// the body is empty.
func (h *AgreementHandler) ResolveConflicts(w http.ResponseWriter, r *http.Request) {
	vehicleID, _ := strconv.Atoi(mux.Vars(r)["vehicleId"])

	var req struct {
		KeepAgreementID int `json:"keep_agreement_id"`
	}
	// Body is optional; a missing or empty body means "keep the newest".
	json.NewDecoder(r.Body).Decode(&req)

	result, err := h.Conflicts.ResolveConflicts(r.Context(), vehicleID, req.KeepAgreementID)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, result)
}

// AuditConflicts sweeps the whole fleet.
func (h *AgreementHandler) AuditConflicts(w http.ResponseWriter, r *http.Request) {
	results, err := h.Conflicts.AuditAllVehicles(r.Context())
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"resolved": len(results),
		"results":  results,
	})
}
