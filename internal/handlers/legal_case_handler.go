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

type LegalCaseHandler struct {
	Service *services.LegalCaseService
}

func NewLegalCaseHandler(s *services.LegalCaseService) *LegalCaseHandler {
	return &LegalCaseHandler{Service: s}
}

func (h *LegalCaseHandler) OpenCase(w http.ResponseWriter, r *http.Request) {
	var req models.CreateLegalCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	legalCase, err := h.Service.OpenCase(r.Context(), &req)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.JSON(w, http.StatusCreated, legalCase)
}

func (h *LegalCaseHandler) GetCase(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	legalCase, err := h.Service.GetCase(r.Context(), id)
	if err != nil {
		utils.Error(w, http.StatusNotFound, "Case not found")
		return
	}
	utils.JSON(w, http.StatusOK, legalCase)
}

func (h *LegalCaseHandler) ListCases(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")

	cases, err := h.Service.ListCases(r.Context(), status)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, cases)
}

func (h *LegalCaseHandler) RecordRecovery(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	var req struct {
		Amount float64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	legalCase, err := h.Service.RecordRecovery(r.Context(), id, req.Amount)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, legalCase)
}

func (h *LegalCaseHandler) DeleteCase(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	if err := h.Service.DeleteCase(r.Context(), id); err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "Case deleted"})
}
