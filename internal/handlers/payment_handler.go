package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"rental-backend/internal/middleware"
	"rental-backend/internal/models"
	"rental-backend/internal/services"
	"rental-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type PaymentHandler struct {
	Service *services.PaymentService
	Reports *services.ReportService
}

func NewPaymentHandler(s *services.PaymentService, reports *services.ReportService) *PaymentHandler {
	return &PaymentHandler{Service: s, Reports: reports}
}

func (h *PaymentHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req models.RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	userID, _ := middleware.GetUserIDFromContext(r.Context())

	result, err := h.Service.RecordPayment(r.Context(), &req, userID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !result.Success {
		utils.JSON(w, http.StatusUnprocessableEntity, result)
		return
	}
	utils.JSON(w, http.StatusCreated, result)
}

// Backfill generates pending rent records for months missed since the last payment.
func (h *PaymentHandler) Backfill(w http.ResponseWriter, r *http.Request) {
	var req models.BackfillPaymentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.Service.GenerateMissingPayments(r.Context(), &req)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !result.Success {
		utils.JSON(w, http.StatusUnprocessableEntity, result)
		return
	}
	utils.JSON(w, http.StatusOK, result)
}

func (h *PaymentHandler) ListByAgreement(w http.ResponseWriter, r *http.Request) {
	agreementID, _ := strconv.Atoi(mux.Vars(r)["agreementId"])

	payments, err := h.Service.Payments.GetByAgreement(r.Context(), agreementID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, payments)
}

// ReceiptPDF streams a payment receipt.
func (h *PaymentHandler) ReceiptPDF(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	pdf, err := h.Reports.GenerateReceiptPDF(r.Context(), id)
	if err != nil {
		utils.Error(w, http.StatusNotFound, err.Error())
		return
	}

	name := fmt.Sprintf("receipt-%d.pdf", id)
	h.Reports.ArchiveReport(r.Context(), name, pdf, "application/pdf")

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Write(pdf)
}

// StatementPDF streams the full payment history of an agreement.
func (h *PaymentHandler) StatementPDF(w http.ResponseWriter, r *http.Request) {
	agreementID, _ := strconv.Atoi(mux.Vars(r)["agreementId"])

	pdf, err := h.Reports.GenerateStatementPDF(r.Context(), agreementID)
	if err != nil {
		utils.Error(w, http.StatusNotFound, err.Error())
		return
	}

	name := fmt.Sprintf("statement-%d.pdf", agreementID)
	h.Reports.ArchiveReport(r.Context(), name, pdf, "application/pdf")

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Write(pdf)
}
