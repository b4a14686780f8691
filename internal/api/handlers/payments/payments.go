package payments

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"calliope_members/internal/models"
	"calliope_members/internal/repositories/sqlconnect"
	"calliope_members/internal/services"
	"calliope_members/pkg/utils"

	"github.com/shopspring/decimal"
)

// FUNC TO START A DUES CHECKOUT
func CheckoutHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	type checkoutRequest struct {
		MemberID int    `json:"member_id"`
		Amount   int    `json:"amount"`
		Purpose  string `json:"purpose"`
	}

	var req checkoutRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if req.Amount <= 0 {
		utils.WriteError(w, "amount must be greater than 0", http.StatusBadRequest)
		return
	}

	var email string
	err := db.QueryRow("SELECT email FROM members WHERE id = ?", req.MemberID).Scan(&email)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "member not found", http.StatusNotFound)
			return
		}
		utils.Logger.Errorf("failed to look up member: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	checkout, err := services.NewCheckoutClient()
	if err != nil {
		utils.WriteError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	amountCents := req.Amount * 100
	reference := services.GenerateReference("CAL")

	form := map[string]interface{}{
		"email":     email,
		"amount":    amountCents,
		"reference": reference,
		"metadata": map[string]interface{}{
			"member_id": req.MemberID,
			"purpose":   req.Purpose,
		},
	}

	res, err := checkout.InitializeCheckout(form)
	if err != nil {
		utils.Logger.Errorf("checkout initialization failed for member %d: %v", req.MemberID, err)
		utils.WriteError(w, fmt.Sprintf("failed to initialize checkout: %v", err), http.StatusBadRequest)
		return
	}

	utils.WriteJSON(w, res)
}

// ProviderWebhook handles payment notifications from the checkout provider.
func ProviderWebhook(w http.ResponseWriter, r *http.Request) {
	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		utils.WriteError(w, "failed to read request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	sig := r.Header.Get("X-Provider-Signature")
	if !utils.VerifyWebhookSignature(sig, body) {
		utils.Logger.Warn("Invalid webhook signature")
		utils.WriteError(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	var payload struct {
		Event string `json:"event"`
		Data  struct {
			Reference string                 `json:"reference"`
			Amount    int                    `json:"amount"`
			Metadata  map[string]interface{} `json:"metadata"`
			Status    string                 `json:"status"`
		} `json:"data"`
	}

	if err := json.Unmarshal(body, &payload); err != nil {
		utils.WriteError(w, "invalid payload", http.StatusBadRequest)
		return
	}

	if payload.Event != "charge.success" || payload.Data.Status != "success" {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ignored"))
		return
	}

	reference := payload.Data.Reference
	amount := decimal.NewFromInt(int64(payload.Data.Amount)).Div(decimal.NewFromInt(100))

	var memberID int
	switch v := payload.Data.Metadata["member_id"].(type) {
	case float64:
		memberID = int(v)
	case int:
		memberID = v
	case string:
		fmt.Sscanf(v, "%d", &memberID)
	default:
		utils.Logger.Errorf("member ID not found in metadata or invalid type, reference %s", reference)
		utils.WriteError(w, "invalid metadata", http.StatusBadRequest)
		return
	}

	var exists int
	err = db.QueryRow("SELECT COUNT(*) FROM payment_transactions WHERE reference = ?", reference).Scan(&exists)
	if err != nil {
		utils.Logger.Errorf("failed to check duplicate transaction %s: %v", reference, err)
		utils.WriteError(w, "database error", http.StatusInternalServerError)
		return
	}
	if exists > 0 {
		utils.Logger.Infof("Duplicate transaction ignored, reference %s", reference)
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
		return
	}

	today := time.Now().Format("2006-01-02")

	tx, err := db.Begin()
	if err != nil {
		utils.Logger.Errorf("failed to start transaction: %v", err)
		utils.WriteError(w, "failed to start transaction", http.StatusInternalServerError)
		return
	}

	_, err = tx.Exec(`
	INSERT INTO payment_transactions (member_id, amount, status, reference, allocated_amount)
	VALUES (?, ?, ?, ?, 0)`,
		memberID, amount, models.TransactionCompleted, reference)
	if err != nil {
		tx.Rollback()
		utils.Logger.Errorf("failed to record transaction %s: %v", reference, err)
		utils.WriteError(w, "failed to record transaction", http.StatusInternalServerError)
		return
	}

	_, err = tx.Exec("UPDATE members SET payment_status = ?, last_payment_date = ? WHERE id = ?",
		models.PaymentStatusPaid, today, memberID)
	if err != nil {
		tx.Rollback()
		utils.Logger.Errorf("failed to update member %d: %v", memberID, err)
		utils.WriteError(w, "failed to update member", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit(); err != nil {
		utils.Logger.Errorf("failed to commit transaction %s: %v", reference, err)
		utils.WriteError(w, "failed to process payment", http.StatusInternalServerError)
		return
	}

	// A payment is a reconciliation trigger: invitations waiting on this
	// member move to 'payed'.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := services.ReconcileInvitations(ctx, db, services.MemberRef{ID: memberID}); err != nil {
		utils.Logger.Errorf("post-payment reconciliation failed for member %d: %v", memberID, err)
	}

	utils.Logger.Infof("Payment processed, reference %s, member %d, amount %s", reference, memberID, amount.StringFixed(2))

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// FUNC TO GET A MEMBER'S PAYMENT TRANSACTIONS
func GetMemberTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.WriteError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	memberID, err := strconv.Atoi(r.URL.Query().Get("member_id"))
	if err != nil || memberID < 1 {
		utils.WriteError(w, "invalid member_id", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	page, limit := utils.GetPaginationParams(r)
	offset := (page - 1) * limit

	query := `
		SELECT id, member_id, amount, status, reference, allocated_amount, allocation_type, allocation_years, allocation_date, created_at
		FROM payment_transactions
		WHERE member_id = ?
	`
	args := []interface{}{memberID}

	query = utils.AddSorting(r, query)

	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		utils.Logger.Errorf("error fetching transactions: %v", err)
		utils.WriteError(w, "error fetching transactions", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	var transactions []models.PaymentTransaction
	for rows.Next() {
		var t models.PaymentTransaction
		err = rows.Scan(&t.ID, &t.MemberID, &t.Amount, &t.Status, &t.Reference,
			&t.AllocatedAmount, &t.AllocationType, &t.AllocationYears, &t.AllocationDate, &t.CreatedAt)
		if err != nil {
			utils.Logger.Errorf("error scanning transaction: %v", err)
			utils.WriteError(w, "error fetching transactions", http.StatusInternalServerError)
			return
		}
		transactions = append(transactions, t)
	}

	if len(transactions) == 0 {
		utils.WriteJSON(w, map[string]interface{}{
			"status":  "success",
			"message": "no transactions found for this member",
			"data":    []models.PaymentTransaction{},
		})
		return
	}

	response := struct {
		Status   string                      `json:"status"`
		Count    int                         `json:"count"`
		Page     int                         `json:"page"`
		PageSize int                         `json:"page_size"`
		Data     []models.PaymentTransaction `json:"data"`
	}{
		Status:   "success",
		Count:    len(transactions),
		Page:     page,
		PageSize: limit,
		Data:     transactions,
	}

	utils.WriteJSON(w, response)
}

// FUNC TO GET ALLOCATION OPTIONS FOR A MEMBER
func GetAllocationOptionsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.WriteError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	memberID, err := strconv.Atoi(r.URL.Query().Get("member_id"))
	if err != nil || memberID < 1 {
		utils.WriteError(w, "invalid member_id", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	options, err := services.GetAllocationOptions(ctx, db, memberID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.WriteError(w, "member not found", http.StatusNotFound)
			return
		}
		utils.Logger.Errorf("failed to compute allocation options: %v", err)
		utils.WriteError(w, "failed to compute allocation options", http.StatusInternalServerError)
		return
	}

	response := struct {
		Status string                      `json:"status"`
		Data   *services.AllocationOptions `json:"data"`
	}{
		Status: "success",
		Data:   options,
	}

	utils.WriteJSON(w, response)
}

// FUNC TO ALLOCATE A MEMBER'S UNALLOCATED BALANCE (ADMIN)
func AllocateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	type allocateRequest struct {
		MemberID        int    `json:"member_id"`
		AllocationType  string `json:"allocation_type"`
		AllocationYears int    `json:"allocation_years,omitempty"`
	}

	var req allocateRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if req.MemberID < 1 {
		utils.WriteError(w, "member_id is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	result, err := services.Allocate(ctx, db, req.MemberID, req.AllocationType, req.AllocationYears)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			utils.WriteError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, services.ErrNotFound):
			utils.WriteError(w, "member not found", http.StatusNotFound)
		case errors.Is(err, services.ErrInsufficientBalance):
			utils.WriteError(w, err.Error(), http.StatusConflict)
		case errors.Is(err, services.ErrAllocationIncomplete):
			utils.WriteError(w, err.Error(), http.StatusConflict)
		default:
			utils.Logger.Errorf("allocation failed for member %d: %v", req.MemberID, err)
			utils.WriteError(w, "allocation failed", http.StatusInternalServerError)
		}
		return
	}

	switch result.Type {
	case models.AllocationMembershipYears:
		services.TriggerAutomation(db, services.EventMembershipRenewed, req.MemberID)
	case models.AllocationSponsorDonation:
		services.TriggerAutomation(db, services.EventSponsorTaxReceipt, req.MemberID)
	}

	response := struct {
		Status     string                     `json:"status"`
		Allocation *services.AllocationResult `json:"allocation"`
	}{
		Status:     "success",
		Allocation: result,
	}

	utils.WriteJSON(w, response)
}
