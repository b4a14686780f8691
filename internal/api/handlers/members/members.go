package members

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"calliope_members/internal/api/handlers"
	"calliope_members/internal/models"
	"calliope_members/internal/repositories/sqlconnect"
	"calliope_members/internal/services"
	"calliope_members/pkg/utils"
)

// FUNC TO REGISTER A NEW MEMBER
func RegisterMemberHandler(w http.ResponseWriter, r *http.Request) {
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

	type registerRequest struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Email     string `json:"email"`
		InviterID int    `json:"inviter_id,omitempty"`
	}

	var req registerRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid or unexpected fields in body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = handlers.NormalizeEmail(req.Email)

	if err := handlers.CheckBlankFields(req); err != nil {
		utils.WriteError(w, "first name, last name and email are required", http.StatusBadRequest)
		return
	}
	if err := handlers.ValidateEmail(req.Email); err != nil {
		utils.WriteError(w, "invalid email format", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var inviterID interface{}
	if req.InviterID > 0 {
		inviterID = req.InviterID
	}

	query := `INSERT INTO members (first_name, last_name, email, status, payment_status, membership_type, inviter_id) VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := db.ExecContext(ctx, query,
		req.FirstName, req.LastName, req.Email,
		models.MemberStatusPending, models.PaymentStatusUnpaid, models.MembershipFreeTrial, inviterID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "Duplicate entry") {
			utils.WriteError(w, "a member with this email already exists", http.StatusConflict)
			return
		}
		utils.Logger.Errorf("failed to insert member: %v", err)
		utils.WriteError(w, "error registering member", http.StatusInternalServerError)
		return
	}

	id, err := res.LastInsertId()
	if err != nil {
		utils.Logger.Errorf("failed to get last insert ID: %v", err)
		utils.WriteError(w, "error registering member", http.StatusInternalServerError)
		return
	}
	memberID := int(id)

	// Registration is a reconciliation trigger: link any invitation that was
	// waiting for this email.
	reconciled, err := services.ReconcileInvitations(ctx, db, services.MemberRef{ID: memberID})
	if err != nil {
		utils.Logger.Errorf("post-registration reconciliation failed for member %d: %v", memberID, err)
	}

	services.TriggerAutomation(db, services.EventMemberRegistered, memberID)

	linked := 0
	if reconciled != nil {
		linked = reconciled.UpdatedCount
	}

	response := map[string]interface{}{
		"status":  "success",
		"message": "member registered successfully",
		"data": map[string]interface{}{
			"member_id":          memberID,
			"status":             models.MemberStatusPending,
			"linked_invitations": linked,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(response)
}

// FUNC TO GET ONE MEMBER BY ID
func GetMemberHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.WriteError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	idStr := r.PathValue("id")
	memberID, err := strconv.Atoi(idStr)
	if err != nil {
		utils.WriteError(w, "invalid member ID", http.StatusBadRequest)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var member models.Member
	err = db.QueryRowContext(ctx,
		`SELECT id, first_name, last_name, email, status, payment_status, membership_type, membership_start_date, membership_end_date, inviter_id, payment_amount, last_payment_date, created_at FROM members WHERE id = ?`,
		memberID,
	).Scan(&member.ID, &member.FirstName, &member.LastName, &member.Email, &member.Status,
		&member.PaymentStatus, &member.MembershipType, &member.MembershipStartDate,
		&member.MembershipEndDate, &member.InviterID, &member.PaymentAmount,
		&member.LastPaymentDate, &member.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "member not found", http.StatusNotFound)
			return
		}
		utils.Logger.Errorf("error fetching member: %v", err)
		utils.WriteError(w, "error fetching member", http.StatusInternalServerError)
		return
	}

	response := struct {
		Status string        `json:"status"`
		Data   models.Member `json:"data"`
	}{
		Status: "success",
		Data:   member,
	}

	utils.WriteJSON(w, response)
}

// FUNC TO GET ALL MEMBERS (ADMIN, PAGINATED)
func GetAllMembersHandler(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	page, limit := utils.GetPaginationParams(r)
	offset := (page - 1) * limit

	query := `
		SELECT id, first_name, last_name, email, status, payment_status, membership_type, membership_end_date, created_at
		FROM members
	`
	args := []interface{}{}

	if status := r.URL.Query().Get("status"); status != "" {
		if !models.ValidMemberStatuses[status] {
			utils.WriteError(w, "invalid status filter", http.StatusBadRequest)
			return
		}
		query += " WHERE status = ?"
		args = append(args, status)
	}

	query = utils.AddSorting(r, query)

	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		utils.Logger.Errorf("error fetching members: %v", err)
		utils.WriteError(w, "error fetching members", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	var membersList []models.Member
	for rows.Next() {
		var member models.Member
		err = rows.Scan(&member.ID, &member.FirstName, &member.LastName, &member.Email,
			&member.Status, &member.PaymentStatus, &member.MembershipType,
			&member.MembershipEndDate, &member.CreatedAt)
		if err != nil {
			utils.Logger.Errorf("error scanning member: %v", err)
			utils.WriteError(w, "error fetching members", http.StatusInternalServerError)
			return
		}
		membersList = append(membersList, member)
	}

	response := struct {
		Status   string          `json:"status"`
		Count    int             `json:"count"`
		Page     int             `json:"page"`
		PageSize int             `json:"page_size"`
		Data     []models.Member `json:"data"`
	}{
		Status:   "success",
		Count:    len(membersList),
		Page:     page,
		PageSize: limit,
		Data:     membersList,
	}

	utils.WriteJSON(w, response)
}

// FUNC TO UPDATE A MEMBER'S STATUS (ADMIN)
func UpdateMemberStatusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	idStr := r.PathValue("id")
	memberID, err := strconv.Atoi(idStr)
	if err != nil {
		utils.WriteError(w, "invalid member ID", http.StatusBadRequest)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	type statusRequest struct {
		Status string `json:"status"`
	}

	var req statusRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if !models.ValidMemberStatuses[req.Status] {
		utils.WriteError(w, "invalid status: must be pending, approved or rejected", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := db.ExecContext(ctx, `UPDATE members SET status = ? WHERE id = ?`, req.Status, memberID)
	if err != nil {
		utils.Logger.Errorf("failed to update member status: %v", err)
		utils.WriteError(w, "failed to update member status", http.StatusInternalServerError)
		return
	}
	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		var exists bool
		if db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM members WHERE id = ?)`, memberID).Scan(&exists) == nil && !exists {
			utils.WriteError(w, "member not found", http.StatusNotFound)
			return
		}
	}

	// Every status change re-runs reconciliation so invitations referring to
	// this member follow along without a manual fix endpoint.
	reconciled, err := services.ReconcileInvitations(ctx, db, services.MemberRef{ID: memberID})
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.WriteError(w, "member not found", http.StatusNotFound)
			return
		}
		utils.Logger.Errorf("post-status-change reconciliation failed for member %d: %v", memberID, err)
	}

	switch req.Status {
	case models.MemberStatusApproved:
		services.TriggerAutomation(db, services.EventMemberApproved, memberID)
	case models.MemberStatusRejected:
		services.TriggerAutomation(db, services.EventMemberRejected, memberID)
	}

	updated := 0
	if reconciled != nil {
		updated = reconciled.UpdatedCount
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status":  "success",
		"message": "member status updated",
		"data": map[string]interface{}{
			"member_id":              memberID,
			"new_status":             req.Status,
			"invitations_reconciled": updated,
		},
	})
}
