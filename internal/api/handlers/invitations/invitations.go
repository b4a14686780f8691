package invitations

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"calliope_members/internal/api/handlers"
	"calliope_members/internal/models"
	"calliope_members/internal/repositories/sqlconnect"
	"calliope_members/internal/services"
	"calliope_members/pkg/utils"
)

// FUNC TO CREATE AN INVITATION
func CreateInvitationHandler(w http.ResponseWriter, r *http.Request) {
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

	type inviteRequest struct {
		InviterID        int    `json:"inviter_id"`
		InviteeEmail     string `json:"invitee_email"`
		InviteeFirstName string `json:"invitee_first_name"`
	}

	var req inviteRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	req.InviteeEmail = handlers.NormalizeEmail(req.InviteeEmail)
	req.InviteeFirstName = strings.TrimSpace(req.InviteeFirstName)

	if req.InviterID < 1 || req.InviteeEmail == "" || req.InviteeFirstName == "" {
		utils.WriteError(w, "inviter_id, invitee_email and invitee_first_name are required", http.StatusBadRequest)
		return
	}
	if err := handlers.ValidateEmail(req.InviteeEmail); err != nil {
		utils.WriteError(w, "invalid email format", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var inviterFirstName, inviterLastName string
	err := db.QueryRowContext(ctx, "SELECT first_name, last_name FROM members WHERE id = ? AND status = ?",
		req.InviterID, models.MemberStatusApproved).Scan(&inviterFirstName, &inviterLastName)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "inviter not found or not an approved member", http.StatusNotFound)
			return
		}
		utils.Logger.Errorf("failed to look up inviter: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	// One open invitation per (inviter, invitee email) pair.
	var exists bool
	err = db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM member_invitations WHERE inviter_id = ? AND LOWER(TRIM(invitee_email)) = ?
		)
	`, req.InviterID, req.InviteeEmail).Scan(&exists)
	if err != nil {
		utils.Logger.Errorf("failed to check duplicate invitation: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if exists {
		utils.WriteError(w, "this person has already been invited by you", http.StatusConflict)
		return
	}

	durationDays, err := strconv.Atoi(os.Getenv("INVITE_TOKEN_EXP_DURATION"))
	if err != nil || durationDays < 1 {
		durationDays = 14
	}
	expiryTime := time.Now().Add(time.Hour * 24 * time.Duration(durationDays))
	expiry := expiryTime.UTC().Format("2006-01-02 15:04:05")

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		utils.ErrorHandler(err, "failed to generate token")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	token := hex.EncodeToString(tokenBytes)
	hashedToken := sha256.Sum256(tokenBytes)
	hashedTokenString := hex.EncodeToString(hashedToken[:])

	sentAt := time.Now().UTC().Format("2006-01-02 15:04:05")
	res, err := db.ExecContext(ctx, `
		INSERT INTO member_invitations (inviter_id, invitee_email, invitee_first_name, status, token, sent_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, req.InviterID, req.InviteeEmail, req.InviteeFirstName, models.InviteStatusSent, hashedTokenString, sentAt, expiry)
	if err != nil {
		utils.Logger.Errorf("failed to insert invitation for %s: %v", req.InviteeEmail, err)
		utils.WriteError(w, "failed to create invitation", http.StatusInternalServerError)
		return
	}

	id, _ := res.LastInsertId()

	inviteLink := fmt.Sprintf("https://calliope-arts.org/join/%s", token)
	inviterName := inviterFirstName + " " + inviterLastName
	go func(email, firstName, link string) {
		if err := utils.SendInvitationEmail(email, firstName, inviterName, link, expiryTime); err != nil {
			utils.Logger.Errorf("failed to send invite email to %s: %v", email, err)
		}
	}(req.InviteeEmail, req.InviteeFirstName, inviteLink)

	response := map[string]interface{}{
		"status":  "success",
		"message": "invitation sent",
		"data": map[string]interface{}{
			"invitation_id": id,
			"invitee_email": req.InviteeEmail,
			"expires_at":    expiry,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(response)
}

// FUNC TO LIST INVITATIONS FOR AN INVITER
func GetInvitationsHandler(w http.ResponseWriter, r *http.Request) {
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

	inviterID, err := strconv.Atoi(r.URL.Query().Get("inviter_id"))
	if err != nil || inviterID < 1 {
		utils.WriteError(w, "invalid inviter_id", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	query := `
		SELECT id, inviter_id, invitee_email, invitee_first_name, invitee_member_id, status, sent_at, registered_at, payed_at, approved_at, expires_at
		FROM member_invitations
		WHERE inviter_id = ?
	`
	args := []interface{}{inviterID}

	if status := r.URL.Query().Get("status"); status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		utils.Logger.Errorf("error fetching invitations: %v", err)
		utils.WriteError(w, "failed to retrieve invitations", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	var invitationsList []models.Invitation
	for rows.Next() {
		var inv models.Invitation
		err = rows.Scan(&inv.ID, &inv.InviterID, &inv.InviteeEmail, &inv.InviteeFirstName,
			&inv.InviteeMemberID, &inv.Status, &inv.SentAt, &inv.RegisteredAt,
			&inv.PayedAt, &inv.ApprovedAt, &inv.ExpiresAt)
		if err != nil {
			utils.Logger.Errorf("error scanning invitation: %v", err)
			utils.WriteError(w, "error scanning invitations", http.StatusInternalServerError)
			return
		}
		invitationsList = append(invitationsList, inv)
	}
	if err := rows.Err(); err != nil {
		utils.WriteError(w, "error reading invitations", http.StatusInternalServerError)
		return
	}

	if len(invitationsList) == 0 {
		utils.WriteJSON(w, map[string]interface{}{
			"status":  "success",
			"message": "no invitations found for this member",
			"data":    []models.Invitation{},
		})
		return
	}

	response := struct {
		Status string              `json:"status"`
		Count  int                 `json:"count"`
		Data   []models.Invitation `json:"data"`
	}{
		Status: "success",
		Count:  len(invitationsList),
		Data:   invitationsList,
	}

	utils.WriteJSON(w, response)
}

// FUNC TO RECONCILE INVITATIONS AGAINST A MEMBER
func ReconcileInvitationHandler(w http.ResponseWriter, r *http.Request) {
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

	type reconcileRequest struct {
		MemberID int    `json:"member_id,omitempty"`
		Email    string `json:"email,omitempty"`
	}

	var req reconcileRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if req.MemberID < 1 && strings.TrimSpace(req.Email) == "" {
		utils.WriteError(w, "member_id or email is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	result, err := services.ReconcileInvitations(ctx, db, services.MemberRef{
		ID:    req.MemberID,
		Email: req.Email,
	})
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.WriteError(w, "member not found", http.StatusNotFound)
			return
		}
		utils.Logger.Errorf("reconciliation failed: %v", err)
		utils.WriteError(w, "reconciliation failed", http.StatusInternalServerError)
		return
	}

	response := struct {
		Status string                    `json:"status"`
		Data   *services.ReconcileResult `json:"data"`
	}{
		Status: "success",
		Data:   result,
	}

	utils.WriteJSON(w, response)
}
