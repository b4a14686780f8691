package auth

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"calliope_members/internal/models"
	"calliope_members/internal/repositories/sqlconnect"
	"calliope_members/pkg/utils"
)

// FUNC FOR ADMIN LOGIN
func LoginHandler(w http.ResponseWriter, r *http.Request) {
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

	type loginRequest struct {
		AccountID string `json:"account_id"`
		Password  string `json:"password"`
	}

	var req loginRequest

	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if req.AccountID == "" || req.Password == "" {
		utils.WriteError(w, "email or username and password are required", http.StatusBadRequest)
		return
	}

	admin := &models.Admin{}

	query := "SELECT id, first_name, last_name, email, username, password, inactive_status, role FROM admins WHERE username = ? OR email = ?"
	err = db.QueryRow(query, req.AccountID, req.AccountID).Scan(&admin.ID, &admin.FirstName, &admin.LastName, &admin.Email, &admin.Username, &admin.Password, &admin.InactiveStatus, &admin.Role)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "account not found", http.StatusNotFound)
			return
		}
		utils.Logger.Error("database query error")
		utils.WriteError(w, "internal error", http.StatusInternalServerError)
		return
	}

	if admin.InactiveStatus {
		utils.WriteError(w, "account is not active", http.StatusForbidden)
		return
	}

	if err := utils.VerifyPassword(req.Password, admin.Password); err != nil {
		utils.WriteError(w, "incorrect password or account ID", http.StatusForbidden)
		return
	}

	tokenString, err := utils.SignToken(admin.ID, admin.Username, admin.Role)
	if err != nil {
		utils.Logger.Error("could not create login token")
		utils.WriteError(w, "error signing in", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "Bearer",
		Value:    tokenString,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		Expires:  time.Now().Add(24 * time.Hour),
		SameSite: http.SameSiteStrictMode,
	})

	response := map[string]interface{}{
		"status":  "success",
		"message": "login successful",
		"token":   tokenString,
		"admin": map[string]interface{}{
			"id":        admin.ID,
			"firstName": admin.FirstName,
			"lastName":  admin.LastName,
			"email":     admin.Email,
			"username":  admin.Username,
			"role":      admin.Role,
		},
	}

	utils.WriteJSON(w, response)
}

// FUNC FOR LOGOUT
func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "Bearer",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		Expires:  time.Unix(0, 0),
		SameSite: http.SameSiteStrictMode,
	})

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"message": "logged out successfully"}`))
}

// FUNC TO UPDATE ADMIN PASSWORD
func UpdatePasswordHandler(w http.ResponseWriter, r *http.Request) {
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

	idFloat, ok := r.Context().Value(utils.ContextKey("userId")).(float64)
	if !ok {
		utils.WriteError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	adminID := int(idFloat)

	type passwordRequest struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}

	var req passwordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if req.CurrentPassword == "" || req.NewPassword == "" {
		utils.WriteError(w, "current and new password are required", http.StatusBadRequest)
		return
	}
	if len(req.NewPassword) < 8 {
		utils.WriteError(w, "new password must be at least 8 characters", http.StatusBadRequest)
		return
	}

	var stored string
	err := db.QueryRow("SELECT password FROM admins WHERE id = ?", adminID).Scan(&stored)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "account not found", http.StatusNotFound)
			return
		}
		utils.Logger.Error("database query error")
		utils.WriteError(w, "internal error", http.StatusInternalServerError)
		return
	}

	if err := utils.VerifyPassword(req.CurrentPassword, stored); err != nil {
		utils.WriteError(w, "incorrect current password", http.StatusForbidden)
		return
	}

	hashed, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		utils.WriteError(w, "error hashing password", http.StatusInternalServerError)
		return
	}

	if _, err := db.Exec("UPDATE admins SET password = ? WHERE id = ?", hashed, adminID); err != nil {
		utils.Logger.Errorf("failed to update password: %v", err)
		utils.WriteError(w, "failed to update password", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status":  "success",
		"message": "password updated successfully",
	})
}
