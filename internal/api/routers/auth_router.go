package routers

import (
	"net/http"

	"calliope_members/internal/api/handlers/auth"
)

func authRouter() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/auth/login", auth.LoginHandler)
	mux.HandleFunc("/auth/logout", auth.LogoutHandler)
	mux.HandleFunc("/auth/updatepassword", auth.UpdatePasswordHandler)

	return mux
}
