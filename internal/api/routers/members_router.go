package routers

import (
	"net/http"

	"calliope_members/internal/api/handlers/members"
)

func membersRouter() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/members/register", members.RegisterMemberHandler)
	mux.HandleFunc("/members/list", members.GetAllMembersHandler)
	mux.HandleFunc("/members/{id}", members.GetMemberHandler)
	mux.HandleFunc("/members/{id}/status", members.UpdateMemberStatusHandler)

	return mux
}
