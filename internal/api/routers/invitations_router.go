package routers

import (
	"net/http"

	"calliope_members/internal/api/handlers/invitations"
)

func invitationsRouter() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/invitations/create", invitations.CreateInvitationHandler)
	mux.HandleFunc("/invitations/list", invitations.GetInvitationsHandler)
	mux.HandleFunc("/invitations/reconcile", invitations.ReconcileInvitationHandler)

	return mux
}
