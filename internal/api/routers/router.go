package routers

import (
	"net/http"
)

func MainRouter() *http.ServeMux {

	mux := http.NewServeMux()

	aRouter := authRouter()
	mux.Handle("/auth/", aRouter)

	mRouter := membersRouter()
	mux.Handle("/members/", mRouter)

	iRouter := invitationsRouter()
	mux.Handle("/invitations/", iRouter)

	pRouter := paymentsRouter()
	mux.Handle("/payments/", pRouter)

	return mux
}
