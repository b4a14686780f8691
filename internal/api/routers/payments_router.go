package routers

import (
	"net/http"

	"calliope_members/internal/api/handlers/payments"
)

func paymentsRouter() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/payments/checkout", payments.CheckoutHandler)
	mux.HandleFunc("/payments/webhook", payments.ProviderWebhook)
	mux.HandleFunc("/payments/transactions", payments.GetMemberTransactionsHandler)
	mux.HandleFunc("/payments/allocation-options", payments.GetAllocationOptionsHandler)
	mux.HandleFunc("/payments/allocate", payments.AllocateHandler)

	return mux
}
