package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	controller "github.com/cannotCSharp4Real/make-coffee-ph/controllers"
)

// OrderPublicRoutes carries the WebSocket status stream; it authenticates
// itself via a query-string token, so it sits outside the header middleware.
func OrderPublicRoutes(router *mux.Router, oc *controller.OrderController) {
	router.HandleFunc("/orders/events", oc.Events).Methods(http.MethodGet)
}

func OrderProtectedRoutes(router *mux.Router, oc *controller.OrderController) {
	router.HandleFunc("/orders", oc.CreateOrder).Methods(http.MethodPost)
	router.HandleFunc("/orders/my-orders", oc.GetMyOrders).Methods(http.MethodGet)
	router.HandleFunc("/orders/{order_id}/cancel", oc.CancelOrder).Methods(http.MethodPost)
}

func OrderAdminRoutes(router *mux.Router, oc *controller.OrderController) {
	router.HandleFunc("/orders/all", oc.GetAllOrders).Methods(http.MethodGet)
	router.HandleFunc("/orders/{order_id}/status", oc.UpdateStatus).Methods(http.MethodPut)
}
