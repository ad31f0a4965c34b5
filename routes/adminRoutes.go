package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	controller "github.com/cannotCSharp4Real/make-coffee-ph/controllers"
)

func AdminRoutes(router *mux.Router, ad *controller.AdminController) {
	router.HandleFunc("/admin/users", ad.GetUsers).Methods(http.MethodGet)
	router.HandleFunc("/admin/users/{user_id}/role", ad.UpdateUserRole).Methods(http.MethodPut)
	router.HandleFunc("/admin/users/{user_id}", ad.DeleteUser).Methods(http.MethodDelete)
	router.HandleFunc("/admin/sales", ad.GetSalesReport).Methods(http.MethodGet)
}
