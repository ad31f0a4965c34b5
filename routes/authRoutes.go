package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	controller "github.com/cannotCSharp4Real/make-coffee-ph/controllers"
)

func AuthPublicRoutes(router *mux.Router, ac *controller.AuthController) {
	router.HandleFunc("/auth/register", ac.Register).Methods(http.MethodPost)
	router.HandleFunc("/auth/login", ac.Login).Methods(http.MethodPost)
}

func AuthProtectedRoutes(router *mux.Router, ac *controller.AuthController) {
	router.HandleFunc("/auth/profile", ac.GetProfile).Methods(http.MethodGet)
}
