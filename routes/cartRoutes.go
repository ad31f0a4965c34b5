package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	controller "github.com/cannotCSharp4Real/make-coffee-ph/controllers"
)

// CartRoutes are registered behind the Identity middleware: authenticated
// users and cookie-tracked guests both own carts.
func CartRoutes(router *mux.Router, cc *controller.CartController) {
	router.HandleFunc("/cart", cc.GetCart).Methods(http.MethodGet)
	router.HandleFunc("/cart/add", cc.AddItem).Methods(http.MethodPost)
	router.HandleFunc("/cart/update", cc.UpdateItem).Methods(http.MethodPut)
	router.HandleFunc("/cart/remove/{item_id}", cc.RemoveItem).Methods(http.MethodDelete)
}
