package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	controller "github.com/cannotCSharp4Real/make-coffee-ph/controllers"
)

// ProductPublicRoutes carries the read-only catalog surface, including the
// SSE change stream. Registered before the catch-all {product_id} route so
// /products/events resolves to the stream.
func ProductPublicRoutes(router *mux.Router, pc *controller.ProductController) {
	router.HandleFunc("/products/events", pc.Events).Methods(http.MethodGet)
	router.HandleFunc("/products", pc.GetProducts).Methods(http.MethodGet)
	router.HandleFunc("/products/{product_id}", pc.GetProduct).Methods(http.MethodGet)
}

// ProductAdminRoutes carries the catalog mutations.
func ProductAdminRoutes(router *mux.Router, pc *controller.ProductController) {
	router.HandleFunc("/products", pc.CreateProduct).Methods(http.MethodPost)
	router.HandleFunc("/products/{product_id}", pc.UpdateProduct).Methods(http.MethodPut)
	router.HandleFunc("/products/{product_id}", pc.DeleteProduct).Methods(http.MethodDelete)
}
