package helper

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator"
)

// RespondJSON writes a success envelope.
func RespondJSON(w http.ResponseWriter, status int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": message,
		"data":    data,
	})
}

// RespondError writes a failure envelope with the given status.
func RespondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": message,
	})
}

// RespondValidation writes a 400 with field-level detail. When err is a
// validator.ValidationErrors the offending fields and their failed rules
// are attached; otherwise only the message is sent.
func RespondValidation(w http.ResponseWriter, message string, err error) {
	payload := map[string]interface{}{
		"success": false,
		"message": message,
	}

	if verrs, ok := err.(validator.ValidationErrors); ok {
		fields := map[string]string{}
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		payload["fields"] = fields
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(payload)
}
