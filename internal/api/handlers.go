package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// decodeAndValidate reads a JSON request body into T and runs the struct
// validation tags. Handlers respond 400 on any error it returns.
func decodeAndValidate[T any](r *http.Request) (*T, error) {
	var req T
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, err
	}
	if err := validate.Struct(&req); err != nil {
		return nil, err
	}
	return &req, nil
}
