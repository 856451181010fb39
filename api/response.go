package api

import (
	"encoding/json"
	"net/http"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (a *Api) jsonResponse(w http.ResponseWriter, v interface{}, code int) {
	jsonResponse(a.log, w, v, code)
}

func (a *Api) jsonError(w http.ResponseWriter, msg string, code int) {
	jsonResponse(a.log, w, &errorResponse{Error: msg}, code)
}

func jsonResponse(log Logger, w http.ResponseWriter, v interface{}, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		log.Errorf("Could not respond with JSON: %v", err)
	}
}
