package api

import (
	"encoding/json"
	"net/http"
)

func (a *Api) handleGetStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := a.device.Status()
		a.jsonResponse(w, &status, http.StatusOK)
	}
}

type patchDeviceOp struct {
	Op string `json:"op"`
}

type patchDeviceRequest []patchDeviceOp

// handlePatchDevice applies a list of operations such as
// [{"op":"provision"}] or [{"op":"reboot"}].
func (a *Api) handlePatchDevice() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := patchDeviceRequest{}
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			a.jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}

		for _, op := range req {
			switch op.Op {
			case "provision":
				a.device.RequestProvisioning()
			case "reboot":
				err := a.device.Reboot()
				if err != nil {
					a.log.Errorf("Could not reboot: %v", err)
					a.jsonError(w, "Could not reboot", http.StatusInternalServerError)
					return
				}
			default:
				a.jsonError(w, "Unknown operation "+op.Op, http.StatusBadRequest)
				return
			}
		}

		status := a.device.Status()
		a.jsonResponse(w, &status, http.StatusOK)
	}
}
