package api

import (
	"net"
	"net/http"

	"github.com/go-errors/errors"
	"github.com/gorilla/mux"
	"github.com/the-lightning-land/provisiond/agent"
)

// Device is what the api needs from the running agent.
type Device interface {
	Status() agent.Status
	Reboot() error
	RequestProvisioning()
}

type Config struct {
	Device Device
	// Link is served on /api/v1/provision when set.
	Link *WebsocketLink
	Log  Logger
}

type Api struct {
	device Device
	link   *WebsocketLink
	router *mux.Router
	log    Logger
}

func New(config *Config) *Api {
	api := &Api{
		device: config.Device,
		link:   config.Link,
		router: mux.NewRouter(),
	}

	if config.Log != nil {
		api.log = config.Log
	} else {
		api.log = noopLogger{}
	}

	api.router.Handle("/api/v1/status", api.handleGetStatus()).Methods(http.MethodGet)
	api.router.Handle("/api/v1/device", api.handlePatchDevice()).Methods(http.MethodPatch)

	if api.link != nil {
		api.router.Handle("/api/v1/provision", api.link).Methods(http.MethodGet)
	}

	return api
}

func (a *Api) Handler() http.Handler {
	return a.router
}

func (a *Api) Serve(l net.Listener) error {
	err := http.Serve(l, a.router)
	if err != nil {
		return errors.Errorf("unable to serve api: %v", err)
	}

	return nil
}
