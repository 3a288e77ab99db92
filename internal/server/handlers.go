package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gorilla/mux"

	"jsonserve/internal/shared"
)

// endpointVar is the route variable holding the whole requested path.
const endpointVar = "path"

type API struct {
	Store     *Store
	AccessLog AccessLog
	Metrics   *Metrics
	Logger    log.Logger
}

// ServeEndpoint answers GET and HEAD for any path with the stored document.
func (a *API) ServeEndpoint(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)[endpointVar]
	content, found := a.Store.Get(key)

	status := http.StatusOK
	if found {
		level.Info(a.Logger).Log("msg", "endpoint requested", "path", key, "found", true)
		w.Header().Set("Content-Length", strconv.Itoa(len(content)))
		w.WriteHeader(status)
		_, _ = w.Write(content)
	} else {
		status = http.StatusNotFound
		level.Info(a.Logger).Log("msg", "endpoint not found", "path", key, "found", false)
		w.WriteHeader(status)
	}

	a.Metrics.observeLookup(found)
	entry := AccessEntry{
		RequestID: w.Header().Get(shared.HeaderRequestID),
		Method:    r.Method,
		Path:      key,
		Found:     found,
		Status:    status,
		At:        time.Now(),
	}
	if err := a.AccessLog.Record(r.Context(), entry); err != nil {
		level.Error(a.Logger).Log("msg", "record access", "path", key, "err", err)
	}
}

func (a *API) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	level.Debug(a.Logger).Log("msg", "method not allowed", "method", r.Method, "path", r.URL.Path)
	w.Header().Set("Allow", shared.AllowedMethods)
	w.WriteHeader(http.StatusMethodNotAllowed)
}
