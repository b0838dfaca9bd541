package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/whisker/pkg/model"
	"github.com/m-mizutani/whisker/pkg/usecase/session"
	"github.com/m-mizutani/whisker/pkg/utils/logging"
)

const maxRequestBody = 4 << 10

// StateView is the JSON form of a session state
type StateView struct {
	Phase           session.Phase        `json:"phase"`
	Loading         bool                 `json:"loading"`
	CatalogReady    bool                 `json:"catalog_ready"`
	CatalogError    string               `json:"catalog_error,omitempty"`
	AvailableBreeds int                  `json:"available_breeds"`
	Bans            []string             `json:"bans"`
	Current         *model.DisplayRecord `json:"current"`
	Error           string               `json:"error,omitempty"`
}

// NewStateView converts st for the browser
func NewStateView(st session.State) *StateView {
	return &StateView{
		Phase:           st.Phase,
		Loading:         st.Loading,
		CatalogReady:    st.CatalogReady,
		CatalogError:    model.UserMessage(st.CatalogErr),
		AvailableBreeds: len(st.Catalog),
		Bans:            st.Bans.Tokens(),
		Current:         st.Current,
		Error:           model.UserMessage(st.Err),
	}
}

type banRequest struct {
	Token string `json:"token"`
}

// JSON writes v with the given status
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Default().Debug("failed to encode response", "error", err)
	}
}

// Error writes a JSON error response
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

func writeCommandError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, session.ErrBusy):
		Error(w, http.StatusConflict, session.ErrBusy.Error())
	case errors.Is(err, model.ErrCatalogNotReady):
		Error(w, http.StatusServiceUnavailable, model.UserMessage(err))
	case errors.Is(err, model.ErrEmptyToken):
		Error(w, http.StatusBadRequest, model.ErrEmptyToken.Error())
	case errors.Is(err, session.ErrStopped):
		Error(w, http.StatusServiceUnavailable, "session expired, please reload")
	default:
		logging.From(r.Context()).Error("Session command failed", "error", err)
		Error(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) getState(w http.ResponseWriter, r *http.Request) {
	ctrl := controllerFrom(r.Context())
	JSON(w, http.StatusOK, NewStateView(ctrl.Snapshot()))
}

func (s *Server) postDiscover(w http.ResponseWriter, r *http.Request) {
	ctrl := controllerFrom(r.Context())
	if err := ctrl.Discover(r.Context()); err != nil {
		writeCommandError(w, r, err)
		return
	}
	JSON(w, http.StatusAccepted, NewStateView(ctrl.Snapshot()))
}

func (s *Server) postDismiss(w http.ResponseWriter, r *http.Request) {
	ctrl := controllerFrom(r.Context())
	if err := ctrl.Dismiss(r.Context()); err != nil {
		writeCommandError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, NewStateView(ctrl.Snapshot()))
}

func (s *Server) postBan(w http.ResponseWriter, r *http.Request) {
	var req banRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctrl := controllerFrom(r.Context())
	if err := ctrl.Ban(r.Context(), req.Token); err != nil {
		writeCommandError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, NewStateView(ctrl.Snapshot()))
}

func (s *Server) deleteBan(w http.ResponseWriter, r *http.Request) {
	// chi matches on RawPath when it is set, so only then is the param still escaped
	token := chi.URLParam(r, "token")
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(token)
		if err != nil {
			Error(w, http.StatusBadRequest, "invalid token")
			return
		}
		token = unescaped
	}

	ctrl := controllerFrom(r.Context())
	if err := ctrl.Unban(r.Context(), token); err != nil {
		writeCommandError(w, r, err)
		return
	}
	JSON(w, http.StatusOK, NewStateView(ctrl.Snapshot()))
}
