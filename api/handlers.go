package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/hlog"

	"github.com/seenimoa/investdash/pkg/models"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoginRequest is the body for POST /api/v1/login.
type LoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// AnalyzeRequest is the body for POST /api/v1/analyze.
type AnalyzeRequest struct {
	Tickers string `json:"tickers"`
	Period  string `json:"period" validate:"omitempty,oneof='1 Year' '2 Years' '3 Years' '5 Years' 'Year-to-Date'"`
}

func (s *Server) handleLoginJSON(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "password is required")
		return
	}
	if !s.login(w, r, req.Password) {
		writeError(w, http.StatusUnauthorized, msgIncorrectPassword)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: map[string]bool{"unlocked": true}})
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	view, err := s.buildView(sessionFrom(r.Context()).State())
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("build dashboard")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: view})
}

func (s *Server) handleAnalyzeJSON(w http.ResponseWriter, r *http.Request) {
	var body AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(body); err != nil {
		writeError(w, http.StatusUnprocessableEntity, msgUnknownPeriod)
		return
	}
	if body.Period == "" {
		body.Period = models.Period1Y.Label()
	}

	req, err := models.ParseRequest(body.Tickers, body.Period)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, inputErrorMessage(err))
		return
	}

	sess := sessionFrom(r.Context())
	if err := s.runAnalysis(r.Context(), sess, req); err != nil {
		if errors.Is(err, errRunInProgress) {
			writeError(w, http.StatusConflict, msgRunInProgress)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	view, err := s.buildView(sess.State())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := APIResponse{Success: !view.TotalFailure, Data: view}
	if view.TotalFailure {
		resp.Error = msgTotalFailure
	}
	writeJSON(w, http.StatusOK, resp)
}
