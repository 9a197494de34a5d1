package api

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/seenimoa/investdash/internal/dashboard"
	"github.com/seenimoa/investdash/pkg/models"
	"github.com/seenimoa/investdash/pkg/utils"
)

const (
	msgIncorrectPassword = "Incorrect password"
	msgNoSymbols         = "Please enter at least one stock ticker"
	msgUnknownPeriod     = "Please select a valid time period"
	msgRunInProgress     = "An analysis is already running. Please wait for it to finish."
	msgTotalFailure      = "Could not fetch data for any stocks"
)

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.lookupSession(r); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.renderLogin(w, r, http.StatusOK, "")
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderLogin(w, r, http.StatusBadRequest, "Invalid form submission")
		return
	}
	if !s.login(w, r, r.PostFormValue("password")) {
		s.renderLogin(w, r, http.StatusUnauthorized, msgIncorrectPassword)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleDashboardPage(w http.ResponseWriter, r *http.Request) {
	s.renderDashboard(w, r, http.StatusOK, pageInput{})
}

func (s *Server) handleAnalyzeForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderDashboard(w, r, http.StatusBadRequest, pageInput{err: "Invalid form submission"})
		return
	}
	sess := sessionFrom(r.Context())
	rawTickers := r.PostFormValue("tickers")
	periodLabel := r.PostFormValue("period")

	req, err := models.ParseRequest(rawTickers, periodLabel)
	if err != nil {
		in := pageInput{tickers: rawTickers, err: inputErrorMessage(err)}
		if p, perr := models.PeriodFromLabel(periodLabel); perr == nil {
			in.period = p
		}
		s.renderDashboard(w, r, http.StatusUnprocessableEntity, in)
		return
	}

	if err := s.runAnalysis(r.Context(), sess, req); err != nil {
		s.renderDashboard(w, r, http.StatusConflict, pageInput{tickers: rawTickers, period: req.Period, err: msgRunInProgress})
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// pageInput overrides what the dashboard form shows after a rejected submit.
type pageInput struct {
	tickers string
	period  models.Period
	err     string
}

func (s *Server) renderDashboard(w http.ResponseWriter, r *http.Request, status int, in pageInput) {
	sess := sessionFrom(r.Context())
	st := sess.State()

	view, err := s.buildView(st)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("build dashboard")
		http.Error(w, "failed to build dashboard", http.StatusInternalServerError)
		return
	}

	data := dashboard.PageData{
		Title:        s.title(),
		Tickers:      s.cfg.Dashboard.DefaultTickers,
		Dashboard:    view.Dashboard,
		Warnings:     view.Warnings,
		Error:        in.err,
		TotalFailure: view.TotalFailure,
	}
	period := models.Period1Y
	if st.Request != nil {
		data.Tickers = utils.JoinTickers(st.Request.Symbols)
		period = st.Request.Period
	}
	if in.tickers != "" {
		data.Tickers = in.tickers
	}
	if in.period != "" {
		period = in.period
	}
	data.Periods = dashboard.PeriodOptions(period)

	var buf bytes.Buffer
	if err := s.renderer.RenderDashboard(&buf, data); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("render dashboard")
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	writeHTML(w, status, buf.Bytes())
}

func (s *Server) renderLogin(w http.ResponseWriter, r *http.Request, status int, msg string) {
	var buf bytes.Buffer
	if err := s.renderer.RenderLogin(&buf, dashboard.LoginData{Title: s.title(), Error: msg}); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("render login")
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	writeHTML(w, status, buf.Bytes())
}

func (s *Server) title() string {
	if s.cfg.Dashboard.Title != "" {
		return s.cfg.Dashboard.Title
	}
	return "Investment Research Dashboard"
}

// inputErrorMessage maps request parsing errors to the message shown to users.
func inputErrorMessage(err error) string {
	switch {
	case errors.Is(err, models.ErrNoSymbols):
		return msgNoSymbols
	case errors.Is(err, models.ErrUnknownPeriod):
		return msgUnknownPeriod
	default:
		return err.Error()
	}
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	w.Write(body) //nolint:errcheck
}
