package api

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/seenimoa/investdash/internal/dashboard"
	"github.com/seenimoa/investdash/internal/fetcher"
	"github.com/seenimoa/investdash/internal/gate"
	"github.com/seenimoa/investdash/internal/metrics"
	"github.com/seenimoa/investdash/pkg/models"
)

// errRunInProgress is returned when a session already has a run in flight.
var errRunInProgress = errors.New("an analysis is already running for this session")

// runAnalysis fetches every symbol of req for sess, streams progress to the
// session's WebSocket clients and stores the outcome on the session. The run
// is detached from ctx cancellation so a dropped request still completes and
// leaves results for the next page load.
func (s *Server) runAnalysis(ctx context.Context, sess *gate.Session, req models.AnalysisRequest) error {
	if !sess.TryBeginRun() {
		return errRunInProgress
	}
	defer sess.EndRun()

	log := zerolog.Ctx(ctx).With().Strs("symbols", req.Symbols).Str("period", string(req.Period)).Logger()
	log.Info().Msg("analysis started")
	start := time.Now()

	res := s.fetcher.FetchAll(context.WithoutCancel(ctx), req, func(ev fetcher.Event) {
		s.wsHub.Publish(sess.ID, WSMessage{Type: "fetch", Data: ev})
	})
	sess.Complete(req, res.Snapshots, res.Warnings)

	result := metrics.ResultSuccess
	switch {
	case res.TotalFailure():
		result = metrics.ResultFailure
	case len(res.Warnings) > 0:
		result = metrics.ResultPartial
	}
	s.metrics.RecordRun(result)

	log.Info().
		Str("result", result).
		Int("succeeded", res.Snapshots.Len()).
		Int("warnings", len(res.Warnings)).
		Dur("elapsed", time.Since(start)).
		Msg("analysis finished")
	return nil
}

// AnalysisView is the JSON form of a session's latest results.
type AnalysisView struct {
	Request      *models.AnalysisRequest `json:"request,omitempty"`
	Running      bool                    `json:"running"`
	Warnings     []string                `json:"warnings"`
	TotalFailure bool                    `json:"total_failure"`
	Dashboard    *dashboard.Dashboard    `json:"dashboard,omitempty"`
}

// buildView assembles the dashboard for the session's stored results. It
// returns a nil dashboard before the first run and after a total failure.
func (s *Server) buildView(st gate.State) (AnalysisView, error) {
	v := AnalysisView{
		Request:      st.Request,
		Running:      st.Running,
		Warnings:     st.Warnings,
		TotalFailure: st.TotalFailure,
	}
	if v.Warnings == nil {
		v.Warnings = []string{}
	}
	if !st.HasResults() || st.TotalFailure {
		return v, nil
	}

	opts := dashboard.DefaultOptions()
	opts.GridColumns = s.cfg.Dashboard.GridColumns
	opts.Now = st.CompletedAt
	d, err := dashboard.Build(*st.Request, st.Snapshots, opts)
	if err != nil {
		return v, err
	}
	v.Dashboard = d
	return v, nil
}
