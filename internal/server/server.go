// Package server exposes the read-only admin report and the externally
// triggered sweep route. Both are thin: the sweep delegates to the same
// dispatcher-guarded path the timers use.
package server

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/go-chi/chi"
	"github.com/rs/zerolog"

	"github.com/lifeline-bot/companion/internal/format"
	"github.com/lifeline-bot/companion/internal/models"
	"github.com/lifeline-bot/companion/internal/repository"
	"github.com/lifeline-bot/companion/internal/scheduler"
)

type Server struct {
	store       repository.Store
	engine      *scheduler.Engine
	clk         clock.Clock
	loc         *time.Location
	sweepSecret string
	srv         *http.Server
	log         zerolog.Logger
}

func New(addr string, store repository.Store, engine *scheduler.Engine, clk clock.Clock, loc *time.Location, sweepSecret string, log zerolog.Logger) *Server {
	s := &Server{
		store:       store,
		engine:      engine,
		clk:         clk,
		loc:         loc,
		sweepSecret: sweepSecret,
		log:         log.With().Str("comp", "http").Logger(),
	}

	router := chi.NewRouter()
	router.Get("/admin", s.handleAdmin)
	router.Get("/check-reminders", s.handleSweep)

	s.srv = &http.Server{Addr: addr, Handler: router}
	return s
}

// Start serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(shutdownCtx)
	}()

	s.log.Info().Str("addr", s.srv.Addr).Msg("http server listening")
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// handleSweep lets an external cron service trigger "dispatch everything due
// now". Guarded by a shared secret like the original deployment.
func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	if s.sweepSecret == "" || r.URL.Query().Get("key") != s.sweepSecret {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	sent, err := s.engine.SweepDue(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("sweep failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	fmt.Fprintf(w, "Checked reminders — sent %d message(s)", sent)
}

var adminTemplate = template.Must(template.New("admin").Parse(`<!DOCTYPE html>
<html>
<head>
  <title>Lifeline Reminders Admin</title>
  <style>
    body { font-family: Arial, sans-serif; padding: 20px; background: #f5f5f5; }
    h1 { color: #2c3e50; }
    table { border-collapse: collapse; width: 100%; background: white; }
    th, td { padding: 10px; text-align: left; border-bottom: 1px solid #eee; }
    tr:hover { background: #f9f9f9; }
    .future { color: #27ae60; }
    .past { color: #95a5a6; }
  </style>
</head>
<body>
  <h1>📋 Lifeline Reminders Admin</h1>
  <table>
    <tr><th>ID</th><th>Task</th><th>When</th><th>Recipient</th><th>Recurring</th><th>Status</th></tr>
    {{range .Rows}}
    <tr>
      <td>{{.ID}}</td>
      <td><strong>{{.Task}}</strong></td>
      <td>{{.When}}</td>
      <td>{{.Recipient}}</td>
      <td>{{.Recurrence}}</td>
      <td class="{{.Class}}">{{.Status}}</td>
    </tr>
    {{end}}
  </table>
  <p>📊 Total: {{len .Rows}} reminders</p>
</body>
</html>`))

type adminRow struct {
	ID         string
	Task       string
	When       string
	Recipient  string
	Recurrence string
	Status     string
	Class      string
}

func (s *Server) handleAdmin(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.ListAll(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("admin listing failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	now := s.clk.Now()
	rows := make([]adminRow, 0, len(records))
	for _, rec := range records {
		row := adminRow{
			ID:         rec.ID,
			Task:       rec.Task,
			When:       format.When(rec.FireAt, s.loc),
			Recipient:  rec.Recipient,
			Recurrence: format.Recurrence(rec.Recurrence),
		}
		if rec.State == models.StatePending && rec.FireAt.After(now) {
			row.Status, row.Class = "⏰ Future", "future"
		} else {
			row.Status, row.Class = "✅ Sent", "past"
		}
		rows = append(rows, row)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := adminTemplate.Execute(w, struct{ Rows []adminRow }{rows}); err != nil {
		s.log.Error().Err(err).Msg("admin render failed")
	}
}
