package web

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kapu/chzzk-recorder-panel/internal/domain"
	"github.com/kapu/chzzk-recorder-panel/internal/render"
)

//go:embed static
var staticFS embed.FS

// Commands are the operator actions behind the panel's forms.
type Commands interface {
	AddChannel(ctx context.Context, channelID string)
	DeleteChannel(ctx context.Context, channelID string)
	SaveConfig(ctx context.Context, section string, values domain.ConfigSection)
	StageConfig(ctx context.Context, section string, values domain.ConfigSection)
	DiscardConfig(ctx context.Context, section string)
	SetLocale(ctx context.Context, code string)
	DismissAlert(ctx context.Context, id string)
	RefreshLogs(ctx context.Context)
	Preview(ctx context.Context, channelID string)
	Notify(ctx context.Context, kind domain.AlertKind, messagePath string)
}

type Server struct {
	addr     string
	doc      *Document
	commands Commands
	metrics  http.Handler
	logger   *zap.Logger
	server   *http.Server
}

// NewServer builds the operator HTTP server. metricsHandler may be nil.
func NewServer(addr string, doc *Document, commands Commands, metricsHandler http.Handler, logger *zap.Logger) *Server {
	s := &Server{
		addr:     addr,
		doc:      doc,
		commands: commands,
		metrics:  metricsHandler,
		logger:   logger,
	}
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/", s.handlePage).Methods(http.MethodGet)
	r.HandleFunc("/fragments/{name}", s.handleFragment).Methods(http.MethodGet)
	r.HandleFunc("/preview", s.handlePreview).Methods(http.MethodGet)

	r.HandleFunc("/channels", s.handleAddChannel).Methods(http.MethodPost)
	r.HandleFunc("/channels/{id}/delete", s.handleDeleteChannel).Methods(http.MethodPost)
	r.HandleFunc("/channels/{id}", s.handleDeleteChannel).Methods(http.MethodDelete)

	r.HandleFunc("/config/{section}", s.handleSaveConfig).Methods(http.MethodPost)
	r.HandleFunc("/config/{section}/draft", s.handleStageConfig).Methods(http.MethodPost)
	r.HandleFunc("/config/{section}/discard", s.handleDiscardConfig).Methods(http.MethodPost)

	r.HandleFunc("/locale", s.handleLocale).Methods(http.MethodPost)
	r.HandleFunc("/alerts/{id}/dismiss", s.handleDismissAlert).Methods(http.MethodPost)
	r.HandleFunc("/logs/refresh", s.handleRefreshLogs).Methods(http.MethodPost)

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics).Methods(http.MethodGet)
	}

	static, err := fs.Sub(staticFS, "static")
	if err == nil {
		r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	}

	return r
}

func (s *Server) Start() error {
	s.logger.Info("Panel HTTP server listening", zap.String("addr", s.addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	page, err := s.doc.Page()
	if err != nil {
		s.logger.Error("Failed to render page", zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	writeHTML(w, string(page))
}

func (s *Server) handleFragment(w http.ResponseWriter, r *http.Request) {
	html, ok := s.doc.Fragment(mux.Vars(r)["name"])
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeHTML(w, string(html))
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	s.commands.Preview(r.Context(), r.URL.Query().Get("channel_id"))
	html, _ := s.doc.Fragment(render.FragmentPreview)
	writeHTML(w, string(html))
}

func (s *Server) handleAddChannel(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	s.commands.AddChannel(r.Context(), r.PostForm.Get("channel_id"))
	redirectHome(w, r)
}

func (s *Server) handleDeleteChannel(w http.ResponseWriter, r *http.Request) {
	s.commands.DeleteChannel(r.Context(), mux.Vars(r)["id"])
	if r.Method == http.MethodDelete {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	redirectHome(w, r)
}

func (s *Server) handleSaveConfig(w http.ResponseWriter, r *http.Request) {
	section, values, ok := s.parseSection(w, r)
	if !ok {
		return
	}
	s.commands.SaveConfig(r.Context(), section, values)
	redirectHome(w, r)
}

func (s *Server) handleStageConfig(w http.ResponseWriter, r *http.Request) {
	section, values, ok := s.parseSection(w, r)
	if !ok {
		return
	}
	s.commands.StageConfig(r.Context(), section, values)
	redirectHome(w, r)
}

func (s *Server) handleDiscardConfig(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["section"]
	if _, ok := domain.LookupSection(name); !ok {
		http.NotFound(w, r)
		return
	}
	s.commands.DiscardConfig(r.Context(), name)
	redirectHome(w, r)
}

// parseSection converts a posted section form into typed option values. An
// invalid value raises an alert and sends the operator back to the page.
func (s *Server) parseSection(w http.ResponseWriter, r *http.Request) (string, domain.ConfigSection, bool) {
	name := mux.Vars(r)["section"]
	spec, ok := domain.LookupSection(name)
	if !ok {
		http.NotFound(w, r)
		return "", nil, false
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return "", nil, false
	}

	values := make(domain.ConfigSection, len(spec.Fields))
	for _, field := range spec.Fields {
		raw, present := r.PostForm[field.Key]
		value := ""
		if present && len(raw) > 0 {
			value = raw[0]
		}
		parsed, err := domain.ParseField(field, value, present)
		if err != nil {
			s.logger.Debug("Rejected config value", zap.String("section", name), zap.Error(err))
			s.commands.Notify(r.Context(), domain.AlertWarning, "messages.invalid_value")
			redirectHome(w, r)
			return "", nil, false
		}
		values[field.Key] = parsed
	}
	return name, values, true
}

func (s *Server) handleLocale(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	s.commands.SetLocale(r.Context(), r.PostForm.Get("language"))
	redirectHome(w, r)
}

func (s *Server) handleDismissAlert(w http.ResponseWriter, r *http.Request) {
	s.commands.DismissAlert(r.Context(), mux.Vars(r)["id"])
	redirectHome(w, r)
}

func (s *Server) handleRefreshLogs(w http.ResponseWriter, r *http.Request) {
	s.commands.RefreshLogs(r.Context())
	redirectHome(w, r)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func writeHTML(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write([]byte(body))
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
