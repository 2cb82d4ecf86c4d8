package server

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"

	"github.com/goliatone/go-qform/components/valuesets"
	"github.com/goliatone/go-qform/pkg/orchestrator"
	"github.com/goliatone/go-qform/pkg/questionnaire"
	"github.com/goliatone/go-qform/pkg/render"
	"github.com/goliatone/go-qform/pkg/renderers/vanilla"
	"github.com/goliatone/go-qform/pkg/session"
)

// Engine builds and renders trees. *orchestrator.Orchestrator satisfies it.
type Engine interface {
	Build(ctx context.Context, req orchestrator.Request) (*questionnaire.Tree, error)
	Render(ctx context.Context, tree *questionnaire.Tree, req orchestrator.Request) ([]byte, error)
	Renderer(name string) (render.Renderer, error)
}

// Server wires the session store and the render pipeline to chi routes.
type Server struct {
	engine  Engine
	store   *session.Store
	catalog *Catalog
	logger  *zap.Logger

	rateLimit    int
	rateWindow   time.Duration
	origins      []string
	maxBody      int64
	valuesets    *valuesets.Component
	valuesetsSet bool
}

// New constructs a Server.
func New(engine Engine, store *session.Store, catalog *Catalog, opts ...Option) (*Server, error) {
	if engine == nil {
		return nil, errors.New("server: engine is required")
	}
	if store == nil {
		return nil, errors.New("server: session store is required")
	}
	if catalog == nil {
		catalog = NewCatalog()
	}
	s := &Server{
		engine:     engine,
		store:      store,
		catalog:    catalog,
		logger:     zap.NewNop(),
		rateLimit:  defaultRequestsPerWindow,
		rateWindow: defaultRateWindow,
		maxBody:    defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if !s.valuesetsSet {
		s.valuesets = valuesets.New(valuesets.WithLogger(s.logger))
	}
	return s, nil
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	if len(s.origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.origins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}
	if s.rateLimit > 0 {
		r.Use(httprate.LimitByIP(s.rateLimit, s.rateWindow))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/questionnaires", s.listQuestionnaires)
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.createSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.showSession)
			r.Post("/", s.postSession)
			r.Delete("/", s.deleteSession)
			r.Get("/response", s.exportResponse)
		})
	})
	r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.FS(vanilla.AssetsFS()))))
	if s.valuesets != nil {
		if _, err := s.valuesets.RegisterRoutes(r, "/"); err != nil {
			s.logger.Error("mount value set search", zap.Error(err))
		}
	}
	return r
}

func (s *Server) listQuestionnaires(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"data": s.catalog.Names()})
}

type createRequest struct {
	Questionnaire string `json:"questionnaire"`
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	name, err := s.questionnaireName(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	def, err := s.catalog.Definition(name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	tree, err := s.engine.Build(r.Context(), orchestrator.Request{Definition: &def})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sess := s.store.Create(name, tree)
	http.Redirect(w, r, sessionPath(sess.ID()), http.StatusSeeOther)
}

func (s *Server) questionnaireName(w http.ResponseWriter, r *http.Request) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	var name string
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var body createRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return "", StatusError{Code: http.StatusBadRequest, Err: err}
		}
		name = body.Questionnaire
	} else {
		if err := r.ParseForm(); err != nil {
			return "", StatusError{Code: http.StatusBadRequest, Err: err}
		}
		name = r.PostForm.Get("questionnaire")
	}
	if strings.TrimSpace(name) == "" {
		return "", StatusError{Code: http.StatusBadRequest, Err: errors.New("server: questionnaire is required")}
	}
	return name, nil
}

func (s *Server) showSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	renderer, err := s.engine.Renderer("")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	query := r.URL.Query()
	var output []byte
	err = sess.Do(func(tree *questionnaire.Tree, formIssues []string) error {
		var renderErr error
		output, renderErr = s.engine.Render(r.Context(), tree, orchestrator.Request{
			ThemeName:    query.Get("theme"),
			ThemeVariant: query.Get("variant"),
			RenderOptions: render.RenderOptions{
				Action:     sessionPath(sess.ID()),
				FormIssues: formIssues,
				Locale:     query.Get("locale"),
			},
		})
		return renderErr
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", renderer.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(output)
}

func (s *Server) postSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	if err := r.ParseForm(); err != nil {
		s.fail(w, r, StatusError{Code: http.StatusBadRequest, Err: err})
		return
	}

	result, err := sess.Apply(r.PostForm)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.logger.Info("session action",
		zap.String("session", sess.ID()),
		zap.String("verb", string(result.Action.Verb)),
		zap.String("target", result.Action.Target),
		zap.Int("invalid", len(result.Invalid)),
	)

	target := sessionPath(sess.ID())
	if result.Completed() {
		target += "/response"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.store.Get(id); err != nil {
		s.fail(w, r, err)
		return
	}
	s.store.Delete(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) exportResponse(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Response())
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := classify(err)
	code := status.StatusCode()
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		writeJSON(w, code, errorBody{Error: http.StatusText(code)})
		return
	}
	writeJSON(w, code, errorBody{Error: status.Error()})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func sessionPath(id string) string {
	return "/sessions/" + url.PathEscape(id)
}
