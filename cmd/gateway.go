package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/site-advisor/internal/advisor"
	"github.com/sells-group/site-advisor/internal/fetcher"
	"github.com/sells-group/site-advisor/internal/idempotency"
	"github.com/sells-group/site-advisor/internal/model"
	"github.com/sells-group/site-advisor/internal/resilience"
	"github.com/sells-group/site-advisor/internal/view"
)

const maxBodyBytes = 1 << 20

// mountedPage is a page controller with its parameter type erased, so the
// gateway can hold pages of every kind in one map.
type mountedPage interface {
	update(body []byte) (generation uint64, invalid bool, err error)
	state() any
	wait(ctx context.Context) (any, error)
	close()
}

type pageHandle[P, T any] struct {
	c *view.Controller[P, T]
}

func (h pageHandle[P, T]) update(body []byte) (uint64, bool, error) {
	var params P
	if err := json.Unmarshal(body, &params); err != nil {
		return 0, false, err
	}
	gen := h.c.Update(params)
	st := h.c.State()
	return gen, st.Phase == view.PhaseIdle && st.Notice != "", nil
}

func (h pageHandle[P, T]) state() any { return h.c.State() }

func (h pageHandle[P, T]) wait(ctx context.Context) (any, error) {
	return h.c.Wait(ctx)
}

func (h pageHandle[P, T]) close() { h.c.Close() }

type pageKey struct {
	kind string
	id   string
}

// gateway exposes pages and conversations over HTTP. Each (kind, id) pair is
// an independent page; PUT replaces its parameters and supersedes any load
// in flight.
type gateway struct {
	ctx      context.Context
	client   *advisor.Client
	breakers *resilience.ServiceBreakers

	mu    sync.Mutex
	pages map[pageKey]mountedPage
	convs map[string]*advisor.Conversation
}

func newGateway(ctx context.Context, client *advisor.Client, breakers *resilience.ServiceBreakers) *gateway {
	return &gateway{
		ctx:      ctx,
		client:   client,
		breakers: breakers,
		pages:    make(map[pageKey]mountedPage),
		convs:    make(map[string]*advisor.Conversation),
	}
}

func (g *gateway) newPage(kind string) (mountedPage, bool) {
	switch kind {
	case "area":
		return pageHandle[model.AreaQuery, model.Recommendations]{advisor.NewAreaPage(g.ctx, g.client)}, true
	case "industry":
		return pageHandle[model.IndustryQuery, model.Recommendations]{advisor.NewIndustryPage(g.ctx, g.client)}, true
	case "report":
		return pageHandle[model.ReportQuery, *model.Report]{advisor.NewReportPage(g.ctx, g.client)}, true
	default:
		return nil, false
	}
}

func (g *gateway) routes(origins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", idempotency.Header},
		MaxAge:         300,
	}))

	r.Get("/health", g.health)
	r.Put("/pages/{kind}/{id}", g.putPage)
	r.Get("/pages/{kind}/{id}", g.getPage)
	r.Delete("/pages/{kind}/{id}", g.deletePage)
	r.Post("/chat/{id}", g.postChat)
	r.Get("/chat/{id}", g.getChat)
	return r
}

func (g *gateway) health(w http.ResponseWriter, _ *http.Request) {
	resp := map[string]any{"status": "ok"}
	if g.breakers != nil {
		states := make(map[string]string)
		for endpoint, s := range g.breakers.States() {
			states[endpoint] = s.String()
		}
		resp["circuits"] = states
	}
	writeJSON(w, http.StatusOK, resp)
}

func (g *gateway) putPage(w http.ResponseWriter, r *http.Request) {
	key := pageKey{kind: chi.URLParam(r, "kind"), id: chi.URLParam(r, "id")}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	g.mu.Lock()
	p, ok := g.pages[key]
	if !ok {
		p, ok = g.newPage(key.kind)
		if !ok {
			g.mu.Unlock()
			writeError(w, http.StatusNotFound, "unknown page kind "+key.kind)
			return
		}
		g.pages[key] = p
	}
	g.mu.Unlock()

	_, invalid, err := p.update(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if invalid {
		writeJSON(w, http.StatusUnprocessableEntity, p.state())
		return
	}
	writeJSON(w, http.StatusAccepted, p.state())
}

func (g *gateway) getPage(w http.ResponseWriter, r *http.Request) {
	p, ok := g.lookup(r)
	if !ok {
		writeError(w, http.StatusNotFound, "page not found")
		return
	}

	if r.URL.Query().Get("wait") == "" {
		writeJSON(w, http.StatusOK, p.state())
		return
	}

	ctx := r.Context()
	if d, err := time.ParseDuration(r.URL.Query().Get("timeout")); err == nil && d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	st, err := p.wait(ctx)
	if err != nil {
		writeJSON(w, http.StatusGatewayTimeout, st)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (g *gateway) deletePage(w http.ResponseWriter, r *http.Request) {
	key := pageKey{kind: chi.URLParam(r, "kind"), id: chi.URLParam(r, "id")}

	g.mu.Lock()
	p, ok := g.pages[key]
	delete(g.pages, key)
	g.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "page not found")
		return
	}
	p.close()
	w.WriteHeader(http.StatusNoContent)
}

func (g *gateway) lookup(r *http.Request) (mountedPage, bool) {
	key := pageKey{kind: chi.URLParam(r, "kind"), id: chi.URLParam(r, "id")}
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.pages[key]
	return p, ok
}

type chatTurn struct {
	Message string `json:"message"`
	advisor.ReportContext
}

func (g *gateway) postChat(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var turn chatTurn
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&turn); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// The first turn fixes the conversation's report context.
	g.mu.Lock()
	conv, ok := g.convs[id]
	if !ok {
		conv = advisor.NewConversation(g.client, turn.ReportContext)
		g.convs[id] = conv
	}
	g.mu.Unlock()

	reply, err := conv.Send(r.Context(), turn.Message)
	if err != nil {
		status := http.StatusBadGateway
		if fetcher.IsCancelled(err) {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, map[string]any{
			"error":    err.Error(),
			"messages": conv.Messages(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"reply":    reply,
		"messages": conv.Messages(),
	})
}

func (g *gateway) getChat(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	conv, ok := g.convs[chi.URLParam(r, "id")]
	g.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "conversation not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": conv.Messages()})
}

// close unmounts every page.
func (g *gateway) close() {
	g.mu.Lock()
	keys := make([]pageKey, 0, len(g.pages))
	for k := range g.pages {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].kind != keys[j].kind {
			return keys[i].kind < keys[j].kind
		}
		return keys[i].id < keys[j].id
	})
	pages := make([]mountedPage, 0, len(keys))
	for _, k := range keys {
		pages = append(pages, g.pages[k])
	}
	g.pages = make(map[pageKey]mountedPage)
	g.mu.Unlock()

	for _, p := range pages {
		p.close()
	}
	zap.L().Info("gateway: pages unmounted", zap.Int("count", len(pages)))
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("gateway: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
