// Package routing wraps chi with helpers that take handlers, middleware and
// resource controllers either directly or as container entry names.
//
// Entries are resolved on every request, so their scope decides whether a
// request gets a fresh handler (prototype) or a shared one (singleton).
//
//	r := routing.New(c, logger)
//	r.Handle(http.MethodGet, "/users/{id}", "controller.users.show")
//	r.Prefix("/admin", func(admin *routing.Router) {
//	    admin.MiddlewareEntry("middleware.auth")
//	    admin.ResourceEntry("/photos", "controller.photos")
//	})
package routing

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/km-arc/go-container/framework/errors"
)

// Resolver is where entry names are resolved. *container.Container
// implements it.
type Resolver interface {
	Get(name string) (any, error)
}

// Router wraps chi.Router.
type Router struct {
	mux      chi.Router
	resolver Resolver
	logger   *zap.Logger
}

// New creates a Router with sane defaults (RequestID, RealIP, request
// logging, Recoverer). c may be nil when no entry routes are used.
func New(c Resolver, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	return &Router{mux: r, resolver: c, logger: logger}
}

func (r *Router) sub(mx chi.Router) *Router {
	return &Router{mux: mx, resolver: r.resolver, logger: r.logger}
}

// ── HTTP verbs ───────────────────────────────────────────────────────────────

func (r *Router) Get(pattern string, h http.HandlerFunc)    { r.mux.Get(pattern, h) }
func (r *Router) Post(pattern string, h http.HandlerFunc)   { r.mux.Post(pattern, h) }
func (r *Router) Put(pattern string, h http.HandlerFunc)    { r.mux.Put(pattern, h) }
func (r *Router) Patch(pattern string, h http.HandlerFunc)  { r.mux.Patch(pattern, h) }
func (r *Router) Delete(pattern string, h http.HandlerFunc) { r.mux.Delete(pattern, h) }

// Any registers a handler for all common HTTP methods.
func (r *Router) Any(pattern string, h http.HandlerFunc) {
	for _, m := range []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"} {
		r.mux.Method(m, pattern, h)
	}
}

// ── Entry handlers ───────────────────────────────────────────────────────────

// Handle routes method + pattern to the handler the entry resolves to: an
// http.Handler or a func(http.ResponseWriter, *http.Request).
func (r *Router) Handle(method, pattern, entry string) {
	r.mux.Method(method, pattern, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		h, err := r.handler(entry)
		if err != nil {
			r.fail(w, req, entry, err)
			return
		}
		h.ServeHTTP(w, req)
	}))
}

func (r *Router) handler(entry string) (http.Handler, error) {
	v, err := r.resolve(entry)
	if err != nil {
		return nil, err
	}
	switch h := v.(type) {
	case http.Handler:
		return h, nil
	case func(http.ResponseWriter, *http.Request):
		return http.HandlerFunc(h), nil
	}
	return nil, errors.Errorf("entry %s resolved to %T, not a handler", entry, v)
}

func (r *Router) resolve(entry string) (any, error) {
	if r.resolver == nil {
		return nil, errors.Errorf("no container to resolve %s", entry)
	}
	return r.resolver.Get(entry)
}

func (r *Router) fail(w http.ResponseWriter, req *http.Request, entry string, err error) {
	r.logger.Error("resolving route entry",
		zap.String("entry", entry),
		zap.String("path", req.URL.Path),
		zap.String("request_id", middleware.GetReqID(req.Context())),
		zap.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// ── Groups & Prefixes ────────────────────────────────────────────────────────

// Group creates an inline group sharing the parent's prefix.
func (r *Router) Group(fn func(r *Router)) {
	r.mux.Group(func(mx chi.Router) {
		fn(r.sub(mx))
	})
}

// Prefix creates a sub-router with a URL prefix.
func (r *Router) Prefix(pattern string, fn func(r *Router)) {
	r.mux.Route(pattern, func(mx chi.Router) {
		fn(r.sub(mx))
	})
}

// ── Middleware ───────────────────────────────────────────────────────────────

// Middleware adds one or more middleware to the router.
func (r *Router) Middleware(mw ...func(http.Handler) http.Handler) {
	r.mux.Use(mw...)
}

// MiddlewareEntry adds middleware resolved from entries, each a
// func(http.Handler) http.Handler.
func (r *Router) MiddlewareEntry(entries ...string) {
	for _, entry := range entries {
		r.mux.Use(r.middleware(entry))
	}
}

func (r *Router) middleware(entry string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			v, err := r.resolve(entry)
			if err != nil {
				r.fail(w, req, entry, err)
				return
			}
			mw, ok := v.(func(http.Handler) http.Handler)
			if !ok {
				r.fail(w, req, entry, errors.Errorf("entry %s resolved to %T, not a middleware", entry, v))
				return
			}
			mw(next).ServeHTTP(w, req)
		})
	}
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, req)
			logger.Debug("request",
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(req.Context())))
		})
	}
}

// ── Resource routes ──────────────────────────────────────────────────────────

// ResourceController handles the standard RESTful routes of a resource.
//
//	GET    /photos           → c.Index
//	POST   /photos           → c.Store
//	GET    /photos/{id}      → c.Show
//	PUT    /photos/{id}      → c.Update
//	DELETE /photos/{id}      → c.Destroy
type ResourceController interface {
	Index(w http.ResponseWriter, r *http.Request)
	Store(w http.ResponseWriter, r *http.Request)
	Show(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Destroy(w http.ResponseWriter, r *http.Request)
}

func (r *Router) Resource(pattern string, c ResourceController) {
	r.resource(pattern, func(http.ResponseWriter, *http.Request) (ResourceController, bool) { return c, true })
}

// ResourceEntry is Resource with the controller resolved from entry on
// every request.
func (r *Router) ResourceEntry(pattern, entry string) {
	r.resource(pattern, func(w http.ResponseWriter, req *http.Request) (ResourceController, bool) {
		v, err := r.resolve(entry)
		if err != nil {
			r.fail(w, req, entry, err)
			return nil, false
		}
		c, ok := v.(ResourceController)
		if !ok {
			r.fail(w, req, entry, errors.Errorf("entry %s resolved to %T, not a resource controller", entry, v))
		}
		return c, ok
	})
}

type controllerFunc func(http.ResponseWriter, *http.Request) (ResourceController, bool)

func (r *Router) resource(pattern string, controller controllerFunc) {
	action := func(call func(ResourceController, http.ResponseWriter, *http.Request)) http.HandlerFunc {
		return func(w http.ResponseWriter, req *http.Request) {
			if c, ok := controller(w, req); ok {
				call(c, w, req)
			}
		}
	}
	r.mux.Get(pattern, action(ResourceController.Index))
	r.mux.Post(pattern, action(ResourceController.Store))
	r.mux.Get(pattern+"/{id}", action(ResourceController.Show))
	r.mux.Put(pattern+"/{id}", action(ResourceController.Update))
	r.mux.Patch(pattern+"/{id}", action(ResourceController.Update))
	r.mux.Delete(pattern+"/{id}", action(ResourceController.Destroy))
}

// ── Static files ─────────────────────────────────────────────────────────────

// Static serves a filesystem at the given prefix.
// e.g. router.Static("/public", "./public")
func (r *Router) Static(prefix, dir string) {
	fs := http.StripPrefix(prefix, http.FileServer(http.Dir(dir)))
	r.mux.Get(prefix+"/*", func(w http.ResponseWriter, req *http.Request) {
		fs.ServeHTTP(w, req)
	})
}

// ── Params ───────────────────────────────────────────────────────────────────

// Param extracts a URL param.
func Param(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}

// ── Serve ────────────────────────────────────────────────────────────────────

// ServeHTTP implements http.Handler so Router can be passed to http.ListenAndServe.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Handler returns the underlying http.Handler (for testing etc.).
func (r *Router) Handler() http.Handler {
	return r.mux
}
