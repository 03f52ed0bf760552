package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/km-arc/go-container/framework/app"
	"github.com/km-arc/go-container/framework/config"
	"github.com/km-arc/go-container/framework/container"
	"github.com/km-arc/go-container/framework/definition"
	"github.com/km-arc/go-container/framework/introspect"
	"github.com/km-arc/go-container/framework/proxy"
	"github.com/km-arc/go-container/framework/routing"
)

// Greeter answers every request with the same greeting.
type Greeter struct {
	greeting string
}

func NewGreeter(greeting string) *Greeter {
	return &Greeter{greeting: greeting}
}

func (g *Greeter) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"data": g.greeting})
}

// UserController serves /users through the resource entry.
type UserController struct {
	users []string
}

func NewUserController(users []string) *UserController {
	return &UserController{users: users}
}

func (c *UserController) Index(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, c.users)
}

func (c *UserController) Store(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusMethodNotAllowed)
}

func (c *UserController) Show(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"id": routing.Param(r, "id")})
}

func (c *UserController) Update(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusMethodNotAllowed)
}

func (c *UserController) Destroy(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusMethodNotAllowed)
}

// lazyUsers builds the controller on the first request that reaches it.
type lazyUsers struct{ *proxy.Lazy }

func (l lazyUsers) users() *UserController { return l.MustInstance().(*UserController) }

func (l lazyUsers) Index(w http.ResponseWriter, r *http.Request)   { l.users().Index(w, r) }
func (l lazyUsers) Store(w http.ResponseWriter, r *http.Request)   { l.users().Store(w, r) }
func (l lazyUsers) Show(w http.ResponseWriter, r *http.Request)    { l.users().Show(w, r) }
func (l lazyUsers) Update(w http.ResponseWriter, r *http.Request)  { l.users().Update(w, r) }
func (l lazyUsers) Destroy(w http.ResponseWriter, r *http.Request) { l.users().Destroy(w, r) }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"data": v})
}

func main() {
	types := introspect.NewRegistry()
	introspect.MustRegister(types, "Greeter", NewGreeter, introspect.Params("greeting"))
	introspect.MustRegister(types, "UserController", NewUserController, introspect.Params("users"))

	proxies := proxy.NewWrapperFactory()
	proxies.Register("UserController", func(l *proxy.Lazy) any { return lazyUsers{l} })

	definitions := map[string]any{
		"app.name":     definition.Env("APP_NAME", "go-container"),
		"greeting":     definition.String("Welcome to {app.name}!"),
		"users":        definition.Array("alice", "bob"),
		"handler.home": definition.Create("Greeter").
			Constructor(definition.Get("greeting")),
		"controller.users": definition.Create("UserController").
			Constructor(definition.Get("users")).
			Lazy(),
		"middleware.auth": definition.Factory(func() func(http.Handler) http.Handler {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					if r.Header.Get("Authorization") == "" {
						http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
						return
					}
					next.ServeHTTP(w, r)
				})
			}
		}),
	}

	application, err := app.Bootstrap(config.Load(),
		container.NewBuilder().WithTypes(types).WithProxies(proxies).AddDefinitions(definitions))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	r := application.Router()
	r.Handle(http.MethodGet, "/", "handler.home")
	r.Group(func(protected *routing.Router) {
		protected.MiddlewareEntry("middleware.auth")
		protected.ResourceEntry("/users", "controller.users")
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		application.Logger().Sugar().Fatalw("server stopped", "error", err)
	}
}
