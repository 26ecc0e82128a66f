package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"
	apiContext "alidayu/internal/api/context"
	"alidayu/internal/api/handlers"
	"alidayu/internal/api/middleware"
	"alidayu/internal/pkg/errors"
	"alidayu/internal/platform/auth"
)

type Dependencies struct {
	TokenHandler    *handlers.TokenHandler
	GatewayHandler  *handlers.GatewayHandler
	DispatchHandler *handlers.DispatchHandler
	HealthHandler   *handlers.HealthHandler
	MetricsHandler  *handlers.MetricsHandler
	AuthMiddleware  *middleware.AuthMiddleware
	RateLimiter     *middleware.RateLimiter
}

func NewRouter(deps *Dependencies) *httprouter.Router {
	router := httprouter.New()
	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Route not found", nil)
	})

	router.GET("/health", wrap(deps.HealthHandler.Check))
	router.GET("/metrics", wrap(deps.MetricsHandler.Export))

	// Token issuance is limited by remote address.
	router.POST("/api/v1/auth/token", chain(deps.TokenHandler.Issue, deps.RateLimiter.Handle))

	authMid := deps.AuthMiddleware.Handle
	limit := deps.RateLimiter.Handle
	gw := deps.GatewayHandler

	// SMS
	router.POST("/api/v1/sms",
		chain(gw.SendSMS, authMid, limit, middleware.RequireScope(auth.ScopeSMS)))
	router.GET("/api/v1/sms",
		chain(gw.QuerySMS, authMid, limit, middleware.RequireScope(auth.ScopeSMS)))

	// Virtual number bindings
	router.POST("/api/v1/bindings",
		chain(gw.Bind, authMid, limit, middleware.RequireScope(auth.ScopeBinding)))
	router.POST("/api/v1/bindings/:subs_id/second",
		chain(gw.BindSecond, authMid, limit, middleware.RequireScope(auth.ScopeBinding)))
	router.DELETE("/api/v1/bindings/:subs_id",
		chain(gw.Unbind, authMid, limit, middleware.RequireScope(auth.ScopeBinding)))

	// Voice
	router.POST("/api/v1/calls/tts",
		chain(gw.TTSCall, authMid, limit, middleware.RequireScope(auth.ScopeTTS)))

	// Dispatch log
	router.GET("/api/v1/dispatches",
		chain(deps.DispatchHandler.List, authMid, limit, middleware.RequireScope(auth.ScopeDispatches)))
	router.GET("/api/v1/dispatches/:dispatch_id",
		chain(deps.DispatchHandler.Get, authMid, limit, middleware.RequireScope(auth.ScopeDispatches)))

	return router
}

// Helper function to chain middlewares
func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(handler)
}

// Convert http.HandlerFunc to httprouter.Handle
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		handler(w, r.WithContext(ctx))
	}
}
