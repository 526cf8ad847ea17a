package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/canhigher/ing-hubs-case/internal/domain"
	"github.com/canhigher/ing-hubs-case/internal/infra"
	"github.com/canhigher/ing-hubs-case/internal/service"
	"github.com/canhigher/ing-hubs-case/pkg/auth"

	"github.com/gin-gonic/gin"
)

// Server wires the HTTP API. Authorization is enforced here, before any
// service is invoked: customers act on their own records, admins on all,
// and matching is admin-only.
type Server struct {
	engine *gin.Engine
	assets *service.AssetService
	orders *service.OrderService
	auth   *service.AuthService
	tokens *auth.Manager
	hub    *Hub
	log    *slog.Logger
}

// NewServer builds the router. hub may be nil to disable the event stream.
func NewServer(assets *service.AssetService, orders *service.OrderService, authSvc *service.AuthService, tokens *auth.Manager, hub *Hub, log *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		engine: gin.New(),
		assets: assets,
		orders: orders,
		auth:   authSvc,
		tokens: tokens,
		hub:    hub,
		log:    log,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.Use(gin.Recovery())

	s.engine.GET("/health", s.health)
	s.engine.GET("/metrics", s.metrics)

	s.engine.POST("/api/auth/signup", s.signup)
	s.engine.POST("/api/auth/signin", s.signin)

	authed := s.engine.Group("/api", AuthMiddleware(s.tokens))
	{
		authed.GET("/assets", s.listAssets)
		authed.POST("/assets/balance", AdminOnly(), s.addBalance)

		authed.POST("/orders", s.createOrder)
		authed.GET("/orders", s.listOrders)
		authed.GET("/orders/:id", s.getOrder)
		authed.DELETE("/orders/:id", s.cancelOrder)
		authed.POST("/orders/:id/match", AdminOnly(), s.matchOrder)
	}

	if s.hub != nil {
		s.engine.GET("/ws/orders", AuthMiddleware(s.tokens), AdminOnly(), s.hub.ServeWS)
	}
}

// Handler exposes the router for http.Server and tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) metrics(c *gin.Context) {
	c.JSON(http.StatusOK, infra.GlobalMetrics.Snapshot())
}

// writeServiceError maps domain errors onto HTTP statuses.
func (s *Server) writeServiceError(c *gin.Context, err error) {
	var transitionErr *domain.InvalidStateTransitionError
	switch {
	case errors.Is(err, domain.ErrOrderNotFound), errors.Is(err, domain.ErrAssetNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrInsufficientBalance):
		c.JSON(http.StatusBadRequest, errorResponse{Code: "INSUFFICIENT_BALANCE", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, errorResponse{Code: "INVALID_AMOUNT", Message: err.Error()})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusBadRequest, errorResponse{Code: "INVALID_STATE", Message: err.Error()})
	case errors.Is(err, domain.ErrUsernameTaken), errors.Is(err, domain.ErrEmailTaken):
		c.JSON(http.StatusConflict, errorResponse{Code: "CONFLICT", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, errorResponse{Code: "UNAUTHORIZED", Message: err.Error()})
	default:
		s.log.Error("internal error", slog.Any("error", err))
		infra.GlobalMetrics.RecordError()
		c.JSON(http.StatusInternalServerError, errorResponse{Code: "INTERNAL_ERROR", Message: "internal error"})
	}
}
