package transport

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"

	"github.com/imtaco/stream-orch-exp/internal/constants"
	"github.com/imtaco/stream-orch-exp/internal/gateway"
	"github.com/imtaco/stream-orch-exp/internal/jwt"
	"github.com/imtaco/stream-orch-exp/internal/log"
	"github.com/imtaco/stream-orch-exp/internal/validation"
	"github.com/imtaco/stream-orch-exp/sessions"
	"github.com/imtaco/stream-orch-exp/sessions/events"
	"github.com/imtaco/stream-orch-exp/sessions/orchestrator"
	"github.com/imtaco/stream-orch-exp/sessions/registry"
)

// Options groups the transport-level knobs.
type Options struct {
	AllowedOrigins []string
	CreateRate     rate.Limit
	CreateBurst    int
}

type Router struct {
	sessions   *registry.Registry[*orchestrator.Session]
	broadcasts *registry.Registry[*orchestrator.BroadcastFlow]
	ingresses  *registry.Registry[*orchestrator.IngressFlow]
	deps       orchestrator.Deps
	schedule   sessions.ScheduleGateway
	ingressGW  sessions.IngressGateway
	hub        *events.Hub
	snapshots  sessions.SnapshotStore
	jwtAuth    jwt.Auth
	origins    []string
	engine     *gin.Engine
	logger     *log.Logger
}

func NewRouter(
	sessionReg *registry.Registry[*orchestrator.Session],
	broadcastReg *registry.Registry[*orchestrator.BroadcastFlow],
	ingressReg *registry.Registry[*orchestrator.IngressFlow],
	deps orchestrator.Deps,
	schedule sessions.ScheduleGateway,
	ingressGW sessions.IngressGateway,
	hub *events.Hub,
	snapshots sessions.SnapshotStore,
	jwtAuth jwt.Auth,
	opts Options,
	logger *log.Logger,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	// Add OpenTelemetry middleware for automatic HTTP tracing
	engine.Use(otelgin.Middleware("session-service"))

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}))

	r := &Router{
		sessions:   sessionReg,
		broadcasts: broadcastReg,
		ingresses:  ingressReg,
		deps:       deps,
		schedule:   schedule,
		ingressGW:  ingressGW,
		hub:        hub,
		snapshots:  snapshots,
		jwtAuth:    jwtAuth,
		origins:    origins,
		engine:     engine,
		logger:     logger,
	}

	// Request logging middleware
	r.engine.Use(func(c *gin.Context) {
		r.logger.Info("Incoming request",
			log.String("method", c.Request.Method),
			log.String("url", c.Request.URL.String()))
		c.Next()
	})

	r.setupRoutes(opts)
	return r
}

func (r *Router) Handler() http.Handler {
	return r.engine
}

func (r *Router) setupRoutes(opts Options) {
	createLimit := rateLimitByIP(opts.CreateRate, opts.CreateBurst)

	// Watch session routes
	r.engine.POST("/api/sessions", createLimit, r.createSession)
	r.engine.GET("/api/sessions", r.listSessions)
	watch := r.engine.Group("/api/sessions/:sessionId",
		sessionAuth(r.jwtAuth, constants.TokenKindWatch, "sessionId"))
	watch.GET("", r.getSession)
	watch.POST("/join", r.joinSession)
	watch.POST("/retry", r.retrySession)
	watch.POST("/switch", r.switchRoom)
	watch.GET("/surface", r.getSurface)
	watch.GET("/events", r.streamEvents)
	watch.DELETE("", r.deleteSession)

	// Broadcast creation flow routes
	r.engine.POST("/api/broadcasts", createLimit, r.createBroadcast)
	bcast := r.engine.Group("/api/broadcasts/:flowId",
		sessionAuth(r.jwtAuth, constants.TokenKindBroadcast, "flowId"))
	bcast.GET("", r.getBroadcast)
	bcast.PUT("", r.updateBroadcast)
	bcast.POST("/go_live", r.goLive)
	bcast.POST("/cancel", r.cancelBroadcast)

	// Ingress creation flow routes
	r.engine.POST("/api/ingresses", createLimit, r.createIngress)
	ingress := r.engine.Group("/api/ingresses/:flowId",
		sessionAuth(r.jwtAuth, constants.TokenKindIngress, "flowId"))
	ingress.GET("", r.getIngress)
	ingress.PUT("", r.updateIngress)
	ingress.POST("/provision", r.provisionIngress)
	ingress.POST("/cancel", r.cancelIngress)
	ingress.GET("/viewer-token", r.ingressViewerToken)

	// Health check
	r.engine.GET("/health", r.healthCheck)
}

func (r *Router) createSession(c *gin.Context) {
	var req CreateSessionBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Validation failed",
			"details": validation.FormatValidationError(err),
		})
		return
	}

	sessionID := uuid.New().String()
	token, err := r.jwtAuth.Sign(sessionID, string(constants.TokenKindWatch))
	if err != nil {
		r.logger.Error("Failed to sign session token", log.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to create session",
		})
		return
	}

	sess := orchestrator.NewSession(sessionID, req.RoomName, r.deps)
	r.sessions.Put(sess)
	snap := sess.Resolve(c.Request.Context())

	r.logger.Info("Session created",
		log.String("sessionId", sessionID),
		log.String("roomName", req.RoomName),
		log.String("state", string(snap.State)))

	c.JSON(http.StatusCreated, gin.H{
		"success":       true,
		"session":       snap,
		"session_token": token,
	})
}

// listSessions reads the snapshot store, not the local registry, so it sees
// in-flight sessions across every replica.
func (r *Router) listSessions(c *gin.Context) {
	snaps, err := r.snapshots.List(c.Request.Context())
	if err != nil {
		r.logger.Error("Failed to list session snapshots", log.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to list sessions",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"count":    len(snaps),
		"sessions": snaps,
	})
}

func (r *Router) lookupSession(c *gin.Context) (*orchestrator.Session, bool) {
	var req SessionURI
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Validation failed",
			"details": validation.FormatValidationError(err),
		})
		return nil, false
	}

	sess, ok := r.sessions.Get(req.SessionID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   (&sessions.SessionNotFoundError{SessionID: req.SessionID}).Error(),
		})
		return nil, false
	}
	return sess, true
}

func (r *Router) getSession(c *gin.Context) {
	sess, ok := r.lookupSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"session": sess.Snapshot(),
	})
}

func (r *Router) joinSession(c *gin.Context) {
	sess, ok := r.lookupSession(c)
	if !ok {
		return
	}

	var req JoinBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Validation failed",
			"details": validation.FormatValidationError(err),
		})
		return
	}

	snap, err := sess.Join(c.Request.Context(), req.Identity)
	if err != nil {
		r.respondTransitionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"session": snap,
	})
}

func (r *Router) retrySession(c *gin.Context) {
	sess, ok := r.lookupSession(c)
	if !ok {
		return
	}

	snap, err := sess.Retry(c.Request.Context())
	if err != nil {
		r.respondTransitionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"session": snap,
	})
}

func (r *Router) switchRoom(c *gin.Context) {
	sess, ok := r.lookupSession(c)
	if !ok {
		return
	}

	var req SwitchRoomBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Validation failed",
			"details": validation.FormatValidationError(err),
		})
		return
	}

	snap, err := sess.SwitchRoom(c.Request.Context(), req.RoomName)
	if err != nil {
		r.respondTransitionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"session": snap,
	})
}

func (r *Router) getSurface(c *gin.Context) {
	sess, ok := r.lookupSession(c)
	if !ok {
		return
	}

	activation, err := sess.Surface()
	if err != nil {
		r.respondTransitionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"surface": activation,
	})
}

func (r *Router) deleteSession(c *gin.Context) {
	var req SessionURI
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Validation failed",
			"details": validation.FormatValidationError(err),
		})
		return
	}

	// Eviction closes the session; the hub then drops its subscribers.
	r.sessions.Remove(req.SessionID)
	r.hub.CloseSession(req.SessionID)

	r.logger.Info("Session deleted", log.String("sessionId", req.SessionID))
	c.JSON(http.StatusOK, gin.H{})
}

func (r *Router) createBroadcast(c *gin.Context) {
	flowID := uuid.New().String()
	token, err := r.jwtAuth.Sign(flowID, string(constants.TokenKindBroadcast))
	if err != nil {
		r.logger.Error("Failed to sign flow token", log.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to create broadcast flow",
		})
		return
	}

	flow := orchestrator.NewBroadcastFlow(flowID, r.schedule, r.deps.Tokens, r.logger)
	r.broadcasts.Put(flow)

	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"flow":       flow.Snapshot(),
		"flow_token": token,
	})
}

func (r *Router) lookupBroadcast(c *gin.Context) (*orchestrator.BroadcastFlow, bool) {
	var req BroadcastURI
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Validation failed",
			"details": validation.FormatValidationError(err),
		})
		return nil, false
	}

	flow, ok := r.broadcasts.Get(req.FlowID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "Broadcast flow not found",
		})
		return nil, false
	}
	return flow, true
}

func (r *Router) getBroadcast(c *gin.Context) {
	flow, ok := r.lookupBroadcast(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"flow":    flow.Snapshot(),
	})
}

func (r *Router) updateBroadcast(c *gin.Context) {
	flow, ok := r.lookupBroadcast(c)
	if !ok {
		return
	}

	var req UpdateBroadcastBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Validation failed",
			"details": validation.FormatValidationError(err),
		})
		return
	}

	current := flow.Snapshot()
	form := orchestrator.BroadcastForm{
		RoomName:           req.RoomName,
		Identity:           req.Identity,
		EnableChat:         current.EnableChat,
		AllowParticipation: current.AllowParticipation,
	}
	if req.EnableChat != nil {
		form.EnableChat = *req.EnableChat
	}
	if req.AllowParticipation != nil {
		form.AllowParticipation = *req.AllowParticipation
	}

	snap, err := flow.Update(form)
	if err != nil {
		r.respondFlowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"flow":    snap,
	})
}

func (r *Router) goLive(c *gin.Context) {
	flow, ok := r.lookupBroadcast(c)
	if !ok {
		return
	}

	cred, err := flow.GoLive(c.Request.Context())
	if err != nil {
		r.respondFlowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"flow":    flow.Snapshot(),
		"credential": gin.H{
			"auth_token": cred.AuthToken,
			"room_token": cred.RoomToken,
		},
	})
}

func (r *Router) cancelBroadcast(c *gin.Context) {
	flow, ok := r.lookupBroadcast(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"flow":    flow.Cancel(),
	})
}

func (r *Router) createIngress(c *gin.Context) {
	flowID := uuid.New().String()
	token, err := r.jwtAuth.Sign(flowID, string(constants.TokenKindIngress))
	if err != nil {
		r.logger.Error("Failed to sign flow token", log.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to create ingress flow",
		})
		return
	}

	flow := orchestrator.NewIngressFlow(flowID, r.schedule, r.ingressGW, r.logger)
	r.ingresses.Put(flow)

	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"flow":       flow.Snapshot(),
		"flow_token": token,
	})
}

func (r *Router) lookupIngress(c *gin.Context) (*orchestrator.IngressFlow, bool) {
	var req IngressURI
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Validation failed",
			"details": validation.FormatValidationError(err),
		})
		return nil, false
	}

	flow, ok := r.ingresses.Get(req.FlowID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "Ingress flow not found",
		})
		return nil, false
	}
	return flow, true
}

func (r *Router) getIngress(c *gin.Context) {
	flow, ok := r.lookupIngress(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"flow":    flow.Snapshot(),
	})
}

func (r *Router) updateIngress(c *gin.Context) {
	flow, ok := r.lookupIngress(c)
	if !ok {
		return
	}

	var req UpdateIngressBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Validation failed",
			"details": validation.FormatValidationError(err),
		})
		return
	}

	current := flow.Snapshot()
	form := orchestrator.IngressForm{
		RoomName:           req.RoomName,
		Identity:           req.Identity,
		IngressType:        current.IngressType,
		EnableChat:         current.EnableChat,
		AllowParticipation: current.AllowParticipation,
	}
	if req.IngressType != "" {
		form.IngressType = gateway.IngressType(req.IngressType)
	}
	if req.EnableChat != nil {
		form.EnableChat = *req.EnableChat
	}
	if req.AllowParticipation != nil {
		form.AllowParticipation = *req.AllowParticipation
	}

	snap, err := flow.Update(form)
	if err != nil {
		r.respondFlowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"flow":    snap,
	})
}

func (r *Router) provisionIngress(c *gin.Context) {
	flow, ok := r.lookupIngress(c)
	if !ok {
		return
	}

	details, err := flow.Provision(c.Request.Context())
	if err != nil {
		r.respondFlowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"flow":    flow.Snapshot(),
		"ingress": gin.H{
			"url":        details.URL,
			"stream_key": details.StreamKey,
		},
	})
}

func (r *Router) cancelIngress(c *gin.Context) {
	flow, ok := r.lookupIngress(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"flow":    flow.Cancel(),
	})
}

func (r *Router) ingressViewerToken(c *gin.Context) {
	flow, ok := r.lookupIngress(c)
	if !ok {
		return
	}

	cred, err := flow.ViewerCredential()
	if err != nil {
		r.respondFlowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"credential": gin.H{
			"auth_token": cred.AuthToken,
			"room_token": cred.RoomToken,
		},
	})
}

func (r *Router) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"service":   "sessions",
		"timestamp": time.Now().Unix(),
	})
}

func (r *Router) respondTransitionError(c *gin.Context, err error) {
	var (
		invalidTransition *sessions.InvalidTransitionError
		identityRequired  *sessions.IdentityRequiredError
	)
	switch {
	case errors.As(err, &identityRequired):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
	case errors.As(err, &invalidTransition):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   err.Error(),
		})
	default:
		r.logger.Error("Session operation failed", log.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Internal error",
		})
	}
}

func (r *Router) respondFlowError(c *gin.Context, err error) {
	var (
		notScheduled     *sessions.RoomNotScheduledError
		unavailable      *sessions.ScheduleUnavailableError
		invalidFlowState *sessions.InvalidFlowStateError
		fieldsRequired   *sessions.FieldsRequiredError
	)
	switch {
	case errors.As(err, &fieldsRequired):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
	case errors.As(err, &notScheduled):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   err.Error(),
		})
	case errors.As(err, &unavailable):
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error":   err.Error(),
		})
	case errors.As(err, &invalidFlowState):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   err.Error(),
		})
	default:
		r.logger.Error("Flow operation failed", log.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Internal error",
		})
	}
}
