package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"arenaapp/domain/entities"
	"arenaapp/domain/interfaces"
	"arenaapp/notify"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"
)

// IdentityHeader carries the caller identity, already verified by the proxy in front of the service
const IdentityHeader = "X-Arena-Identity"

// leaderboardImageRows caps the rendered leaderboard
const leaderboardImageRows = 10

// Engine is the set of arena operations the HTTP adapter exposes
type Engine interface {
	RegisterParticipant(ctx context.Context, identity, displayName string) (*entities.Participant, error)
	CreateContest(ctx context.Context, initiator, opponent, topic string, stake int64, votingWindow time.Duration) (*entities.Contest, error)
	AcceptContest(ctx context.Context, contestID int64, caller string, stake int64) (*entities.Contest, error)
	CancelContest(ctx context.Context, contestID int64, caller string) (*entities.Contest, error)
	PlaceWager(ctx context.Context, contestID int64, bettor string, side entities.Side, amount int64) (*entities.Wager, error)
	CastVote(ctx context.Context, contestID int64, bettor string) (*entities.Wager, error)
	Settle(ctx context.Context, contestID int64) (*interfaces.SettlementResult, error)
	Claim(ctx context.Context, contestID int64, bettor string) (*entities.Wager, error)

	GetArena(ctx context.Context) (*entities.Arena, error)
	GetParticipant(ctx context.Context, identity string) (*entities.Participant, error)
	ListParticipants(ctx context.Context, limit int) ([]*entities.Participant, error)
	GetLeaderboard(ctx context.Context, limit int) ([]*entities.Participant, error)
	GetContest(ctx context.Context, contestID int64) (*entities.Contest, error)
	ListContests(ctx context.Context, status *entities.ContestStatus, limit int) ([]*entities.Contest, error)
	GetEscrow(ctx context.Context, contestID int64) (*entities.Escrow, error)
	GetOdds(ctx context.Context, contestID int64) (*entities.Odds, error)
	GetWager(ctx context.Context, contestID int64, bettor string) (*entities.Wager, error)
	GetWagers(ctx context.Context, contestID int64) ([]*entities.Wager, error)
}

// Server is the HTTP adapter in front of the arena engine
type Server struct {
	echo       *echo.Echo
	engine     Engine
	scoreboard *notify.ScoreboardImageGenerator
	port       string
}

// NewServer creates the server and registers every route
func NewServer(engine Engine, port string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler

	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(requestLogger())

	s := &Server{
		echo:       e,
		engine:     engine,
		scoreboard: notify.NewScoreboardImageGenerator(),
		port:       port,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.health)

	apiGroup := s.echo.Group("/api")
	apiGroup.GET("/arena", s.getArena)
	apiGroup.GET("/leaderboard", s.getLeaderboard)
	apiGroup.GET("/leaderboard.png", s.getLeaderboardImage)

	participants := apiGroup.Group("/participants")
	participants.GET("", s.listParticipants)
	participants.POST("", s.registerParticipant, requireIdentity)
	participants.GET("/:identity", s.getParticipant)

	contests := apiGroup.Group("/contests")
	contests.GET("", s.listContests)
	contests.POST("", s.createContest, requireIdentity)
	contests.GET("/:id", s.getContest)
	contests.GET("/:id/escrow", s.getEscrow)
	contests.GET("/:id/odds", s.getOdds)
	contests.GET("/:id/wagers", s.getWagers)
	contests.GET("/:id/wagers/:bettor", s.getWager)
	contests.POST("/:id/accept", s.acceptContest, requireIdentity)
	contests.POST("/:id/cancel", s.cancelContest, requireIdentity)
	contests.POST("/:id/wagers", s.placeWager, requireIdentity)
	contests.POST("/:id/votes", s.castVote, requireIdentity)
	contests.POST("/:id/settle", s.settle)
	contests.POST("/:id/claim", s.claim, requireIdentity)
}

// Handler exposes the router for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	log.WithField("port", s.port).Info("Starting HTTP API")
	if err := s.echo.Start(":" + s.port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start echo server: %w", err)
	}
	return nil
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown echo server: %w", err)
	}
	return nil
}

// requireIdentity rejects requests without a caller identity
func requireIdentity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if c.Request().Header.Get(IdentityHeader) == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing "+IdentityHeader+" header")
		}
		return next(c)
	}
}

func callerOf(c echo.Context) string {
	return c.Request().Header.Get(IdentityHeader)
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.WithFields(log.Fields{
				"requestID": v.RequestID,
				"method":    v.Method,
				"uri":       v.URI,
				"status":    v.Status,
				"latency":   v.Latency,
			}).Debug("HTTP request")
			return nil
		},
	})
}

// statusFor maps an error kind to its HTTP status
func statusFor(kind entities.ErrorKind) int {
	switch kind {
	case entities.ErrorKindValidation:
		return http.StatusBadRequest
	case entities.ErrorKindState:
		return http.StatusConflict
	case entities.ErrorKindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// errorHandler renders arena errors as ErrorDTO and hides internal failures
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var status int
	var body ErrorDTO

	var arenaErr *entities.ArenaError
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &arenaErr):
		status = statusFor(arenaErr.Kind)
		body = ErrorDTO{Kind: string(arenaErr.Kind), Code: arenaErr.Code, Message: arenaErr.Message}
		if status == http.StatusInternalServerError {
			log.WithFields(log.Fields{
				"path":  c.Path(),
				"error": err,
			}).Error("Arena invariant failure")
		}
	case errors.As(err, &httpErr):
		status = httpErr.Code
		code := strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
		body = ErrorDTO{Kind: "request", Code: code, Message: fmt.Sprint(httpErr.Message)}
	default:
		status = http.StatusInternalServerError
		body = ErrorDTO{Kind: "internal", Code: "internal", Message: "internal server error"}
		log.WithFields(log.Fields{
			"path":  c.Path(),
			"error": err,
		}).Error("Unhandled API error")
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		log.WithError(err).Warn("Failed to write error response")
	}
}
