package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"arenaapp/domain/entities"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

func contestIDParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid contest id")
	}
	return id, nil
}

func limitParam(c echo.Context) (int, error) {
	raw := c.QueryParam("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	return limit, nil
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getArena(c echo.Context) error {
	arena, err := s.engine.GetArena(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toArenaDTO(arena))
}

func (s *Server) getLeaderboard(c echo.Context) error {
	limit, err := limitParam(c)
	if err != nil {
		return err
	}
	board, err := s.engine.GetLeaderboard(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toParticipantDTOs(board))
}

func (s *Server) getLeaderboardImage(c echo.Context) error {
	limit, err := limitParam(c)
	if err != nil {
		return err
	}
	if limit <= 0 || limit > leaderboardImageRows {
		limit = leaderboardImageRows
	}
	board, err := s.engine.GetLeaderboard(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	img, err := s.scoreboard.GenerateLeaderboard(board)
	if err != nil {
		return fmt.Errorf("failed to render leaderboard: %w", err)
	}
	return c.Blob(http.StatusOK, "image/png", img)
}

func (s *Server) registerParticipant(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	participant, err := s.engine.RegisterParticipant(c.Request().Context(), callerOf(c), req.DisplayName)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toParticipantDTO(participant))
}

func (s *Server) listParticipants(c echo.Context) error {
	limit, err := limitParam(c)
	if err != nil {
		return err
	}
	participants, err := s.engine.ListParticipants(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toParticipantDTOs(participants))
}

func (s *Server) getParticipant(c echo.Context) error {
	participant, err := s.engine.GetParticipant(c.Request().Context(), c.Param("identity"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toParticipantDTO(participant))
}

func (s *Server) listContests(c echo.Context) error {
	limit, err := limitParam(c)
	if err != nil {
		return err
	}

	var status *entities.ContestStatus
	if raw := c.QueryParam("status"); raw != "" {
		st := entities.ContestStatus(raw)
		status = &st
	}

	contests, err := s.engine.ListContests(c.Request().Context(), status, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toContestDTOs(contests))
}

func (s *Server) createContest(c echo.Context) error {
	var req createContestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	ctx := c.Request().Context()
	window, err := s.votingWindow(ctx, req.VotingWindowSeconds)
	if err != nil {
		return err
	}

	contest, err := s.engine.CreateContest(ctx, callerOf(c), req.Opponent, req.Topic, req.Stake, window)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toContestDTO(contest))
}

// votingWindow converts the requested seconds, using the arena default when the field is omitted
func (s *Server) votingWindow(ctx context.Context, seconds *int64) (time.Duration, error) {
	if seconds == nil {
		arena, err := s.engine.GetArena(ctx)
		if err != nil {
			return 0, err
		}
		return arena.DefaultVotingWindow, nil
	}
	if *seconds < 0 || *seconds > int64(entities.MaxVotingWindow/time.Second) {
		return 0, entities.ErrInvalidVotingWindow
	}
	return time.Duration(*seconds) * time.Second, nil
}

func (s *Server) getContest(c echo.Context) error {
	id, err := contestIDParam(c)
	if err != nil {
		return err
	}
	contest, err := s.engine.GetContest(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toContestDTO(contest))
}

func (s *Server) getEscrow(c echo.Context) error {
	id, err := contestIDParam(c)
	if err != nil {
		return err
	}
	escrow, err := s.engine.GetEscrow(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEscrowDTO(escrow))
}

func (s *Server) getOdds(c echo.Context) error {
	id, err := contestIDParam(c)
	if err != nil {
		return err
	}
	odds, err := s.engine.GetOdds(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOddsDTO(odds))
}

func (s *Server) getWagers(c echo.Context) error {
	id, err := contestIDParam(c)
	if err != nil {
		return err
	}
	wagers, err := s.engine.GetWagers(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toWagerDTOs(wagers))
}

func (s *Server) getWager(c echo.Context) error {
	id, err := contestIDParam(c)
	if err != nil {
		return err
	}
	wager, err := s.engine.GetWager(c.Request().Context(), id, c.Param("bettor"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toWagerDTO(wager))
}

func (s *Server) acceptContest(c echo.Context) error {
	id, err := contestIDParam(c)
	if err != nil {
		return err
	}
	var req stakeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	contest, err := s.engine.AcceptContest(c.Request().Context(), id, callerOf(c), req.Stake)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toContestDTO(contest))
}

func (s *Server) cancelContest(c echo.Context) error {
	id, err := contestIDParam(c)
	if err != nil {
		return err
	}
	contest, err := s.engine.CancelContest(c.Request().Context(), id, callerOf(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toContestDTO(contest))
}

func (s *Server) placeWager(c echo.Context) error {
	id, err := contestIDParam(c)
	if err != nil {
		return err
	}
	var req wagerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	side, err := entities.ParseSide(req.Side)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	wager, err := s.engine.PlaceWager(ctx, id, callerOf(c), side, req.Amount)
	if err != nil {
		return err
	}

	dto := toWagerDTO(wager)
	if odds, err := s.engine.GetOdds(ctx, id); err != nil {
		log.WithFields(log.Fields{
			"contestID": id,
			"error":     err,
		}).Warn("Failed to price contest after wager")
	} else {
		oddsDTO := toOddsDTO(odds)
		dto.Odds = &oddsDTO
	}
	return c.JSON(http.StatusCreated, dto)
}

func (s *Server) castVote(c echo.Context) error {
	id, err := contestIDParam(c)
	if err != nil {
		return err
	}
	wager, err := s.engine.CastVote(c.Request().Context(), id, callerOf(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toWagerDTO(wager))
}

func (s *Server) settle(c echo.Context) error {
	id, err := contestIDParam(c)
	if err != nil {
		return err
	}
	result, err := s.engine.Settle(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSettlementDTO(result))
}

func (s *Server) claim(c echo.Context) error {
	id, err := contestIDParam(c)
	if err != nil {
		return err
	}
	wager, err := s.engine.Claim(c.Request().Context(), id, callerOf(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toWagerDTO(wager))
}
