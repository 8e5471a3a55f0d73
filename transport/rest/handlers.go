package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/fourpiece-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/fourpiece-tictactoe/internal/entity"
	"github.com/rocketscienceinc/fourpiece-tictactoe/internal/usecase"
	"github.com/rocketscienceinc/fourpiece-tictactoe/transport/dto"
)

const maxBodyBytes = 1 << 16

type gameManager interface {
	CreateGame(ctx context.Context) (*usecase.Outcome, error)
	GetGame(ctx context.Context, id string) (*entity.Game, error)
	EnsureGame(ctx context.Context, id string) (*entity.Game, error)
	DeleteGame(ctx context.Context, id string) error
	Act(ctx context.Context, id string, action entity.Action) (*usecase.Outcome, error)
	BotTurn(ctx context.Context, id, player string) (*usecase.Outcome, error)
	Command(ctx context.Context, id, player, text string) (*usecase.Outcome, error)
	Reset(ctx context.Context, id string) (*usecase.Outcome, error)
}

type gameHandlers struct {
	logger  *slog.Logger
	manager gameManager
}

func (that *gameHandlers) createGame(w http.ResponseWriter, r *http.Request) {
	outcome, err := that.manager.CreateGame(r.Context())
	if err != nil {
		that.writeFailure(w, r, err)
		return
	}

	that.writeJSON(w, http.StatusCreated, dto.FromOutcome(outcome))
}

func (that *gameHandlers) getGame(w http.ResponseWriter, r *http.Request) {
	id, err := that.gameID(r)
	if err != nil {
		that.writeFailure(w, r, err)
		return
	}

	game, err := that.manager.GetGame(r.Context(), id)
	if err != nil {
		that.writeFailure(w, r, err)
		return
	}

	that.writeJSON(w, http.StatusOK, dto.NewGameState(true, "game state fetched", game))
}

func (that *gameHandlers) deleteGame(w http.ResponseWriter, r *http.Request) {
	if err := that.manager.DeleteGame(r.Context(), chi.URLParam(r, "id")); err != nil {
		that.writeFailure(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *gameHandlers) act(w http.ResponseWriter, r *http.Request) {
	var request dto.ActionRequest
	if err := decode(w, r, &request); err != nil {
		that.writeFailure(w, r, err)
		return
	}

	action, err := request.ToAction()
	if err != nil {
		that.writeFailure(w, r, err)
		return
	}

	that.respond(w, r, func(ctx context.Context, id string) (*usecase.Outcome, error) {
		return that.manager.Act(ctx, id, action)
	})
}

func (that *gameHandlers) reset(w http.ResponseWriter, r *http.Request) {
	that.respond(w, r, that.manager.Reset)
}

func (that *gameHandlers) bot(w http.ResponseWriter, r *http.Request) {
	var request dto.BotRequest
	if err := decode(w, r, &request); err != nil {
		that.writeFailure(w, r, err)
		return
	}

	that.respond(w, r, func(ctx context.Context, id string) (*usecase.Outcome, error) {
		return that.manager.BotTurn(ctx, id, request.Player)
	})
}

func (that *gameHandlers) command(w http.ResponseWriter, r *http.Request) {
	var request dto.CommandRequest
	if err := decode(w, r, &request); err != nil {
		that.writeFailure(w, r, err)
		return
	}

	that.respond(w, r, func(ctx context.Context, id string) (*usecase.Outcome, error) {
		return that.manager.Command(ctx, id, request.Player, request.Text)
	})
}

func (that *gameHandlers) respond(w http.ResponseWriter, r *http.Request, run func(ctx context.Context, id string) (*usecase.Outcome, error)) {
	id, err := that.gameID(r)
	if err != nil {
		that.writeFailure(w, r, err)
		return
	}

	outcome, err := run(r.Context(), id)
	if err != nil {
		that.writeFailure(w, r, err)
		return
	}

	that.writeJSON(w, http.StatusOK, dto.FromOutcome(outcome))
}

// gameID resolves the game a request targets; the single-table routes have no {id} and use the
// default game, created on first use.
func (that *gameHandlers) gameID(r *http.Request) (string, error) {
	if id := chi.URLParam(r, "id"); id != "" {
		return id, nil
	}

	if _, err := that.manager.EnsureGame(r.Context(), usecase.DefaultGameID); err != nil {
		return "", err
	}

	return usecase.DefaultGameID, nil
}

func (that *gameHandlers) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case apperror.IsMalformed(err):
		that.writeJSON(w, http.StatusBadRequest, dto.NewErrorResponse(err.Error()))
	case errors.Is(err, apperror.ErrGameNotFound):
		that.writeJSON(w, http.StatusNotFound, dto.NewErrorResponse(apperror.ErrGameNotFound.Error()))
	default:
		that.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		that.writeJSON(w, http.StatusInternalServerError, dto.NewErrorResponse("internal server error"))
	}
}

func (that *gameHandlers) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		that.logger.Error("failed to encode response", "error", err)
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrMalformedRequest, err)
	}

	return nil
}
