package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rocketscienceinc/fourpiece-tictactoe/internal/entity"
	"github.com/rocketscienceinc/fourpiece-tictactoe/internal/repository"
	"github.com/rocketscienceinc/fourpiece-tictactoe/internal/service"
	"github.com/rocketscienceinc/fourpiece-tictactoe/internal/usecase"
)

const consoleGameID = "console"

const (
	human = entity.PlayerX
	bot   = entity.PlayerO
)

// main - plays one game on the terminal: the human is X, the random bot is O.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	manager := usecase.NewGameManager(
		logger,
		repository.NewMemoryGameRepository(),
		service.NewRandomStrategy(nil),
		service.NewTextInterpreter(),
		usecase.Settings{},
	)

	if err := run(ctx, manager, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "console failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, manager *usecase.GameManager, in io.Reader, out io.Writer) error {
	game, err := manager.EnsureGame(ctx, consoleGameID)
	if err != nil {
		return fmt.Errorf("failed to start game: %w", err)
	}

	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprintln(out, game.String())

		if game.IsFinished() {
			announce(out, game)
			return nil
		}

		fmt.Fprint(out, prompt(game))

		if !scanner.Scan() {
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "quit", "exit":
			return nil
		case "reset":
			outcome, err := manager.Reset(ctx, consoleGameID)
			if err != nil {
				return err
			}
			game = outcome.Game
			continue
		}

		outcome, err := manager.Command(ctx, consoleGameID, human, line)
		if err != nil {
			fmt.Fprintf(out, "didn't understand %q, try \"b2\" or \"move a1 to c3\"\n", line)
			continue
		}

		if !outcome.Success {
			fmt.Fprintln(out, outcome.Message)
			continue
		}

		game = outcome.Game
		if game.IsFinished() {
			continue
		}

		reply, err := manager.BotTurn(ctx, consoleGameID, bot)
		if err != nil {
			return err
		}

		fmt.Fprintln(out, "bot:", reply.Message)
		game = reply.Game
	}
}

func prompt(game *entity.Game) string {
	if len(game.Pieces[human]) < entity.PieceCap {
		return "your move (e.g. b2 or \"top left\"): "
	}
	return "all four pieces are out, move one (e.g. move a1 to c3): "
}

func announce(out io.Writer, game *entity.Game) {
	switch {
	case game.IsDraw():
		fmt.Fprintln(out, "draw")
	case game.Winner == human:
		fmt.Fprintln(out, "you win")
	default:
		fmt.Fprintln(out, "the bot wins")
	}
}
