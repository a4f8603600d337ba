package server

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shoenig/test/must"

	"github.com/abennett/roll/pkg"
	"github.com/abennett/roll/pkg/messages"
)

func TestNewRoom_BadNotation(t *testing.T) {
	t.Parallel()
	srv := NewServer()
	_, err := srv.NewRoom("bad", "1d")
	must.Error(t, err)
	var syntaxErr *pkg.SyntaxError
	must.True(t, errors.As(err, &syntaxErr))
}

func TestNewRoom_Duplicate(t *testing.T) {
	t.Parallel()
	srv := NewServer()
	_, err := srv.NewRoom("dupe", "1d20")
	must.NoError(t, err)
	_, err = srv.NewRoom("dupe", "1d20")
	must.ErrorIs(t, err, ErrRoomExists)
}

func TestServeHTTP_BadNotation(t *testing.T) {
	t.Parallel()
	srv := NewServer()
	testSrv := httptest.NewServer(NewMux(srv))
	defer testSrv.Close()

	resp, err := http.Get(testSrv.URL + "/badroom?roll=1d")
	must.NoError(t, err)
	defer resp.Body.Close()
	must.EqOp(t, http.StatusBadRequest, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	must.NoError(t, err)
	must.StrContains(t, string(body), "invalid dice notation")
}

func TestRoomToState(t *testing.T) {
	t.Parallel()
	srv := NewServer().WithSource(pkg.Seeded(1))
	room, err := srv.NewRoom("state", "4d6kh3+2")
	must.NoError(t, err)

	must.NoError(t, room.Update(rollFor(room, "alice")))
	must.NoError(t, room.Update(rollFor(room, "bob")))

	state := room.ToState()
	must.EqOp(t, 2, state.Version)
	must.EqOp(t, "4d6kh3+2", state.Notation)
	must.Len(t, 2, state.Rolls)
	// sorted by total, highest first
	must.True(t, state.Rolls[0].Roll.Total >= state.Rolls[1].Roll.Total)
	for _, roll := range state.Rolls {
		sum := 0
		for _, term := range roll.Roll.Terms {
			sum += term.Subtotal
		}
		must.EqOp(t, sum, roll.Roll.Total)
	}
}

func rollFor(room *Room, user string) messages.RollResult {
	return messages.RollResult{
		User: user,
		Roll: pkg.Resolve(room.Dice, room.source),
	}
}
