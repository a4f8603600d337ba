package client

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/shoenig/test/must"
	"github.com/shoenig/test/wait"

	"github.com/abennett/roll/pkg/server"
)

func TestSingleClient(t *testing.T) {
	t.Parallel()
	srv := server.NewServer()
	mux := server.NewMux(srv)
	testSrv := httptest.NewServer(mux)

	client, err := New(testSrv.URL, "test1", "tester", io.Discard)
	must.NoError(t, err)

	err = client.Init()
	must.NoError(t, err)

	must.MapContainsKey(t, srv.Rooms, "test1")
	must.Wait(t, wait.InitialSuccess(wait.BoolFunc(func() bool {
		return len(client.Room.Rolls) > 0
	})))

	roomState := srv.GetRooms()["test1"]
	must.Eq(t, roomState, client.Room)

	roll := client.Room.Rolls[0]
	must.EqOp(t, "tester", roll.User)
	sum := 0
	for _, term := range roll.Roll.Terms {
		sum += term.Subtotal
	}
	must.EqOp(t, sum, roll.Roll.Total)
}

func TestMultipleClients(t *testing.T) {
	t.Parallel()
	srv := server.NewServer()
	mux := server.NewMux(srv)
	testSrv := httptest.NewServer(mux)

	client1, err := New(testSrv.URL, "test1", "tester1", io.Discard)
	must.NoError(t, err)

	client2, err := New(testSrv.URL, "test1", "tester2", io.Discard)
	must.NoError(t, err)

	err = client1.Init()
	must.NoError(t, err)

	err = client2.Init()
	must.NoError(t, err)

	must.MapContainsKey(t, srv.Rooms, "test1")
	must.Wait(t, wait.InitialSuccess(wait.BoolFunc(func() bool {
		return client1.Room.Version == 2
	})))
	must.Wait(t, wait.InitialSuccess(wait.BoolFunc(func() bool {
		return client2.Room.Version == 2
	})))

	roomState := srv.GetRooms()["test1"]
	must.Eq(t, roomState, client1.Room)
	must.Eq(t, roomState, client2.Room)
}

func TestRoomNotation(t *testing.T) {
	t.Parallel()
	srv := server.NewServer()
	mux := server.NewMux(srv)
	testSrv := httptest.NewServer(mux)

	_, err := srv.NewRoom("test2", "4d6kh3+2")
	must.NoError(t, err)

	client, err := New(testSrv.URL, "test2", "tester", io.Discard)
	must.NoError(t, err)
	must.NoError(t, client.Init())

	must.Wait(t, wait.InitialSuccess(wait.BoolFunc(func() bool {
		return len(client.Room.Rolls) > 0
	})))

	must.EqOp(t, "4d6kh3+2", client.Room.Notation)
	roll := client.Room.Rolls[0].Roll
	must.Len(t, 2, roll.Terms)
	must.Len(t, 4, roll.Terms[0].Rolls)
	must.Len(t, 3, roll.Terms[0].Used)
	must.EqOp(t, 2, roll.Terms[1].Subtotal)
}

func TestToggleDone(t *testing.T) {
	t.Parallel()
	srv := server.NewServer()
	mux := server.NewMux(srv)
	testSrv := httptest.NewServer(mux)

	client, err := New(testSrv.URL, "done1", "tester", io.Discard)
	must.NoError(t, err)
	must.NoError(t, client.Init())

	must.Wait(t, wait.InitialSuccess(wait.BoolFunc(func() bool {
		return len(client.Room.Rolls) > 0
	})))
	must.False(t, client.Room.Rolls[0].IsDone)

	must.NoError(t, client.ToggleDone())
	must.Wait(t, wait.InitialSuccess(wait.BoolFunc(func() bool {
		return len(client.Room.Rolls) > 0 && client.Room.Rolls[0].IsDone
	})))

	must.NoError(t, client.Close())
	must.Wait(t, wait.InitialSuccess(wait.BoolFunc(func() bool {
		_, err := srv.GetRoom("done1")
		return err != nil
	})))
}
