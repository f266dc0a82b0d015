package status_test

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mogaika/cubism_renderer/render"
	"github.com/mogaika/cubism_renderer/status"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	return conn
}

func read(t *testing.T, conn *websocket.Conn) status.Message {
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	var m status.Message
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	return m
}

func waitClients(t *testing.T, hub *status.Hub, n int) {
	for i := 0; i < 500; i++ {
		if hub.Clients() == n {
			return
		}
		time.Sleep(time.Millisecond * 10)
	}
	t.Fatalf("hub has %d clients; expected %d", hub.Clients(), n)
}

func TestHubBroadcast(t *testing.T) {
	hub := status.NewHub()
	defer hub.Close()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	defer conn.Close()
	waitClients(t, hub, 1)

	hub.Error("drawable %d skipped", 3)
	if m := read(t, conn); m.Type != status.ERROR || m.Text != "drawable 3 skipped" {
		t.Errorf("got %+v", m)
	}

	hub.Frame(7, render.DrawStats{DrawCalls: 5, MaskPasses: 1})
	m := read(t, conn)
	if m.Type != status.FRAME || m.Frame != 7 || m.Stats == nil || m.Stats.DrawCalls != 5 {
		t.Errorf("got %+v", m)
	}
}

func TestHubReplaysLastMessages(t *testing.T) {
	hub := status.NewHub()
	defer hub.Close()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	// a first client makes sure both messages went through the broadcaster
	first := dial(t, srv)
	defer first.Close()
	waitClients(t, hub, 1)
	hub.Info("loaded")
	hub.Frame(1, render.DrawStats{DrawCalls: 2})
	read(t, first)
	read(t, first)

	late := dial(t, srv)
	defer late.Close()
	if m := read(t, late); m.Type != status.INFO || m.Text != "loaded" {
		t.Errorf("first replayed message %+v", m)
	}
	if m := read(t, late); m.Type != status.FRAME || m.Frame != 1 {
		t.Errorf("second replayed message %+v", m)
	}
}

func TestHubDropsClosedClients(t *testing.T) {
	hub := status.NewHub()
	defer hub.Close()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	waitClients(t, hub, 1)
	conn.Close()
	waitClients(t, hub, 0)
}
