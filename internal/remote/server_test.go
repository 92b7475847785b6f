package remote

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"piggy-viewer/internal/params"
)

func newTestStore(t *testing.T) *params.Store {
	t.Helper()
	s := params.NewStore()
	require.NoError(t, s.AddBool("autoRotate", "Auto Rotate", "Scene", true))
	require.NoError(t, s.AddNumber("pixelSize", "Pixel Size", "Scene", 2, 16, 4))
	return s
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readChange(t *testing.T, conn *websocket.Conn) params.Change {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var c params.Change
	require.NoError(t, conn.ReadJSON(&c))
	return c
}

func TestParamsEndpoint(t *testing.T) {
	store := newTestStore(t)
	srv := httptest.NewServer(New(store, make(chan params.Change, 1)).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/params")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body struct {
		Fields []struct {
			Name  string  `json:"name"`
			Label string  `json:"label"`
			Group string  `json:"group"`
			Kind  string  `json:"kind"`
			Min   float64 `json:"min"`
			Max   float64 `json:"max"`
		} `json:"fields"`
		Values map[string]any `json:"values"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Fields, 2)
	assert.Equal(t, "autoRotate", body.Fields[0].Name)
	assert.Equal(t, "bool", body.Fields[0].Kind)
	assert.Equal(t, "pixelSize", body.Fields[1].Name)
	assert.Equal(t, "Pixel Size", body.Fields[1].Label)
	assert.Equal(t, 2.0, body.Fields[1].Min)
	assert.Equal(t, 16.0, body.Fields[1].Max)
	assert.Equal(t, map[string]any{"autoRotate": true, "pixelSize": 4.0}, body.Values)
}

func TestParamsEndpointRejectsPost(t *testing.T) {
	srv := httptest.NewServer(New(newTestStore(t), make(chan params.Change, 1)).Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/params", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestWebSocketSendsSnapshotThenChanges(t *testing.T) {
	store := newTestStore(t)
	srv := httptest.NewServer(New(store, make(chan params.Change, 1)).Handler())
	defer srv.Close()
	conn := dial(t, srv)

	assert.Equal(t, params.Change{Name: "autoRotate", Value: true}, readChange(t, conn))
	assert.Equal(t, params.Change{Name: "pixelSize", Value: 4.0}, readChange(t, conn))

	require.NoError(t, store.Set("pixelSize", 100))
	assert.Equal(t, params.Change{Name: "pixelSize", Value: 16.0}, readChange(t, conn))
}

func TestWebSocketQueuesIncomingChanges(t *testing.T) {
	store := newTestStore(t)
	out := make(chan params.Change, 4)
	srv := httptest.NewServer(New(store, out).Handler())
	defer srv.Close()
	conn := dial(t, srv)

	require.NoError(t, conn.WriteJSON(params.Change{Name: "missing", Value: 1}))
	require.NoError(t, conn.WriteJSON(params.Change{Name: "pixelSize", Value: 8}))

	select {
	case c := <-out:
		assert.Equal(t, params.Change{Name: "pixelSize", Value: 8.0}, c)
	case <-time.After(2 * time.Second):
		t.Fatal("no change queued")
	}
	assert.Empty(t, out)

	// queued, not applied
	v, err := store.Number("pixelSize")
	require.NoError(t, err)
	assert.Equal(t, 4.0, v)
}

func TestClientDisconnect(t *testing.T) {
	s := New(newTestStore(t), make(chan params.Change, 1))
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()
	conn := dial(t, srv)
	readChange(t, conn)
	assert.Equal(t, 1, s.Clients())

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	assert.Eventually(t, func() bool { return s.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestRegisterNeverMissesAChange(t *testing.T) {
	store := newTestStore(t)
	s := New(store, make(chan params.Change, 1))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 20; i++ {
			store.Set("pixelSize", float64(2+i%10))
		}
		store.Set("pixelSize", 16.0)
	}()

	var clients []*client
	for i := 0; i < 8; i++ {
		clients = append(clients, s.register(nil))
	}
	<-done

	// whatever interleaving happened, each client's last word on pixelSize
	// is the store's final value
	for i, c := range clients {
		var last params.Change
		for len(c.send) > 0 {
			var ch params.Change
			require.NoError(t, json.Unmarshal(<-c.send, &ch))
			if ch.Name == "pixelSize" {
				last = ch
			}
		}
		assert.Equal(t, params.Change{Name: "pixelSize", Value: 16.0}, last, "client %d", i)
	}
	assert.Equal(t, 8, s.Clients())
}
