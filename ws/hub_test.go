package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Đợi tới khi GetStats thỏa điều kiện (hub chạy async qua goroutine)
func waitForStats(t *testing.T, cond func(map[string]interface{}) bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond(H.GetStats()) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("hub không đạt trạng thái mong đợi: %v", H.GetStats())
}

func TestHubGroupBroadcast(t *testing.T) {
	groupID := uuid.New()
	upgr := websocket.Upgrader{}

	// Server test theo đúng mô hình handler thật: handler là reader duy
	// nhất của conn, hub chỉ ghi qua writePump.
	handlerDone := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgr.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		H.Register(groupID.String(), conn)
		defer H.Unregister(groupID.String(), conn)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		close(handlerDone)
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)

	waitForStats(t, func(s map[string]interface{}) bool {
		return s["group_clients"].(int) == 1
	})

	BroadcastImportProgress(groupID, 2, 5)

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := client.ReadMessage()
	require.NoError(t, err)

	var update ImportProgressUpdate
	require.NoError(t, json.Unmarshal(msg, &update))
	assert.Equal(t, "import_progress", update.Type)
	assert.Equal(t, groupID.String(), update.GroupID)
	assert.Equal(t, 2, update.Imported)
	assert.Equal(t, 5, update.Total)

	// Client ngắt: handler thoát vòng đọc, hub dọn sạch client
	client.Close()
	select {
	case <-handlerDone:
	case <-time.After(2 * time.Second):
		t.Fatal("handler không thoát sau khi client đóng")
	}
	waitForStats(t, func(s map[string]interface{}) bool {
		return s["group_clients"].(int) == 0
	})
}

func TestHubGlobalBroadcast(t *testing.T) {
	upgr := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgr.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		H.RegisterGlobal(conn)
		defer H.UnregisterGlobal(conn)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer client.Close()

	waitForStats(t, func(s map[string]interface{}) bool {
		return s["global_clients"].(int) == 1
	})

	H.BroadcastGlobal(websocket.TextMessage, []byte(`{"type":"due_count","due_count":7}`))

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := client.ReadMessage()
	require.NoError(t, err)

	var update DueCountUpdate
	require.NoError(t, json.Unmarshal(msg, &update))
	assert.Equal(t, "due_count", update.Type)
	assert.Equal(t, int64(7), update.DueCount)
}
