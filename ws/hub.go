package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"

	"github.com/MU-MU-00/lingocard/models"
)

type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

type Hub struct {
	Clients       map[string]map[*websocket.Conn]*Client // Theo từng groupID
	GlobalClients map[*websocket.Conn]*Client            // Dành cho broadcast chung
	Mutex         sync.RWMutex
}

var H = Hub{
	Clients:       make(map[string]map[*websocket.Conn]*Client),
	GlobalClients: make(map[*websocket.Conn]*Client),
}

// Struct gửi tiến trình import vào 1 nhóm
type ImportProgressUpdate struct {
	Type     string `json:"type"`
	GroupID  string `json:"group_id"`
	Imported int    `json:"imported"`
	Total    int    `json:"total"`
}

// Struct gửi số term đến hạn sau mỗi thay đổi
type DueCountUpdate struct {
	Type     string    `json:"type"`
	GroupID  string    `json:"group_id,omitempty"`
	DueCount int64     `json:"due_count"`
	At       time.Time `json:"at"`
}

// Register theo groupID riêng
func (h *Hub) Register(groupID string, conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if _, ok := h.Clients[groupID]; !ok {
		h.Clients[groupID] = make(map[*websocket.Conn]*Client)
	}

	client := &Client{
		Conn: conn,
		Send: make(chan []byte, 256),
	}

	h.Clients[groupID][conn] = client

	// Handler HTTP là reader duy nhất của conn; hub chỉ lo chiều ghi
	go h.writePump(client)
}

// Register global cho trang danh sách
func (h *Hub) RegisterGlobal(conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	client := &Client{
		Conn: conn,
		Send: make(chan []byte, 256),
	}

	h.GlobalClients[conn] = client

	go h.writePump(client)
}

// Broadcast theo groupID
func (h *Hub) Broadcast(groupID string, messageType int, data []byte) {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	if clients, ok := h.Clients[groupID]; ok {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
			}
		}
	}
}

// Broadcast toàn bộ global clients (danh sách)
func (h *Hub) BroadcastGlobal(messageType int, data []byte) {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	for _, client := range h.GlobalClients {
		select {
		case client.Send <- data:
		default:
		}
	}
}

// GetStats trả số client đang kết nối, dùng cho health check
func (h *Hub) GetStats() map[string]interface{} {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	groupConns := 0
	for _, clients := range h.Clients {
		groupConns += len(clients)
	}
	return map[string]interface{}{
		"global_clients": len(h.GlobalClients),
		"group_clients":  groupConns,
		"groups_watched": len(h.Clients),
	}
}

// BroadcastImportProgress báo tiến trình import cho client đang xem nhóm
func BroadcastImportProgress(groupID uuid.UUID, imported, total int) {
	update := ImportProgressUpdate{
		Type:     "import_progress",
		GroupID:  groupID.String(),
		Imported: imported,
		Total:    total,
	}
	data, err := json.Marshal(update)
	if err != nil {
		log.Println("JSON marshal error:", err)
		return
	}
	H.Broadcast(groupID.String(), websocket.TextMessage, data)
}

// NotifyTermsChanged đẩy số term đến hạn mới nhất sau khi dữ liệu đổi
// (tạo/xóa term, import, chốt phiên ôn tập). Lỗi query chỉ log.
func NotifyTermsChanged(db *gorm.DB, groupID *uuid.UUID) {
	now := time.Now()

	var dueAll int64
	if err := db.Model(&models.Term{}).
		Where("next_review_date <= ?", now).
		Count(&dueAll).Error; err != nil {
		log.Println("Không đếm được term đến hạn:", err)
		return
	}

	global := DueCountUpdate{Type: "due_count", DueCount: dueAll, At: now}
	if data, err := json.Marshal(global); err == nil {
		H.BroadcastGlobal(websocket.TextMessage, data)
	}

	if groupID == nil {
		return
	}

	var dueGroup int64
	if err := db.Model(&models.Term{}).
		Where("group_id = ? AND next_review_date <= ?", *groupID, now).
		Count(&dueGroup).Error; err != nil {
		return
	}

	update := DueCountUpdate{Type: "due_count", GroupID: groupID.String(), DueCount: dueGroup, At: now}
	if data, err := json.Marshal(update); err == nil {
		H.Broadcast(groupID.String(), websocket.TextMessage, data)
	}
}

// Unregister client theo groupID
func (h *Hub) Unregister(groupID string, conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if clients, ok := h.Clients[groupID]; ok {
		if client, ok := clients[conn]; ok {
			close(client.Send)
			delete(clients, conn)
		}
		if len(clients) == 0 {
			delete(h.Clients, groupID)
		}
	}
}

// Unregister global client
func (h *Hub) UnregisterGlobal(conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if client, ok := h.GlobalClients[conn]; ok {
		close(client.Send)
		delete(h.GlobalClients, conn)
	}
}

// Write pump: cạn kênh Send rồi đóng conn khi client bị unregister
func (h *Hub) writePump(client *Client) {
	defer func() {
		client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
		client.Conn.Close()
	}()
	for msg := range client.Send {
		if err := client.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}
