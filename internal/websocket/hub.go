// Package websocket рассылает итоги циклов обновления подписчикам.
package websocket

import (
	"sync"

	jsoniter "github.com/json-iterator/go"

	"leverage/internal/models"
	"leverage/pkg/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// MetricsUpdateMessage - сообщение об итогах цикла обновления метрик
type MetricsUpdateMessage struct {
	Type   string                `json:"type"`
	Report *models.RefreshReport `json:"report"`
}

// Hub управляет всеми активными WebSocket соединениями.
//
// Назначение:
// Подписчики (торговые боты, дашборды) узнают о свежих метриках сразу
// после завершения цикла обновления, без polling'а REST API.
//
// Использование:
// 1. Создать hub: hub := NewHub(logger)
// 2. Запустить в горутине: go hub.Run()
// 3. Отправлять сообщения: hub.BroadcastMetricsUpdate(report)
type Hub struct {
	// Зарегистрированные клиенты
	clients map[*Client]bool

	// Broadcast канал для отправки сообщений всем клиентам
	broadcast chan []byte

	// Регистрация нового клиента
	register chan *Client

	// Отмена регистрации клиента
	unregister chan *Client

	logger *utils.Logger

	mu sync.RWMutex
}

// NewHub создает новый Hub
func NewHub(logger *utils.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger.WithComponent("websocket"),
	}
}

// Run запускает главный цикл Hub.
// Должен запускаться в отдельной горутине: go hub.Run()
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("client connected", utils.Int("total_clients", total))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("client disconnected", utils.Int("total_clients", total))

		case message := <-h.broadcast:
			// Копируем список клиентов под коротким RLock,
			// отправляем без блокировки
			h.mu.RLock()
			clients := make([]*Client, 0, len(h.clients))
			for client := range h.clients {
				clients = append(clients, client)
			}
			h.mu.RUnlock()

			var toRemove []*Client
			for _, client := range clients {
				select {
				case client.send <- message:
				default:
					// Клиент не успевает читать - отключаем
					toRemove = append(toRemove, client)
				}
			}

			if len(toRemove) > 0 {
				h.mu.Lock()
				for _, client := range toRemove {
					if _, ok := h.clients[client]; ok {
						delete(h.clients, client)
						close(client.send)
					}
				}
				h.mu.Unlock()
				h.logger.Warn("removed slow clients", utils.Int("removed", len(toRemove)))
			}
		}
	}
}

// Broadcast сериализует сообщение и отправляет всем подключенным клиентам
func (h *Hub) Broadcast(message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("marshal broadcast message", utils.Err(err))
		return
	}

	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn("broadcast buffer full, message dropped")
	}
}

// BroadcastMetricsUpdate отправляет итоги цикла обновления метрик
func (h *Hub) BroadcastMetricsUpdate(report *models.RefreshReport) {
	h.Broadcast(&MetricsUpdateMessage{
		Type:   "metricsUpdate",
		Report: report,
	})
}

// ClientCount возвращает количество подключенных клиентов
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
