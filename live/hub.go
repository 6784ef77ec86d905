package live

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/juanmircheva/reservas-app/models"
)

// Event types pushed to dashboard clients
const (
	EventReservationUpdate = "reservation_update"
	EventPaymentUpdate     = "payment_update"
	EventCallUpdate        = "call_update"
	EventMessageIn         = "message_in"
	EventMessageOut        = "message_out"
	EventStaffNotif        = "staff_notification"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub holds all connected dashboard clients.
type Hub struct {
	clients map[*websocket.Conn]bool
	mutex   sync.Mutex
}

var hub = Hub{
	clients: make(map[*websocket.Conn]bool),
}

// RegisterClient adds a connection to the set
func RegisterClient(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	hub.clients[conn] = true
}

// UnregisterClient drops a connection
func UnregisterClient(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	delete(hub.clients, conn)
	conn.Close()
}

// BroadcastReservationUpdate -> reservation created or mutated
func BroadcastReservationUpdate(reservation models.Reservation) {
	broadcast(Message{
		Event: EventReservationUpdate,
		Data:  reservation,
	})
}

// BroadcastPaymentUpdate -> payment recorded or status changed
func BroadcastPaymentUpdate(payment models.Payment) {
	broadcast(Message{
		Event: EventPaymentUpdate,
		Data:  payment,
	})
}

// BroadcastCallUpdate -> call dispatched or webhook status change
func BroadcastCallUpdate(callLog models.CallLog) {
	broadcast(Message{
		Event: EventCallUpdate,
		Data:  callLog,
	})
}

// BroadcastMessageEvent -> whatsapp message appended to a conversation
func BroadcastMessageEvent(message models.Message) {
	event := EventMessageOut
	if message.Direction == "inbound" {
		event = EventMessageIn
	}
	broadcast(Message{
		Event: event,
		Data:  message,
	})
}

// BroadcastStaffNotification -> free-form notice for the dashboard
func BroadcastStaffNotification(text string) {
	broadcast(Message{
		Event: EventStaffNotif,
		Data:  text,
	})
}

func broadcast(msg Message) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}

	for conn := range hub.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("Error sending message to client: %v", err)
			continue
		}
	}
}
