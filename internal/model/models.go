// models.go
package model

import "time"

// Estados del ciclo de vida de un pedido. No hay guardas de transición:
// cualquier estado puede re-entrarse desde cualquier otro.
const (
	StatusCreated         = "CREATED"
	StatusMessageSent     = "MESSAGE_SENT"
	StatusMessageFailed   = "MESSAGE_FAILED"
	StatusConfirmed       = "CONFIRMADO"
	StatusCancelled       = "CANCELADO"
	StatusModifyRequested = "MODIFICACION_SOLICITADA"
	StatusAddressChange   = "CAMBIO_DIRECCION_SOLICITADO"
	StatusReplyReceived   = "RESPUESTA_RECIBIDA"
)

// Estados válidos (por nombre). No hay catálogo en BD.
var KnownStatuses = map[string]bool{
	StatusCreated:         true,
	StatusMessageSent:     true,
	StatusMessageFailed:   true,
	StatusConfirmed:       true,
	StatusCancelled:       true,
	StatusModifyRequested: true,
	StatusAddressChange:   true,
	StatusReplyReceived:   true,
}

// Remitentes de un mensaje de chat.
const (
	SenderCustomer = "CUSTOMER"
	SenderSystem   = "SYSTEM"
	SenderAdmin    = "ADMIN"
)

// Tipos de mensaje de chat.
const (
	MessageTypeText     = "TEXT"
	MessageTypeButton   = "BUTTON"
	MessageTypeLocation = "LOCATION"
	MessageTypeImage    = "IMAGE"
	MessageTypeDocument = "DOCUMENT"
	MessageTypeAudio    = "AUDIO"
	MessageTypeVideo    = "VIDEO"
	MessageTypeTemplate = "TEMPLATE"
)

// OrderIDNone es el order_id centinela para mensajes sin pedido asociado.
const OrderIDNone = "SIN_PEDIDO"

type Customer struct {
	FirstName string `bson:"first_name" json:"first_name"`
	LastName  string `bson:"last_name" json:"last_name"`
	Email     string `bson:"email" json:"email"`
	Phone     string `bson:"phone" json:"phone"`
}

type ShippingAddress struct {
	Address1   string `bson:"address1" json:"address1"`
	City       string `bson:"city" json:"city"`
	State      string `bson:"state" json:"state"`
	PostalCode string `bson:"postal_code" json:"postal_code"`
	Country    string `bson:"country" json:"country"`
	Phone      string `bson:"phone,omitempty" json:"phone,omitempty"`
}

type OrderItem struct {
	Name     string  `bson:"name" json:"name"`
	Quantity int     `bson:"quantity" json:"quantity"`
	Price    float64 `bson:"price" json:"price"`
}

type Order struct {
	OrderID           string          `bson:"order_id" json:"order_id"`
	Customer          Customer        `bson:"customer" json:"customer"`
	ShippingAddress   ShippingAddress `bson:"shipping_address" json:"shipping_address"`
	LineItems         []OrderItem     `bson:"line_items" json:"line_items"`
	TotalPrice        float64         `bson:"total_price" json:"total_price"`
	Status            string          `bson:"status" json:"status"`
	MessageStatus     string          `bson:"message_status,omitempty" json:"message_status,omitempty"`
	MessageID         string          `bson:"message_id,omitempty" json:"message_id,omitempty"`
	HasUnreadMessages bool            `bson:"has_unread_messages" json:"has_unread_messages"`
	CreatedAt         time.Time       `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `bson:"updated_at" json:"updated_at"`
}

type ChatMessage struct {
	OrderID       string    `bson:"order_id" json:"order_id"`
	Sender        string    `bson:"sender" json:"sender"`
	Message       string    `bson:"message" json:"message"`
	Phone         string    `bson:"phone" json:"phone"`
	MessageType   string    `bson:"message_type" json:"message_type"`
	ButtonPayload string    `bson:"button_payload,omitempty" json:"button_payload,omitempty"`
	MediaURL      string    `bson:"media_url,omitempty" json:"media_url,omitempty"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
	IsRead        bool      `bson:"is_read" json:"is_read"`
}
