package service

import (
	"context"
	"log"
	"time"

	"order-confirmation-service/internal/model"
	"order-confirmation-service/internal/phone"
)

type ChatRepository interface {
	Insert(ctx context.Context, msg *model.ChatMessage) error
	FindByOrderID(ctx context.Context, orderID string) ([]*model.ChatMessage, error)
	FindByPhoneCandidates(ctx context.Context, candidates []string) ([]*model.ChatMessage, error)
	MarkRead(ctx context.Context, orderID string) (int64, error)
}

type ChatService struct {
	repo        ChatRepository
	orders      *OrderService
	countryCode string
}

func NewChatService(r ChatRepository, orders *OrderService, countryCode string) *ChatService {
	return &ChatService{repo: r, orders: orders, countryCode: countryCode}
}

func (s *ChatService) SaveMessage(ctx context.Context, msg *model.ChatMessage) error {
	if err := s.repo.Insert(ctx, msg); err != nil {
		return err
	}
	log.Printf("Mensaje guardado para el pedido: %s", msg.OrderID)
	return nil
}

func (s *ChatService) GetMessagesByOrderID(ctx context.Context, orderID string) ([]*model.ChatMessage, error) {
	return s.repo.FindByOrderID(ctx, orderID)
}

// GetMessagesByPhone busca mensajes contra las variantes del número, no solo
// el formato exacto con que se guardó.
func (s *ChatService) GetMessagesByPhone(ctx context.Context, rawPhone string) ([]*model.ChatMessage, error) {
	candidates := phone.Candidates(rawPhone, s.countryCode)
	if len(candidates) == 0 {
		return nil, nil
	}
	return s.repo.FindByPhoneCandidates(ctx, candidates)
}

func (s *ChatService) MarkMessagesAsRead(ctx context.Context, orderID string) (int64, error) {
	count, err := s.repo.MarkRead(ctx, orderID)
	if err != nil {
		return 0, err
	}
	log.Printf("%d mensajes marcados como leídos para el pedido %s", count, orderID)
	return count, nil
}

// SaveSystemMessage guarda un mensaje enviado por el sistema.
func (s *ChatService) SaveSystemMessage(ctx context.Context, orderID, phoneNumber, text, msgType string) error {
	return s.SaveMessage(ctx, &model.ChatMessage{
		OrderID:     orderID,
		Sender:      model.SenderSystem,
		Message:     text,
		Phone:       phoneNumber,
		MessageType: msgType,
	})
}

// SaveCustomerMessage guarda un mensaje entrante del cliente, resolviendo el
// pedido por teléfono. Si ningún pedido coincide, el mensaje queda bajo el
// centinela SIN_PEDIDO.
func (s *ChatService) SaveCustomerMessage(ctx context.Context, from, text, msgType, mediaURL string, ts time.Time) (*model.ChatMessage, error) {
	orderID := model.OrderIDNone

	orders, err := s.orders.GetOrdersByPhone(ctx, from, 10)
	if err != nil {
		return nil, err
	}
	if len(orders) > 0 {
		// El más reciente (la búsqueda viene ordenada por created_at desc)
		orderID = orders[0].OrderID
	} else {
		log.Printf("No se encontraron pedidos para el teléfono %s. Guardando mensaje sin asociación.", from)
	}

	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	msg := &model.ChatMessage{
		OrderID:     orderID,
		Sender:      model.SenderCustomer,
		Message:     text,
		Phone:       from,
		MessageType: msgType,
		MediaURL:    mediaURL,
		CreatedAt:   ts,
	}
	if err := s.SaveMessage(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}
