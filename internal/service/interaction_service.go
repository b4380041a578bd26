package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"order-confirmation-service/internal/model"
	"order-confirmation-service/internal/whatsapp"
)

// MessageGateway es la interfaz mínima del proveedor de mensajería que
// consumen los servicios.
type MessageGateway interface {
	SendText(ctx context.Context, to, body string) (*whatsapp.SendResult, error)
	SendButtons(ctx context.Context, to, body, header string, buttons []whatsapp.Button) (*whatsapp.SendResult, error)
	SendTemplate(ctx context.Context, to, name, lang string, params []string) (*whatsapp.SendResult, error)
}

// Clasificación de una respuesta entrante.
type replyKind int

const (
	replyConfirm replyKind = iota
	replyModifyOrder
	replyModifyShipping
	replyCancel
	replyOther
)

// IDs de botón y títulos conocidos. El id es autoritativo cuando viene;
// el título es el fallback para clientes que solo envían el texto.
const (
	ButtonConfirm        = "confirm"
	ButtonModifyOrder    = "change"
	ButtonModifyShipping = "change_shipping"
	ButtonCancel         = "cancel"

	TitleConfirm        = "Confirmar pedido"
	TitleModifyOrder    = "Modificar pedido"
	TitleModifyShipping = "Modificar datos de envío"
	TitleCancel         = "Cancelar pedido"
)

func classifyReply(buttonID, title string) replyKind {
	switch buttonID {
	case ButtonConfirm:
		return replyConfirm
	case ButtonModifyOrder:
		return replyModifyOrder
	case ButtonModifyShipping:
		return replyModifyShipping
	case ButtonCancel:
		return replyCancel
	}

	switch title {
	case TitleConfirm:
		return replyConfirm
	case TitleModifyOrder:
		return replyModifyOrder
	case TitleModifyShipping:
		return replyModifyShipping
	case TitleCancel:
		return replyCancel
	}

	return replyOther
}

// Texto de negocio y estado destino de cada clasificación.
func replyResponse(kind replyKind) (string, string) {
	switch kind {
	case replyConfirm:
		return "¡Gracias por confirmar tu pedido! 🎉\n\n" +
			"Tu pedido ha sido registrado y será procesado inmediatamente.\n" +
			"Te mantendremos informado sobre el estado de tu envío. 📦\n\n" +
			"¿Necesitas algo más? Estamos aquí para ayudarte. 😊", model.StatusConfirmed
	case replyModifyOrder:
		return "Entendido, vamos a modificar tu pedido. 📝\n\n" +
			"Por favor, indícanos qué cambios deseas realizar:\n" +
			"- Cantidad\n" +
			"- Producto\n" +
			"- Otro\n\n" +
			"Un asesor te atenderá en breve. 👨‍💼", model.StatusModifyRequested
	case replyModifyShipping:
		return "Vamos a actualizar tus datos de envío. 🏠\n\n" +
			"Por favor, envíanos:\n" +
			"1. Dirección completa\n" +
			"2. Ciudad\n" +
			"3. Nombre del destinatario\n" +
			"4. Teléfono de contacto\n\n" +
			"Un asesor procesará los cambios pronto. ✅", model.StatusAddressChange
	case replyCancel:
		return "Lamentamos que hayas cancelado tu pedido. ¿Podemos ayudarte con algo más?", model.StatusCancelled
	default:
		return "Hemos recibido tu respuesta. Gracias por contactarnos.", model.StatusReplyReceived
	}
}

const agentWillContactReply = "Hemos recibido tu mensaje. Un asesor te contactará pronto. 👨‍💼"

// InteractionService procesa las respuestas entrantes del cliente: clasifica
// la respuesta, actualiza el estado del pedido, envía la respuesta de negocio
// y registra ambos lados de la conversación. Ningún fallo interno se propaga:
// el webhook siempre responde 200 al proveedor.
type InteractionService struct {
	orders  *OrderService
	chat    *ChatService
	gateway MessageGateway
}

func NewInteractionService(orders *OrderService, chat *ChatService, gateway MessageGateway) *InteractionService {
	return &InteractionService{orders: orders, chat: chat, gateway: gateway}
}

// HandleButtonReply procesa la pulsación de un botón (button_reply,
// list_reply o botón de plantilla).
func (s *InteractionService) HandleButtonReply(ctx context.Context, from, buttonID, title string, ts time.Time) {
	if from == "" {
		log.Println("Respuesta de botón sin número de origen; se ignora")
		return
	}

	log.Printf("Procesando respuesta de botón %q (id=%q) para el número %s", title, buttonID, from)

	kind := classifyReply(buttonID, title)
	responseText, newStatus := replyResponse(kind)

	orderID := model.OrderIDNone
	orders, err := s.orders.GetOrdersByPhone(ctx, from, 1)
	if err != nil {
		log.Printf("Error buscando pedido para %s: %v", from, err)
	} else if len(orders) > 0 {
		orderID = orders[0].OrderID
	}

	inbound := &model.ChatMessage{
		OrderID:       orderID,
		Sender:        model.SenderCustomer,
		Message:       fmt.Sprintf("Selected: %s", title),
		Phone:         from,
		MessageType:   model.MessageTypeButton,
		ButtonPayload: buttonID,
		CreatedAt:     ts,
	}
	if err := s.chat.SaveMessage(ctx, inbound); err != nil {
		log.Printf("Error guardando mensaje entrante: %v", err)
	}

	if orderID != model.OrderIDNone {
		if _, err := s.orders.UpdateOrderStatus(ctx, orderID, newStatus, map[string]interface{}{
			"has_unread_messages": true,
		}); err != nil {
			log.Printf("Error actualizando estado del pedido %s: %v", orderID, err)
		}
	}

	// Mejor esfuerzo: el cliente recibe respuesta aunque no haya pedido
	if _, err := s.gateway.SendText(ctx, from, responseText); err != nil {
		log.Printf("Error enviando respuesta a %s: %v", from, err)
		return
	}

	if err := s.chat.SaveSystemMessage(ctx, orderID, from, responseText, model.MessageTypeText); err != nil {
		log.Printf("Error guardando mensaje del sistema: %v", err)
	}
}

// HandleTextMessage procesa un mensaje de texto libre: asocia el mensaje al
// pedido más reciente y marca el pedido como respondido. Si ningún pedido
// coincide, envía la respuesta genérica.
func (s *InteractionService) HandleTextMessage(ctx context.Context, from, text string, ts time.Time) {
	if from == "" {
		log.Println("Mensaje de texto sin número de origen; se ignora")
		return
	}

	msg, err := s.chat.SaveCustomerMessage(ctx, from, text, model.MessageTypeText, "", ts)
	if err != nil {
		log.Printf("Error guardando mensaje de texto de %s: %v", from, err)
		return
	}

	if msg.OrderID == model.OrderIDNone {
		if _, err := s.gateway.SendText(ctx, from, agentWillContactReply); err != nil {
			log.Printf("Error enviando respuesta genérica a %s: %v", from, err)
			return
		}
		if err := s.chat.SaveSystemMessage(ctx, model.OrderIDNone, from, agentWillContactReply, model.MessageTypeText); err != nil {
			log.Printf("Error guardando respuesta genérica: %v", err)
		}
		return
	}

	if _, err := s.orders.UpdateOrderStatus(ctx, msg.OrderID, model.StatusReplyReceived, map[string]interface{}{
		"has_unread_messages": true,
	}); err != nil {
		log.Printf("Error actualizando estado del pedido %s: %v", msg.OrderID, err)
	}
}

// HandleMediaMessage registra un mensaje multimedia (ubicación, imagen,
// documento, audio, video) como texto descriptivo. No se descarga el
// contenido ni se responde.
func (s *InteractionService) HandleMediaMessage(ctx context.Context, from, description, msgType, mediaURL string, ts time.Time) {
	if from == "" {
		log.Println("Mensaje multimedia sin número de origen; se ignora")
		return
	}

	msg, err := s.chat.SaveCustomerMessage(ctx, from, description, msgType, mediaURL, ts)
	if err != nil {
		log.Printf("Error guardando mensaje multimedia de %s: %v", from, err)
		return
	}

	if msg.OrderID != model.OrderIDNone {
		if _, err := s.orders.UpdateUnreadMessagesStatus(ctx, msg.OrderID, true); err != nil {
			log.Printf("Error marcando mensajes no leídos del pedido %s: %v", msg.OrderID, err)
		}
	}
}
