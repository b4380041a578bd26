package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"order-confirmation-service/internal/config"
	"order-confirmation-service/internal/dto"
	"order-confirmation-service/internal/model"
	"order-confirmation-service/internal/phone"
	"order-confirmation-service/internal/whatsapp"
)

// ErrGateway indica que el pedido se guardó pero el mensaje de confirmación
// no pudo enviarse.
var ErrGateway = errors.New("error al enviar el mensaje a WhatsApp")

// OrderIntakeService ingiere un pedido nuevo (desde el webhook o desde la
// cola) y dispara el mensaje de confirmación al cliente.
type OrderIntakeService struct {
	orders  *OrderService
	chat    *ChatService
	gateway MessageGateway
	cfg     *config.Config
}

func NewOrderIntakeService(orders *OrderService, chat *ChatService, gateway MessageGateway, cfg *config.Config) *OrderIntakeService {
	return &OrderIntakeService{orders: orders, chat: chat, gateway: gateway, cfg: cfg}
}

// IngestOrder valida, persiste y confirma un pedido. Devuelve ErrValidation
// si el payload está incompleto y ErrGateway (envuelto) si el pedido quedó
// guardado pero el envío falló.
func (s *OrderIntakeService) IngestOrder(ctx context.Context, payload *dto.OrderPayload) (*model.Order, error) {
	if payload == nil || payload.Customer == nil || payload.ShippingAddress == nil {
		return nil, fmt.Errorf("%w: faltan customer o shipping_address", ErrValidation)
	}

	customerPhone := payload.FindCustomerPhone()
	if customerPhone == "" {
		customerPhone = s.cfg.DefaultPhone
		log.Printf("No se encontró número de teléfono en la orden, usando número por defecto: %s", customerPhone)
	} else {
		log.Printf("Número de teléfono encontrado en la orden: %s", customerPhone)
	}

	order := payloadToOrder(payload, customerPhone)

	saved, err := s.orders.CreateOrder(ctx, order)
	if err != nil {
		return nil, err
	}

	// Datos para el mensaje de confirmación
	customerName := strings.TrimSpace(payload.Customer.FirstName + " " + payload.Customer.LastName)
	if customerName == "" {
		customerName = "Cliente"
	}
	itemsSummary := lineItemsSummary(payload.LineItems)
	totalAmount := formatAmount(payload.TotalPrice)
	city := payload.ShippingAddress.City
	if city == "" {
		city = "Ciudad desconocida"
	}
	address := payload.ShippingAddress.Address1
	if address == "" {
		address = "Dirección desconocida"
	}

	formattedPhone := phone.Format(customerPhone, s.cfg.DefaultCountryCode)
	log.Printf("Enviando mensaje de confirmación a %s", formattedPhone)

	var result *whatsapp.SendResult
	var sendErr error
	var systemText, systemType string

	if s.cfg.UseTemplate {
		params := []string{customerName, itemsSummary, totalAmount, city, address}
		result, sendErr = s.gateway.SendTemplate(ctx, formattedPhone, s.cfg.TemplateName, s.cfg.TemplateLang, params)
		systemText = fmt.Sprintf("Mensaje de plantilla enviado: %s", s.cfg.TemplateName)
		systemType = model.MessageTypeTemplate
	} else {
		body := confirmationMessage(customerName, itemsSummary, totalAmount, city, address)
		buttons := []whatsapp.Button{
			{ID: ButtonConfirm, Title: TitleConfirm},
			{ID: ButtonModifyOrder, Title: TitleModifyOrder},
			{ID: ButtonCancel, Title: TitleCancel},
		}
		result, sendErr = s.gateway.SendButtons(ctx, formattedPhone, body, "CONFIRMA TU PEDIDO", buttons)
		systemText = body
		systemType = model.MessageTypeButton
	}

	if sendErr != nil {
		log.Printf("Error al enviar mensaje a WhatsApp: %v", sendErr)
		failed, uerr := s.orders.UpdateOrderMessageStatus(ctx, saved.OrderID, false, sendErr.Error())
		if uerr != nil {
			log.Printf("Error registrando el fallo de envío del pedido %s: %v", saved.OrderID, uerr)
			failed = saved
		}
		return failed, fmt.Errorf("%w: %v", ErrGateway, sendErr)
	}

	updated, err := s.orders.UpdateOrderMessageStatus(ctx, saved.OrderID, true, result.MessageID)
	if err != nil {
		log.Printf("Error actualizando estado de envío del pedido %s: %v", saved.OrderID, err)
		updated = saved
	}

	if err := s.chat.SaveSystemMessage(ctx, saved.OrderID, formattedPhone, systemText, systemType); err != nil {
		log.Printf("Error guardando mensaje de confirmación en el chat: %v", err)
	}

	return updated, nil
}

func payloadToOrder(p *dto.OrderPayload, customerPhone string) *model.Order {
	items := make([]model.OrderItem, 0, len(p.LineItems))
	for _, it := range p.LineItems {
		items = append(items, model.OrderItem{Name: it.Name, Quantity: it.Quantity, Price: it.Price})
	}

	order := &model.Order{
		OrderID: p.OrderID,
		Customer: model.Customer{
			FirstName: p.Customer.FirstName,
			LastName:  p.Customer.LastName,
			Email:     p.Customer.Email,
			Phone:     customerPhone,
		},
		ShippingAddress: model.ShippingAddress{
			Address1:   p.ShippingAddress.Address1,
			City:       p.ShippingAddress.City,
			State:      p.ShippingAddress.State,
			PostalCode: p.ShippingAddress.PostalCode,
			Country:    p.ShippingAddress.Country,
			Phone:      p.ShippingAddress.Phone,
		},
		LineItems:  items,
		TotalPrice: p.TotalPrice,
	}
	return order
}

func lineItemsSummary(items []dto.OrderItemDTO) string {
	if len(items) == 0 {
		return "productos"
	}
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, fmt.Sprintf("%dx %s", it.Quantity, it.Name))
	}
	return strings.Join(parts, ", ")
}

// formatAmount formatea el total al estilo es-CO: sin decimales, con punto
// como separador de miles.
func formatAmount(total float64) string {
	n := int64(total + 0.5)
	s := fmt.Sprintf("%d", n)

	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func confirmationMessage(customerName, items, total, city, address string) string {
	return fmt.Sprintf(`
¡Hola, %s -!
Recuerda por favor verificar todos tus datos y confirmar tu pedido.

✅ Te escribimos de *INNOVANDOSHOP.COM*, hemos recibido tu orden que contiene %s por un valor total a pagar de $%s

🚚 Tu pedido se entregará en la ciudad de %s. en la dirección %s -  en el transcurso de 2 a 4 días hábiles.

🚨Debido al alto volumen de pedidos que tenemos al día, priorizamos las entregas de quienes confirman su pedido.

*¡Gracias por confiar en INNOVANDO!* 😀`, customerName, items, total, city, address)
}
