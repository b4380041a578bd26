package rabbit

import (
	"context"
	"encoding/json"
	"log"

	"order-confirmation-service/internal/dto"
	"order-confirmation-service/internal/service"
)

// OrderIntakeConsumer ingiere pedidos publicados en la cola por sistemas
// upstream, por el mismo camino que los pedidos del webhook.
type OrderIntakeConsumer struct {
	Intake *service.OrderIntakeService
}

func NewOrderIntakeConsumer(intake *service.OrderIntakeService) *OrderIntakeConsumer {
	return &OrderIntakeConsumer{Intake: intake}
}

type PlacedOrderMessage struct {
	CorrelationID string           `json:"correlation_id"`
	Exchange      string           `json:"exchange"`
	RoutingKey    string           `json:"routing_key"`
	Message       dto.OrderPayload `json:"message"`
}

func (c *OrderIntakeConsumer) Handle(msg []byte) error {
	log.Println("[Rabbit] Evento recibido: order_placed")

	var event PlacedOrderMessage
	if err := json.Unmarshal(msg, &event); err != nil {
		log.Println("Error parseando mensaje:", err)
		return err
	}

	order, err := c.Intake.IngestOrder(context.Background(), &event.Message)
	if err != nil {
		log.Println("Error ingiriendo pedido desde la cola:", err)
		return err
	}

	log.Println("Pedido procesado desde la cola:", order.OrderID)
	return nil
}
