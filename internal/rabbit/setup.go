// setup.go
package rabbit

import (
	"log"

	"order-confirmation-service/internal/service"

	"github.com/rabbitmq/amqp091-go"
)

func SetupConsumers(ch *amqp091.Channel, intake *service.OrderIntakeService) {
	consumer := NewOrderIntakeConsumer(intake)

	// 1. Declarar la queue
	q, err := ch.QueueDeclare(
		"order_confirmation_orders", // cola exclusiva de este servicio
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		log.Println("Error declarando queue:", err)
		return
	}

	// 2. Bindear al exchange fanout
	err = ch.QueueBind(
		q.Name,
		"",             // fanout ignora routing key
		"order_placed", // exchange de pedidos nuevos
		false,
		nil,
	)
	if err != nil {
		log.Println("Error binding exchange:", err)
		return
	}

	// 3. Consumir
	msgs, err := ch.Consume(
		q.Name,
		"",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		log.Println("Error al consumir queue:", err)
		return
	}

	go func() {
		for m := range msgs {
			consumer.Handle(m.Body)
		}
	}()

	log.Println("Suscrito a exchange order_placed (fanout)")
}
