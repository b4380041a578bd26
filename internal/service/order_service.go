package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"order-confirmation-service/internal/model"
	"order-confirmation-service/internal/phone"
)

// Interfaz que debe implementar repository
type OrderRepository interface {
	Insert(ctx context.Context, o *model.Order) error
	FindByOrderID(ctx context.Context, orderID string) (*model.Order, error)
	UpdateFields(ctx context.Context, orderID string, fields map[string]interface{}) error
	FindAll(ctx context.Context, status string) ([]*model.Order, error)
	FindByPhoneCandidates(ctx context.Context, candidates []string, strict bool, limit int64) ([]*model.Order, error)
	FindRecent(ctx context.Context, n int64) ([]*model.Order, error)
	Delete(ctx context.Context, orderID string) error
}

// Errores de negocio exportados (los usa el controller)
var (
	ErrValidation    = errors.New("datos del pedido incompletos")
	ErrUnknownStatus = errors.New("estado de pedido desconocido")
)

type OrderService struct {
	repo        OrderRepository
	countryCode string
	strictMatch bool
}

func NewOrderService(r OrderRepository, countryCode string, strictMatch bool) *OrderService {
	return &OrderService{repo: r, countryCode: countryCode, strictMatch: strictMatch}
}

// CreateOrder valida y persiste un pedido nuevo, siempre en estado CREATED.
// Genera un order_id si el pedido no trae uno.
func (s *OrderService) CreateOrder(ctx context.Context, o *model.Order) (*model.Order, error) {
	if o.Customer.FirstName == "" {
		return nil, fmt.Errorf("%w: falta customer.first_name", ErrValidation)
	}
	if o.ShippingAddress.Address1 == "" {
		return nil, fmt.Errorf("%w: falta shipping_address.address1", ErrValidation)
	}
	if o.ShippingAddress.City == "" {
		return nil, fmt.Errorf("%w: falta shipping_address.city", ErrValidation)
	}

	if o.OrderID == "" {
		o.OrderID = fmt.Sprintf("ORD-%d-%d", time.Now().UnixMilli(), rand.Intn(1000))
	}
	o.Status = model.StatusCreated

	if err := s.repo.Insert(ctx, o); err != nil {
		return nil, err
	}

	log.Printf("Pedido creado con ID: %s", o.OrderID)
	return o, nil
}

func (s *OrderService) GetOrderByID(ctx context.Context, orderID string) (*model.Order, error) {
	return s.repo.FindByOrderID(ctx, orderID)
}

func (s *OrderService) GetAllOrders(ctx context.Context, status string) ([]*model.Order, error) {
	return s.repo.FindAll(ctx, status)
}

// UpdateOrderStatus cambia el estado y mezcla los campos extra tal cual.
// No hay guardas de transición: cualquier estado conocido es aceptado.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID, newStatus string, extra map[string]interface{}) (*model.Order, error) {
	if !model.KnownStatuses[newStatus] {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStatus, newStatus)
	}

	fields := map[string]interface{}{"status": newStatus}
	for k, v := range extra {
		fields[k] = v
	}

	if err := s.repo.UpdateFields(ctx, orderID, fields); err != nil {
		return nil, err
	}

	log.Printf("Estado del pedido %s actualizado a: %s", orderID, newStatus)
	return s.repo.FindByOrderID(ctx, orderID)
}

// UpdateOrderMessageStatus registra el resultado del intento de envío del
// mensaje de confirmación.
func (s *OrderService) UpdateOrderMessageStatus(ctx context.Context, orderID string, sent bool, detail string) (*model.Order, error) {
	fields := map[string]interface{}{}
	if sent {
		fields["status"] = model.StatusMessageSent
		fields["message_status"] = "sent"
		fields["message_id"] = detail
	} else {
		fields["status"] = model.StatusMessageFailed
		if detail == "" {
			detail = "failed"
		}
		fields["message_status"] = detail
	}

	if err := s.repo.UpdateFields(ctx, orderID, fields); err != nil {
		return nil, err
	}
	return s.repo.FindByOrderID(ctx, orderID)
}

func (s *OrderService) UpdateUnreadMessagesStatus(ctx context.Context, orderID string, flag bool) (*model.Order, error) {
	if err := s.repo.UpdateFields(ctx, orderID, map[string]interface{}{"has_unread_messages": flag}); err != nil {
		return nil, err
	}
	return s.repo.FindByOrderID(ctx, orderID)
}

// GetOrdersByPhone busca los pedidos más recientes asociados a un número,
// en cualquiera de sus formatos. Un teléfono vacío devuelve lista vacía sin
// consultar. Ausencia de coincidencias no es un error.
func (s *OrderService) GetOrdersByPhone(ctx context.Context, rawPhone string, limit int64) ([]*model.Order, error) {
	candidates := phone.Candidates(rawPhone, s.countryCode)
	if len(candidates) == 0 {
		log.Println("Número de teléfono no proporcionado")
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	log.Printf("Buscando pedidos para el teléfono %q (candidatos: %v)", rawPhone, candidates)

	orders, err := s.repo.FindByPhoneCandidates(ctx, candidates, s.strictMatch, limit)
	if err != nil {
		return nil, err
	}

	if len(orders) == 0 {
		// Volcado de los pedidos recientes para depurar números que no casan
		log.Printf("Sin pedidos para el teléfono %s; pedidos recientes:", rawPhone)
		recent, rerr := s.repo.FindRecent(ctx, 5)
		if rerr == nil {
			for i, o := range recent {
				log.Printf("%d. ID: %s, Teléfono: %q, Estado: %s", i+1, o.OrderID, o.Customer.Phone, o.Status)
			}
		}
	}

	return orders, nil
}

// DeletedOrderSummary resume el pedido eliminado para el registro.
type DeletedOrderSummary struct {
	ID           string    `json:"id"`
	CustomerName string    `json:"customer_name"`
	Phone        string    `json:"phone"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

func (s *OrderService) DeleteOrder(ctx context.Context, orderID string) (*DeletedOrderSummary, error) {
	order, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	summary := &DeletedOrderSummary{
		ID:           order.OrderID,
		CustomerName: fmt.Sprintf("%s %s", order.Customer.FirstName, order.Customer.LastName),
		Phone:        order.Customer.Phone,
		Status:       order.Status,
		CreatedAt:    order.CreatedAt,
	}

	if err := s.repo.Delete(ctx, orderID); err != nil {
		return nil, err
	}

	log.Printf("Pedido %s eliminado correctamente", orderID)
	return summary, nil
}
