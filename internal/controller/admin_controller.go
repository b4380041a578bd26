package controller

import (
	"context"
	"errors"
	"log"
	"net/http"

	"order-confirmation-service/internal/dto"
	"order-confirmation-service/internal/model"
	"order-confirmation-service/internal/repository"
	"order-confirmation-service/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminController expone la superficie REST del panel de administración.
type AdminController struct {
	orders  *service.OrderService
	chat    *service.ChatService
	gateway service.MessageGateway
}

func NewAdminController(orders *service.OrderService, chat *service.ChatService, gateway service.MessageGateway) *AdminController {
	return &AdminController{orders: orders, chat: chat, gateway: gateway}
}

// GET /api/get-orders
func (ctl *AdminController) GetOrders(c *gin.Context) {
	status := c.Query("status")

	orders, err := ctl.orders.GetAllOrders(c.Request.Context(), status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al cargar los pedidos", "details": err.Error()})
		return
	}
	if orders == nil {
		orders = []*model.Order{}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "orders": orders, "count": len(orders)})
}

// GET /api/get-order?orderId=
func (ctl *AdminController) GetOrder(c *gin.Context) {
	orderID := c.Query("orderId")
	if orderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Se requiere el ID del pedido (orderId)"})
		return
	}

	order, err := ctl.orders.GetOrderByID(c.Request.Context(), orderID)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Pedido con ID " + orderID + " no encontrado"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al cargar los detalles del pedido", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

// DELETE /api/delete-order?orderId=
func (ctl *AdminController) DeleteOrder(c *gin.Context) {
	orderID := c.Query("orderId")
	if orderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Se requiere el ID del pedido (orderId)"})
		return
	}

	summary, err := ctl.orders.DeleteOrder(c.Request.Context(), orderID)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Pedido con ID " + orderID + " no encontrado"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al eliminar el pedido", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      "Pedido " + orderID + " eliminado correctamente",
		"deletedOrder": summary,
	})
}

// GET /api/get-chat?orderId=|phone=
// Si vienen ambos parámetros se prioriza orderId. La consulta por orderId
// marca de paso los mensajes como leídos (el panel está mostrando el chat).
func (ctl *AdminController) GetChat(c *gin.Context) {
	orderID := c.Query("orderId")
	phoneParam := c.Query("phone")

	if orderID == "" && phoneParam == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Se requiere al menos un parámetro: orderId o phone"})
		return
	}

	ctx := c.Request.Context()
	var order *model.Order
	var messages []*model.ChatMessage

	if orderID != "" {
		var err error
		order, err = ctl.orders.GetOrderByID(ctx, orderID)
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Pedido con ID " + orderID + " no encontrado"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al obtener mensajes", "details": err.Error()})
			return
		}

		messages, err = ctl.chat.GetMessagesByOrderID(ctx, orderID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al obtener mensajes", "details": err.Error()})
			return
		}

		if _, err := ctl.chat.MarkMessagesAsRead(ctx, orderID); err != nil {
			log.Printf("Error marcando mensajes como leídos para %s: %v", orderID, err)
		}
		ctl.clearUnreadFlag(ctx, orderID)
	} else {
		orders, err := ctl.orders.GetOrdersByPhone(ctx, phoneParam, 10)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al obtener mensajes", "details": err.Error()})
			return
		}
		if len(orders) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "No se encontraron pedidos asociados al teléfono " + phoneParam})
			return
		}
		order = orders[0]

		messages, err = ctl.chat.GetMessagesByPhone(ctx, phoneParam)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al obtener mensajes", "details": err.Error()})
			return
		}
	}

	if messages == nil {
		messages = []*model.ChatMessage{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"order": gin.H{
			"id":         order.OrderID,
			"customer":   gin.H{"name": order.Customer.FirstName + " " + order.Customer.LastName, "phone": order.Customer.Phone},
			"status":     order.Status,
			"created_at": order.CreatedAt,
		},
		"messages": messages,
		"count":    len(messages),
	})
}

// POST /api/mark-messages-read {orderId}
func (ctl *AdminController) MarkMessagesRead(c *gin.Context) {
	var req dto.MarkMessagesReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Se requiere el ID del pedido (orderId)"})
		return
	}

	count, err := ctl.chat.MarkMessagesAsRead(c.Request.Context(), req.OrderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al marcar mensajes como leídos", "details": err.Error()})
		return
	}

	ctl.clearUnreadFlag(c.Request.Context(), req.OrderID)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   count,
		"message": "Mensajes marcados como leídos",
	})
}

// POST /api/send-message {orderId, message, phone}
func (ctl *AdminController) SendMessage(c *gin.Context) {
	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Datos incompletos",
			"details": "Se requiere orderId, message y phone",
		})
		return
	}

	ctx := c.Request.Context()

	order, err := ctl.orders.GetOrderByID(ctx, req.OrderID)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Pedido no encontrado",
			"details": "No se encontró un pedido con ID " + req.OrderID,
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error en el servidor", "details": err.Error()})
		return
	}

	log.Printf("Enviando mensaje al pedido %s (%s)", req.OrderID, req.Phone)

	if _, err := ctl.gateway.SendText(ctx, req.Phone, req.Message); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al enviar mensaje a WhatsApp", "details": err.Error()})
		return
	}

	if err := ctl.chat.SaveMessage(ctx, &model.ChatMessage{
		OrderID:     req.OrderID,
		Sender:      model.SenderAdmin,
		Message:     req.Message,
		Phone:       req.Phone,
		MessageType: model.MessageTypeText,
	}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error en el servidor", "details": err.Error()})
		return
	}

	if order.HasUnreadMessages {
		ctl.clearUnreadFlag(ctx, req.OrderID)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Mensaje enviado correctamente", "orderId": req.OrderID})
}

func (ctl *AdminController) clearUnreadFlag(ctx context.Context, orderID string) {
	if orderID == model.OrderIDNone {
		return
	}
	if _, err := ctl.orders.UpdateUnreadMessagesStatus(ctx, orderID, false); err != nil && !errors.Is(err, repository.ErrNotFound) {
		log.Printf("Error limpiando la marca de no leídos del pedido %s: %v", orderID, err)
	}
}
