package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"order-confirmation-service/internal/dto"
	"order-confirmation-service/internal/model"
	"order-confirmation-service/internal/service"

	"github.com/gin-gonic/gin"
)

// WebhookController multiplexa en un endpoint la verificación del proveedor,
// los mensajes entrantes del cliente y la ingesta de pedidos nuevos.
type WebhookController struct {
	intake       *service.OrderIntakeService
	interactions *service.InteractionService
	verifyToken  string
}

func NewWebhookController(intake *service.OrderIntakeService, interactions *service.InteractionService, verifyToken string) *WebhookController {
	return &WebhookController{intake: intake, interactions: interactions, verifyToken: verifyToken}
}

// GET /api/webhook — handshake de verificación del proveedor
func (ctl *WebhookController) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token != "" && token == ctl.verifyToken {
		log.Println("Webhook verificado!")
		c.String(http.StatusOK, challenge)
		return
	}

	log.Println("Verificación de webhook fallida: token inválido o modo incorrecto")
	c.Status(http.StatusForbidden)
}

// POST /api/webhook — notificación de mensajes o pedido nuevo
func (ctl *WebhookController) Receive(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	// ¿Es una notificación de WhatsApp Business?
	var envelope dto.WebhookEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Object == "whatsapp_business_account" {
		log.Println("Notificación de WhatsApp Business recibida")
		ctl.processEnvelope(c, &envelope)
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	// ¿Tiene forma de pedido?
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}
	_, hasCustomer := probe["customer"]
	_, hasShipping := probe["shipping_address"]
	_, hasItems := probe["line_items"]
	if !hasCustomer && !hasShipping && !hasItems {
		// Payload no reconocido: confirmar sin efectos secundarios
		log.Println("Payload de webhook no reconocido")
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	var payload dto.OrderPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Datos del pedido incompletos."})
		return
	}

	order, err := ctl.intake.IngestOrder(c.Request.Context(), &payload)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{
			"message":  "Mensaje enviado correctamente.",
			"order_id": order.OrderID,
			"status":   order.Status,
		})
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Datos del pedido incompletos."})
	case errors.Is(err, service.ErrGateway):
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":    "Error al enviar el mensaje a WhatsApp.",
			"order_id": order.OrderID,
			"status":   order.Status,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error en el servidor.", "details": err.Error()})
	}
}

// processEnvelope recorre todas las entradas de la notificación y despacha
// cada mensaje. Los fallos internos se registran y se absorben: el proveedor
// siempre recibe 200.
func (ctl *WebhookController) processEnvelope(c *gin.Context, envelope *dto.WebhookEnvelope) {
	for _, entry := range envelope.Entry {
		for _, change := range entry.Changes {
			for i := range change.Value.Messages {
				ctl.processMessage(c, &change.Value.Messages[i])
			}
		}
	}
}

func (ctl *WebhookController) processMessage(c *gin.Context, msg *dto.IncomingMessage) {
	ctx := c.Request.Context()
	ts := messageTimestamp(msg.Timestamp)

	switch {
	case msg.Type == "text" && msg.Text != nil:
		ctl.interactions.HandleTextMessage(ctx, msg.From, msg.Text.Body, ts)

	case msg.Type == "button" && msg.Button != nil:
		ctl.interactions.HandleButtonReply(ctx, msg.From, msg.Button.Payload, msg.Button.Text, ts)

	case msg.Type == "interactive" && msg.Interactive != nil && msg.Interactive.ButtonReply != nil:
		ctl.interactions.HandleButtonReply(ctx, msg.From, msg.Interactive.ButtonReply.ID, msg.Interactive.ButtonReply.Title, ts)

	case msg.Type == "interactive" && msg.Interactive != nil && msg.Interactive.ListReply != nil:
		ctl.interactions.HandleButtonReply(ctx, msg.From, msg.Interactive.ListReply.ID, msg.Interactive.ListReply.Title, ts)

	case msg.Type == "location" && msg.Location != nil:
		desc := fmt.Sprintf("Ubicación: %v, %v", msg.Location.Latitude, msg.Location.Longitude)
		ctl.interactions.HandleMediaMessage(ctx, msg.From, desc, model.MessageTypeLocation, "", ts)

	case msg.Type == "image" && msg.Image != nil:
		ctl.interactions.HandleMediaMessage(ctx, msg.From, mediaDescription(msg.Image.Caption, "Imagen recibida"), model.MessageTypeImage, msg.Image.Link, ts)

	case msg.Type == "document" && msg.Document != nil:
		ctl.interactions.HandleMediaMessage(ctx, msg.From, mediaDescription(msg.Document.Caption, "Documento recibido"), model.MessageTypeDocument, msg.Document.Link, ts)

	case msg.Type == "audio" && msg.Audio != nil:
		ctl.interactions.HandleMediaMessage(ctx, msg.From, "Audio recibido", model.MessageTypeAudio, msg.Audio.Link, ts)

	case msg.Type == "video" && msg.Video != nil:
		ctl.interactions.HandleMediaMessage(ctx, msg.From, mediaDescription(msg.Video.Caption, "Video recibido"), model.MessageTypeVideo, msg.Video.Link, ts)

	default:
		desc := fmt.Sprintf("Mensaje de tipo %s recibido", msg.Type)
		ctl.interactions.HandleTextMessage(ctx, msg.From, desc, ts)
	}
}

func mediaDescription(caption, fallback string) string {
	if caption != "" {
		return caption
	}
	return fallback
}

// messageTimestamp interpreta el timestamp del proveedor (epoch en segundos,
// como string). Si no viene o no parsea, vale la hora de ingesta.
func messageTimestamp(raw string) time.Time {
	if raw == "" {
		return time.Now().UTC()
	}
	sec, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Now().UTC()
	}
	return time.Unix(sec, 0).UTC()
}
