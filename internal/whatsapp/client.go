// Cliente para la API de mensajes de WhatsApp Cloud (Graph API).
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"order-confirmation-service/internal/config"
)

const (
	maxRetries = 3
	retryDelay = 1 * time.Second
)

type Client struct {
	baseURL       string
	phoneNumberID string
	accessToken   string
	client        *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL:       cfg.GraphAPIURL,
		phoneNumberID: cfg.PhoneNumberID,
		accessToken:   cfg.AccessToken,
		client: &http.Client{
			Timeout: 8 * time.Second,
		},
	}
}

// Button es un botón de respuesta rápida en un mensaje interactivo.
type Button struct {
	ID    string
	Title string
}

// SendResult es el resultado de un envío aceptado por la API.
type SendResult struct {
	MessageID string
}

type apiResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// SendText envía un mensaje de texto simple.
func (c *Client) SendText(ctx context.Context, to, body string) (*SendResult, error) {
	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                to,
		"type":              "text",
		"text": map[string]string{
			"body": body,
		},
	}
	return c.send(ctx, payload)
}

// SendButtons envía un mensaje interactivo con botones de respuesta.
func (c *Client) SendButtons(ctx context.Context, to, body, header string, buttons []Button) (*SendResult, error) {
	actionButtons := make([]map[string]interface{}, 0, len(buttons))
	for _, b := range buttons {
		actionButtons = append(actionButtons, map[string]interface{}{
			"type": "reply",
			"reply": map[string]string{
				"id":    b.ID,
				"title": b.Title,
			},
		})
	}

	interactive := map[string]interface{}{
		"type": "button",
		"body": map[string]string{"text": body},
		"action": map[string]interface{}{
			"buttons": actionButtons,
		},
	}
	if header != "" {
		interactive["header"] = map[string]string{"type": "text", "text": header}
	}

	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                to,
		"type":              "interactive",
		"interactive":       interactive,
	}
	return c.send(ctx, payload)
}

// SendTemplate envía una plantilla predefinida con parámetros de cuerpo.
func (c *Client) SendTemplate(ctx context.Context, to, name, lang string, params []string) (*SendResult, error) {
	parameters := make([]map[string]string, 0, len(params))
	for _, p := range params {
		parameters = append(parameters, map[string]string{"type": "text", "text": p})
	}

	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "template",
		"template": map[string]interface{}{
			"name":     name,
			"language": map[string]string{"code": lang},
			"components": []map[string]interface{}{
				{"type": "body", "parameters": parameters},
			},
		},
	}
	return c.send(ctx, payload)
}

// send hace el POST a la API con reintentos ante errores de transporte.
// Los errores de aplicación (4xx/5xx de la API) no se reintentan.
func (c *Client) send(ctx context.Context, payload map[string]interface{}) (*SendResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneNumberID)

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			log.Printf("Reintentando envío a WhatsApp (intento %d/%d)", attempt+1, maxRetries+1)
			select {
			case <-time.After(retryDelay * time.Duration(attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.accessToken)

		resp, err := c.client.Do(req)
		if err != nil {
			// Error de red: candidato a reintento
			lastErr = err
			continue
		}

		result, err := decodeResponse(resp)
		if err != nil {
			return nil, err
		}
		return result, nil
	}

	return nil, fmt.Errorf("envío a WhatsApp fallido tras %d intentos: %w", maxRetries+1, lastErr)
}

func decodeResponse(resp *http.Response) (*SendResult, error) {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("la API de WhatsApp respondió %d: %s", resp.StatusCode, errBody)
	}

	var api apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&api); err != nil {
		return nil, err
	}

	result := &SendResult{}
	if len(api.Messages) > 0 {
		result.MessageID = api.Messages[0].ID
	}
	return result, nil
}
