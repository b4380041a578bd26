// dto.go
package dto

// OrderPayload es el pedido tal como llega al webhook (formato tipo Shopify).
// El teléfono puede venir en varios lugares; ver FindCustomerPhone.
type OrderPayload struct {
	OrderID         string              `json:"order_id"`
	Customer        *CustomerDTO        `json:"customer"`
	ShippingAddress *ShippingAddressDTO `json:"shipping_address"`
	BillingAddress  *BillingAddressDTO  `json:"billing_address"`
	LineItems       []OrderItemDTO      `json:"line_items"`
	TotalPrice      float64             `json:"total_price"`
	Phone           string              `json:"phone"`
	NoteAttributes  []NoteAttribute     `json:"note_attributes"`
}

type CustomerDTO struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type ShippingAddressDTO struct {
	Address1   string `json:"address1"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

type BillingAddressDTO struct {
	Address1 string `json:"address1"`
	City     string `json:"city"`
	Phone    string `json:"phone"`
}

type OrderItemDTO struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type NoteAttribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// FindCustomerPhone busca el teléfono en los distintos lugares del pedido,
// en orden de prioridad. Devuelve "" si no aparece en ninguno.
func (p *OrderPayload) FindCustomerPhone() string {
	if p.Customer != nil && p.Customer.Phone != "" {
		return p.Customer.Phone
	}
	if p.Phone != "" {
		return p.Phone
	}
	if p.ShippingAddress != nil && p.ShippingAddress.Phone != "" {
		return p.ShippingAddress.Phone
	}
	if p.BillingAddress != nil && p.BillingAddress.Phone != "" {
		return p.BillingAddress.Phone
	}
	for _, note := range p.NoteAttributes {
		if note.Name == "phone" && note.Value != "" {
			return note.Value
		}
	}
	return ""
}

// WebhookEnvelope es la notificación de WhatsApp Business
// (object = "whatsapp_business_account").
type WebhookEnvelope struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

type Change struct {
	Field string      `json:"field"`
	Value ChangeValue `json:"value"`
}

type ChangeValue struct {
	MessagingProduct string            `json:"messaging_product"`
	Metadata         *Metadata         `json:"metadata"`
	Messages         []IncomingMessage `json:"messages"`
}

type Metadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

// IncomingMessage es un mensaje entrante del cliente. El campo Type decide
// cuál de los sub-objetos viene poblado.
type IncomingMessage struct {
	From        string       `json:"from"`
	ID          string       `json:"id"`
	Timestamp   string       `json:"timestamp"`
	Type        string       `json:"type"`
	Text        *TextBody    `json:"text"`
	Button      *ButtonBody  `json:"button"`
	Interactive *Interactive `json:"interactive"`
	Location    *Location    `json:"location"`
	Image       *Media       `json:"image"`
	Document    *Media       `json:"document"`
	Audio       *Media       `json:"audio"`
	Video       *Media       `json:"video"`
}

type TextBody struct {
	Body string `json:"body"`
}

type ButtonBody struct {
	Text    string `json:"text"`
	Payload string `json:"payload"`
}

type Interactive struct {
	Type        string       `json:"type"`
	ButtonReply *ReplyOption `json:"button_reply"`
	ListReply   *ReplyOption `json:"list_reply"`
}

type ReplyOption struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Media struct {
	ID       string `json:"id"`
	Caption  string `json:"caption"`
	MimeType string `json:"mime_type"`
	Link     string `json:"link"`
}

// SendMessageRequest es la petición del panel de administración.
type SendMessageRequest struct {
	OrderID string `json:"orderId" binding:"required"`
	Message string `json:"message" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
}

type MarkMessagesReadRequest struct {
	OrderID string `json:"orderId" binding:"required"`
}
