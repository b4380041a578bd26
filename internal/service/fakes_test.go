package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"order-confirmation-service/internal/model"
	"order-confirmation-service/internal/repository"
	"order-confirmation-service/internal/whatsapp"
)

// fakeOrderRepo emula el repositorio Mongo en memoria, incluida la semántica
// laxa de coincidencia por substring del teléfono.
type fakeOrderRepo struct {
	orders []*model.Order
}

func (f *fakeOrderRepo) Insert(_ context.Context, o *model.Order) error {
	now := time.Now().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now
	f.orders = append(f.orders, o)
	return nil
}

func (f *fakeOrderRepo) find(orderID string) *model.Order {
	for _, o := range f.orders {
		if o.OrderID == orderID {
			return o
		}
	}
	return nil
}

func (f *fakeOrderRepo) FindByOrderID(_ context.Context, orderID string) (*model.Order, error) {
	if o := f.find(orderID); o != nil {
		cp := *o
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeOrderRepo) UpdateFields(_ context.Context, orderID string, fields map[string]interface{}) error {
	o := f.find(orderID)
	if o == nil {
		return repository.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "status":
			o.Status = v.(string)
		case "message_status":
			o.MessageStatus = v.(string)
		case "message_id":
			o.MessageID = v.(string)
		case "has_unread_messages":
			o.HasUnreadMessages = v.(bool)
		}
	}
	o.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *fakeOrderRepo) FindAll(_ context.Context, status string) ([]*model.Order, error) {
	var out []*model.Order
	for _, o := range f.orders {
		if status == "" || o.Status == status {
			cp := *o
			out = append(out, &cp)
		}
	}
	sortByCreatedDesc(out)
	return out, nil
}

func (f *fakeOrderRepo) FindByPhoneCandidates(_ context.Context, candidates []string, strict bool, limit int64) ([]*model.Order, error) {
	var out []*model.Order
	for _, o := range f.orders {
		if matchesPhone(o.Customer.Phone, candidates, strict) {
			cp := *o
			out = append(out, &cp)
		}
	}
	sortByCreatedDesc(out)
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func matchesPhone(stored string, candidates []string, strict bool) bool {
	for _, c := range candidates {
		if strict {
			if stored == c {
				return true
			}
		} else if strings.Contains(stored, c) || stored == c {
			return true
		}
	}
	return false
}

func (f *fakeOrderRepo) FindRecent(_ context.Context, n int64) ([]*model.Order, error) {
	out, _ := f.FindAll(context.Background(), "")
	if int64(len(out)) > n {
		out = out[:n]
	}
	return out, nil
}

func (f *fakeOrderRepo) Delete(_ context.Context, orderID string) error {
	for i, o := range f.orders {
		if o.OrderID == orderID {
			f.orders = append(f.orders[:i], f.orders[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func sortByCreatedDesc(orders []*model.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}

type fakeChatRepo struct {
	messages []*model.ChatMessage
}

func (f *fakeChatRepo) Insert(_ context.Context, msg *model.ChatMessage) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	cp := *msg
	f.messages = append(f.messages, &cp)
	return nil
}

func (f *fakeChatRepo) FindByOrderID(_ context.Context, orderID string) ([]*model.ChatMessage, error) {
	var out []*model.ChatMessage
	for _, m := range f.messages {
		if m.OrderID == orderID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeChatRepo) FindByPhoneCandidates(_ context.Context, candidates []string) ([]*model.ChatMessage, error) {
	var out []*model.ChatMessage
	for _, m := range f.messages {
		for _, c := range candidates {
			if m.Phone == c {
				out = append(out, m)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeChatRepo) MarkRead(_ context.Context, orderID string) (int64, error) {
	var count int64
	for _, m := range f.messages {
		if m.OrderID == orderID && !m.IsRead {
			m.IsRead = true
			count++
		}
	}
	return count, nil
}

type sentMessage struct {
	To       string
	Body     string
	Header   string
	Buttons  []whatsapp.Button
	Template string
	Params   []string
}

// fakeGateway registra los envíos. failWith fuerza el fallo de todos los
// métodos.
type fakeGateway struct {
	sent     []sentMessage
	failWith error
}

func (f *fakeGateway) SendText(_ context.Context, to, body string) (*whatsapp.SendResult, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.sent = append(f.sent, sentMessage{To: to, Body: body})
	return &whatsapp.SendResult{MessageID: "wamid.test"}, nil
}

func (f *fakeGateway) SendButtons(_ context.Context, to, body, header string, buttons []whatsapp.Button) (*whatsapp.SendResult, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.sent = append(f.sent, sentMessage{To: to, Body: body, Header: header, Buttons: buttons})
	return &whatsapp.SendResult{MessageID: "wamid.test"}, nil
}

func (f *fakeGateway) SendTemplate(_ context.Context, to, name, lang string, params []string) (*whatsapp.SendResult, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.sent = append(f.sent, sentMessage{To: to, Template: name, Params: params})
	return &whatsapp.SendResult{MessageID: "wamid.test"}, nil
}
