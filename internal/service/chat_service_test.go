package service

import (
	"context"
	"testing"
	"time"

	"order-confirmation-service/internal/model"
)

func newTestChatService(orderRepo *fakeOrderRepo, chatRepo *fakeChatRepo) *ChatService {
	orders := NewOrderService(orderRepo, "57", false)
	return NewChatService(chatRepo, orders, "57")
}

func TestSaveCustomerMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("associates the most recent matching order", func(t *testing.T) {
		orderRepo := &fakeOrderRepo{}
		chatRepo := &fakeChatRepo{}
		svc := newTestChatService(orderRepo, chatRepo)

		o := validOrder("573001234567")
		o.OrderID = "ORD-1-1"
		orderRepo.Insert(ctx, o)

		msg, err := svc.SaveCustomerMessage(ctx, "573001234567", "hola", model.MessageTypeText, "", time.Time{})
		if err != nil {
			t.Fatalf("SaveCustomerMessage: %v", err)
		}
		if msg.OrderID != "ORD-1-1" {
			t.Errorf("order_id = %q, want ORD-1-1", msg.OrderID)
		}
		if msg.Sender != model.SenderCustomer {
			t.Errorf("sender = %q, want CUSTOMER", msg.Sender)
		}
	})

	t.Run("falls back to SIN_PEDIDO when nothing matches", func(t *testing.T) {
		svc := newTestChatService(&fakeOrderRepo{}, &fakeChatRepo{})

		msg, err := svc.SaveCustomerMessage(ctx, "573009999999", "hola", model.MessageTypeText, "", time.Time{})
		if err != nil {
			t.Fatalf("SaveCustomerMessage: %v", err)
		}
		if msg.OrderID != model.OrderIDNone {
			t.Errorf("order_id = %q, want SIN_PEDIDO", msg.OrderID)
		}
	})

	t.Run("uses the inbound timestamp when present", func(t *testing.T) {
		chatRepo := &fakeChatRepo{}
		svc := newTestChatService(&fakeOrderRepo{}, chatRepo)

		ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		msg, err := svc.SaveCustomerMessage(ctx, "573009999999", "hola", model.MessageTypeText, "", ts)
		if err != nil {
			t.Fatalf("SaveCustomerMessage: %v", err)
		}
		if !msg.CreatedAt.Equal(ts) {
			t.Errorf("created_at = %v, want %v", msg.CreatedAt, ts)
		}
	})
}

func TestMarkMessagesAsRead(t *testing.T) {
	ctx := context.Background()
	chatRepo := &fakeChatRepo{}
	svc := newTestChatService(&fakeOrderRepo{}, chatRepo)

	for i := 0; i < 3; i++ {
		chatRepo.Insert(ctx, &model.ChatMessage{
			OrderID: "ORD-1-1", Sender: model.SenderCustomer, Message: "hola", MessageType: model.MessageTypeText,
		})
	}

	count, err := svc.MarkMessagesAsRead(ctx, "ORD-1-1")
	if err != nil {
		t.Fatalf("MarkMessagesAsRead: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}

	// Idempotencia: la segunda pasada no encuentra nada pendiente
	count, err = svc.MarkMessagesAsRead(ctx, "ORD-1-1")
	if err != nil {
		t.Fatalf("MarkMessagesAsRead (second): %v", err)
	}
	if count != 0 {
		t.Errorf("second count = %d, want 0", count)
	}
}

func TestGetMessagesByPhone(t *testing.T) {
	ctx := context.Background()
	chatRepo := &fakeChatRepo{}
	svc := newTestChatService(&fakeOrderRepo{}, chatRepo)

	chatRepo.Insert(ctx, &model.ChatMessage{
		OrderID: "ORD-1-1", Sender: model.SenderCustomer, Message: "hola",
		Phone: "573001234567", MessageType: model.MessageTypeText,
	})

	t.Run("matches phone variants", func(t *testing.T) {
		msgs, err := svc.GetMessagesByPhone(ctx, "+57 300 123 4567")
		if err != nil {
			t.Fatalf("GetMessagesByPhone: %v", err)
		}
		if len(msgs) != 1 {
			t.Errorf("found %d messages, want 1", len(msgs))
		}
	})

	t.Run("empty phone yields empty result", func(t *testing.T) {
		msgs, err := svc.GetMessagesByPhone(ctx, "")
		if err != nil {
			t.Fatalf("GetMessagesByPhone: %v", err)
		}
		if len(msgs) != 0 {
			t.Errorf("found %d messages, want 0", len(msgs))
		}
	})
}
