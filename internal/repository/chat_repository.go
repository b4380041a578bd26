package repository

import (
	"context"
	"time"

	"order-confirmation-service/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoChatRepository struct {
	col *mongo.Collection
}

func NewMongoChatRepository(db *mongo.Database) *MongoChatRepository {
	return &MongoChatRepository{col: db.Collection("chat_messages")}
}

func (m *MongoChatRepository) Insert(ctx context.Context, msg *model.ChatMessage) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	_, err := m.col.InsertOne(ctx, msg)
	return err
}

func (m *MongoChatRepository) FindByOrderID(ctx context.Context, orderID string) ([]*model.ChatMessage, error) {
	opts := options.Find().SetSort(bson.M{"created_at": 1})
	cur, err := m.col.Find(ctx, bson.M{"order_id": orderID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*model.ChatMessage
	for cur.Next(ctx) {
		var v model.ChatMessage
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, cur.Err()
}

// FindByPhoneCandidates busca mensajes cuyo teléfono coincida exactamente con
// alguna de las variantes del número.
func (m *MongoChatRepository) FindByPhoneCandidates(ctx context.Context, candidates []string) ([]*model.ChatMessage, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	opts := options.Find().SetSort(bson.M{"created_at": 1})
	cur, err := m.col.Find(ctx, bson.M{"phone": bson.M{"$in": candidates}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*model.ChatMessage
	for cur.Next(ctx) {
		var v model.ChatMessage
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, cur.Err()
}

// MarkRead marca como leídos todos los mensajes no leídos de un pedido y
// devuelve cuántos se modificaron.
func (m *MongoChatRepository) MarkRead(ctx context.Context, orderID string) (int64, error) {
	res, err := m.col.UpdateMany(ctx,
		bson.M{"order_id": orderID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
