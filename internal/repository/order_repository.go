package repository

import (
	"context"
	"errors"
	"regexp"
	"time"

	"order-confirmation-service/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("pedido no encontrado")

// Mongo implementation
type MongoOrderRepository struct {
	col *mongo.Collection
}

func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{col: db.Collection("orders")}
}

func (m *MongoOrderRepository) Insert(ctx context.Context, o *model.Order) error {
	now := time.Now().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now

	_, err := m.col.InsertOne(ctx, o)
	return err
}

func (m *MongoOrderRepository) FindByOrderID(ctx context.Context, orderID string) (*model.Order, error) {
	var res model.Order
	err := m.col.FindOne(ctx, bson.M{"order_id": orderID}).Decode(&res)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	return &res, err
}

// UpdateFields hace un $set de los campos indicados y refresca updated_at.
func (m *MongoOrderRepository) UpdateFields(ctx context.Context, orderID string, fields map[string]interface{}) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	for k, v := range fields {
		set[k] = v
	}

	res, err := m.col.UpdateOne(ctx, bson.M{"order_id": orderID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoOrderRepository) FindAll(ctx context.Context, status string) ([]*model.Order, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cur, err := m.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*model.Order
	for cur.Next(ctx) {
		var v model.Order
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, cur.Err()
}

// FindByPhoneCandidates busca pedidos cuyo customer.phone coincida con alguna
// de las representaciones candidatas. En modo laxo la coincidencia es por
// substring (puede sobre-coincidir; comportamiento aceptado); en modo estricto
// solo igualdad exacta con algún candidato.
func (m *MongoOrderRepository) FindByPhoneCandidates(ctx context.Context, candidates []string, strict bool, limit int64) ([]*model.Order, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	var filter bson.M
	if strict {
		filter = bson.M{"customer.phone": bson.M{"$in": candidates}}
	} else {
		or := make([]bson.M, 0, len(candidates)+1)
		for _, c := range candidates {
			or = append(or, bson.M{"customer.phone": bson.M{"$regex": regexp.QuoteMeta(c)}})
		}
		or = append(or, bson.M{"customer.phone": candidates[0]})
		filter = bson.M{"$or": or}
	}

	opts := options.Find().SetSort(bson.M{"created_at": -1}).SetLimit(limit)
	cur, err := m.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*model.Order
	for cur.Next(ctx) {
		var v model.Order
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, cur.Err()
}

// FindRecent devuelve los n pedidos más recientes (para diagnóstico cuando
// una búsqueda por teléfono no encuentra nada).
func (m *MongoOrderRepository) FindRecent(ctx context.Context, n int64) ([]*model.Order, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1}).SetLimit(n)
	cur, err := m.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*model.Order
	for cur.Next(ctx) {
		var v model.Order
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, cur.Err()
}

func (m *MongoOrderRepository) Delete(ctx context.Context, orderID string) error {
	res, err := m.col.DeleteOne(ctx, bson.M{"order_id": orderID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
