package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-order-ms/src/config"
	"go-order-ms/src/services/order/domain"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// OrderRepository stores orders as single documents with the item array
// embedded: items are owned exclusively by their order and cannot outlive
// it, so the aggregate maps onto one document.
type OrderRepository struct {
	collection *mongo.Collection
}

func NewOrderRepository(cfg *config.Config, client *mongo.Client) *OrderRepository {
	return &OrderRepository{
		collection: client.Database(cfg.MongoDBDatabaseName).Collection("orders"),
	}
}

type orderDocument struct {
	ID              string         `bson:"id"`
	UserID          string         `bson:"user_id"`
	OrderDate       time.Time      `bson:"order_date,omitempty"`
	Status          string         `bson:"status"`
	TotalAmount     float64        `bson:"total_amount"`
	ShippingAddress string         `bson:"shipping_address"`
	CreatedAt       time.Time      `bson:"created_at"`
	UpdatedAt       time.Time      `bson:"updated_at"`
	Items           []itemDocument `bson:"items"`
}

type itemDocument struct {
	ID          string  `bson:"id"`
	ProductID   string  `bson:"product_id"`
	ProductName string  `bson:"product_name"`
	UnitPrice   float64 `bson:"unit_price"`
	Quantity    int     `bson:"quantity"`
	Subtotal    float64 `bson:"subtotal"`
}

func toDomain(doc *orderDocument) *domain.Order {
	order := &domain.Order{
		ID:              doc.ID,
		UserID:          doc.UserID,
		OrderDate:       doc.OrderDate,
		Status:          domain.OrderStatus(doc.Status),
		TotalAmount:     doc.TotalAmount,
		ShippingAddress: doc.ShippingAddress,
		CreatedAt:       doc.CreatedAt,
		UpdatedAt:       doc.UpdatedAt,
	}
	for _, item := range doc.Items {
		order.Items = append(order.Items, domain.OrderItem{
			ID:          item.ID,
			OrderID:     doc.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			Subtotal:    item.Subtotal,
		})
	}
	return order
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	now := time.Now().Local()
	doc := orderDocument{
		ID:              uuid.NewString(),
		UserID:          order.UserID,
		Status:          string(order.Status),
		TotalAmount:     order.TotalAmount,
		ShippingAddress: order.ShippingAddress,
		CreatedAt:       now,
		UpdatedAt:       now,
		Items:           []itemDocument{},
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return err
	}
	order.ID = doc.ID
	order.CreatedAt = doc.CreatedAt
	order.UpdatedAt = doc.UpdatedAt
	return nil
}

func (r *OrderRepository) AttachItem(ctx context.Context, orderID string, item *domain.OrderItem) error {
	item.ID = uuid.NewString()
	item.OrderID = orderID

	doc := itemDocument{
		ID:          item.ID,
		ProductID:   item.ProductID,
		ProductName: item.ProductName,
		UnitPrice:   item.UnitPrice,
		Quantity:    item.Quantity,
		Subtotal:    item.Subtotal,
	}
	update := bson.M{
		"$push": bson.M{"items": doc},
		"$inc":  bson.M{"total_amount": item.Subtotal},
		"$set":  bson.M{"updated_at": time.Now().Local()},
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"id": orderID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) Save(ctx context.Context, order *domain.Order) error {
	update := bson.M{"$set": bson.M{
		"total_amount": order.TotalAmount,
		"updated_at":   time.Now().Local(),
	}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"id": order.ID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var doc orderDocument
	err := r.collection.FindOne(ctx, bson.M{"id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return toDomain(&doc), nil
}

func (r *OrderRepository) FindAll(ctx context.Context) ([]domain.Order, error) {
	return r.find(ctx, bson.M{})
}

func (r *OrderRepository) FindByUserID(ctx context.Context, userID string) ([]domain.Order, error) {
	return r.find(ctx, bson.M{"user_id": userID})
}

func (r *OrderRepository) FindByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	return r.find(ctx, bson.M{"status": string(status)})
}

func (r *OrderRepository) find(ctx context.Context, filter bson.M) ([]domain.Order, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []domain.Order
	for cursor.Next(ctx) {
		var doc orderDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		orders = append(orders, *toDomain(&doc))
	}
	return orders, cursor.Err()
}

// UpdateStatus writes the new status conditionally on the order still being
// in the expected current status, the same conditional-update idiom as a
// stock reservation. When the filter misses because a concurrent transition
// won the race, the caller gets an InvalidTransitionError against the fresh
// status rather than silently clobbering it.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus, orderDate time.Time) error {
	set := bson.M{
		"status":     string(to),
		"updated_at": time.Now().Local(),
	}
	if !orderDate.IsZero() {
		set["order_date"] = orderDate
	}

	filter := bson.M{"id": id, "status": string(from)}
	res, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		current, findErr := r.FindByID(ctx, id)
		if findErr != nil {
			return findErr
		}
		return &domain.InvalidTransitionError{
			From:   current.Status,
			To:     to,
			Reason: fmt.Sprintf("order status changed concurrently (expected %s)", from),
		}
	}
	return nil
}

func (r *OrderRepository) SumRevenueForDay(ctx context.Context, day time.Time) (float64, error) {
	year, month, d := day.Date()
	start := time.Date(year, month, d, 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{
			"order_date": bson.M{"$gte": start, "$lt": end},
		}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$total_amount"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}

func (r *OrderRepository) CountByStatus(ctx context.Context) (map[domain.OrderStatus]int64, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}

	counts := make(map[domain.OrderStatus]int64, len(results))
	for _, result := range results {
		counts[domain.OrderStatus(result.Status)] = result.Count
	}
	return counts, nil
}
