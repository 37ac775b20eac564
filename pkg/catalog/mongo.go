package catalog

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"kompare/pkg/models"
)

const (
	productsCollection   = "products"
	businessesCollection = "businesses"
)

// Mongo implements Store on the shared catalog database.
type Mongo struct {
	client     *mongo.Client
	products   *mongo.Collection
	businesses *mongo.Collection
}

func NewMongo(ctx context.Context, uri, dbName string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("%w: %v", models.ErrStoreUnavailable, err)
	}

	db := client.Database(dbName)
	m := &Mongo{
		client:     client,
		products:   db.Collection(productsCollection),
		businesses: db.Collection(businessesCollection),
	}
	if err := m.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return m, nil
}

// ensureIndexes backs the two natural keys: productUrl and business name.
// The unique indexes are what make the find-or-create and upsert paths safe
// against interleaved runs.
func (m *Mongo) ensureIndexes(ctx context.Context) error {
	_, err := m.products.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "productUrl", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("creating product index: %w", err)
	}

	_, err = m.businesses.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("creating business index: %w", err)
	}
	return nil
}

func (m *Mongo) EnsureBusiness(ctx context.Context, b models.Business) (models.Business, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	update := bson.M{"$setOnInsert": bson.M{
		"name":     b.Name,
		"website":  b.Website,
		"address":  b.Address,
		"location": b.Location,
	}}

	var out models.Business
	err := m.businesses.
		FindOneAndUpdate(ctx, bson.M{"name": b.Name}, update, opts).
		Decode(&out)
	if err != nil {
		return models.Business{}, fmt.Errorf("ensuring business %q: %w", b.Name, err)
	}
	return out, nil
}

func (m *Mongo) FindProductByURL(ctx context.Context, productURL string) (*models.Product, error) {
	var p models.Product
	err := m.products.FindOne(ctx, bson.M{"productUrl": productURL}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (m *Mongo) InsertProduct(ctx context.Context, p models.Product) error {
	_, err := m.products.InsertOne(ctx, p)
	return err
}

func (m *Mongo) UpdateProduct(ctx context.Context, productURL string, u ProductUpdate) error {
	set := bson.M{"updatedAt": u.UpdatedAt}
	if u.Price != nil {
		set["price"] = *u.Price
	}
	if u.Image != "" {
		set["image"] = u.Image
	}

	update := bson.M{"$set": set}
	if u.HistoryAppend != nil {
		update["$push"] = bson.M{"priceHistory": *u.HistoryAppend}
	}

	_, err := m.products.UpdateOne(ctx, bson.M{"productUrl": productURL}, update)
	return err
}

func (m *Mongo) DeleteStale(ctx context.Context, businessName string, passStartedAt time.Time) (int64, error) {
	filter := bson.M{
		"businessName": businessName,
		"updatedAt":    bson.M{"$lt": passStartedAt},
		"$expr":        bson.M{"$eq": bson.A{"$createdAt", "$updatedAt"}},
	}
	res, err := m.products.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
