package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/apifuncional/catalog-api/internal/core/domain"
)

const (
	collectionProducts = "products"
	collectionCounters = "counters"
	productSequence    = "products"
)

// ProductRepository stores products keyed by a sequential integer id drawn
// from the counters collection.
type ProductRepository struct {
	col      *mongo.Collection
	counters *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{
		col:      db.Collection(collectionProducts),
		counters: db.Collection(collectionCounters),
	}
}

type mongoProduct struct {
	ID        int64     `bson:"_id"`
	Name      string    `bson:"name"`
	Price     float64   `bson:"price"`
	Stock     int       `bson:"stock"`
	Image     string    `bson:"image,omitempty"`
	Version   int64     `bson:"version"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (mp *mongoProduct) toDomain() *domain.Product {
	return &domain.Product{
		ID:        mp.ID,
		Name:      mp.Name,
		Price:     mp.Price,
		Stock:     mp.Stock,
		Image:     mp.Image,
		Version:   mp.Version,
		CreatedAt: mp.CreatedAt.UTC(),
		UpdatedAt: mp.UpdatedAt.UTC(),
	}
}

func (r *ProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []mongoProduct
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}

	products := make([]*domain.Product, 0, len(docs))
	for i := range docs {
		products = append(products, docs[i].toDomain())
	}
	return products, nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mp mongoProduct
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&mp); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return mp.toDomain(), nil
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.nextID(ctx)
	if err != nil {
		return err
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := mongoProduct{
		ID:        id,
		Name:      p.Name,
		Price:     p.Price,
		Stock:     p.Stock,
		Image:     p.Image,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	*p = *doc.toDomain()
	return nil
}

// Update replaces the writable fields and bumps the version in one atomic
// FindOneAndUpdate. A non-matching filter means the record is gone or its
// version moved on.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": p.ID}
	if p.Version > 0 {
		filter["version"] = p.Version
	}
	update := bson.M{
		"$set": bson.M{
			"name":       p.Name,
			"price":      p.Price,
			"stock":      p.Stock,
			"image":      p.Image,
			"updated_at": time.Now().UTC(),
		},
		"$inc": bson.M{"version": 1},
	}

	var mp mongoProduct
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&mp); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.ErrConcurrencyConflict
		}
		return fmt.Errorf("update product: %w", err)
	}

	*p = *mp.toDomain()
	return nil
}

func (r *ProductRepository) Exists(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count product: %w", err)
	}
	return n > 0, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// EnsureIndexes creates the listing index used by name lookups.
func (r *ProductRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetName("idx_name"),
	})
	if err != nil {
		return fmt.Errorf("create product indexes: %w", err)
	}
	return nil
}

func (r *ProductRepository) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": productSequence},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next product id: %w", err)
	}
	return counter.Seq, nil
}
