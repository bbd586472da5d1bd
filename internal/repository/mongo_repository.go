package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/restaurant/internal/domain"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// hideObjectID keeps Mongo's own _id out of every document we read back.
var hideObjectID = bson.M{"_id": 0}

// MongoStore implements Backend with one collection per family. Amounts are stored as
// Decimal128 so they round-trip exactly.
type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

func (m *MongoStore) Put(ctx context.Context, fam Family, doc Document) error {
	raw, err := toBSON(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", fam.Name, err)
	}

	_, err = m.collection(fam).InsertOne(ctx, raw)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s %v", ErrDuplicateKey, fam.Name, doc[fam.Key])
		}
		return unavailable("insert", fam, err)
	}
	return nil
}

func (m *MongoStore) Get(ctx context.Context, fam Family, key string) (Document, bool, error) {
	var raw bson.M
	opts := options.FindOne().SetProjection(hideObjectID)
	err := m.collection(fam).FindOne(ctx, bson.M{fam.Key: key}, opts).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, nil
		}
		return nil, false, unavailable("find", fam, err)
	}

	doc, err := fromBSONDocument(raw)
	if err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", fam.Name, err)
	}
	return doc, true, nil
}

// Update issues a single $set over the supplied fields. Upsert stays disabled so a missing
// key never creates a record.
func (m *MongoStore) Update(ctx context.Context, fam Family, key string, set Document) (Document, error) {
	fields := bson.D{}
	for _, field := range fam.Fields {
		value, ok := set[field.Name]
		if !ok {
			continue
		}
		v, err := toBSON(value)
		if err != nil {
			return nil, fmt.Errorf("encode %s.%s: %w", fam.Name, field.Name, err)
		}
		fields = append(fields, bson.E{Key: field.Name, Value: v})
	}
	if len(fields) != len(set) {
		return nil, fmt.Errorf("%w: %s update outside allow-list", domain.ErrUnknownField, fam.Name)
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(hideObjectID)

	var raw bson.M
	err := m.collection(fam).FindOneAndUpdate(ctx, bson.M{fam.Key: key}, bson.M{"$set": fields}, opts).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s %s", domain.ErrNotFound, fam.Name, key)
		}
		return nil, unavailable("update", fam, err)
	}

	doc, err := fromBSONDocument(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", fam.Name, err)
	}
	return doc, nil
}

func (m *MongoStore) Delete(ctx context.Context, fam Family, key string) error {
	result, err := m.collection(fam).DeleteOne(ctx, bson.M{fam.Key: key})
	if err != nil {
		return unavailable("delete", fam, err)
	}

	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s %s", domain.ErrNotFound, fam.Name, key)
	}

	return nil
}

func (m *MongoStore) Scan(ctx context.Context, fam Family) ([]Document, error) {
	cursor, err := m.collection(fam).Find(ctx, bson.M{}, options.Find().SetProjection(hideObjectID))
	if err != nil {
		return nil, unavailable("scan", fam, err)
	}

	var raws []bson.M
	if err := cursor.All(ctx, &raws); err != nil {
		return nil, unavailable("scan", fam, err)
	}

	docs := make([]Document, 0, len(raws))
	for _, raw := range raws {
		doc, err := fromBSONDocument(raw)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", fam.Name, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// CreateIndexes makes the key attribute of every family unique.
func (m *MongoStore) CreateIndexes(ctx context.Context, families ...Family) error {
	for _, fam := range families {
		index := mongo.IndexModel{
			Keys:    bson.D{{Key: fam.Key, Value: 1}},
			Options: options.Index().SetUnique(true),
		}
		if _, err := m.collection(fam).Indexes().CreateOne(ctx, index); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", fam.Name, err)
		}
	}
	return nil
}

func (m *MongoStore) collection(fam Family) *mongo.Collection {
	return m.db.Collection(fam.Name)
}

func unavailable(op string, fam Family, err error) error {
	return fmt.Errorf("%w: %s %s: %w", domain.ErrStoreUnavailable, op, fam.Name, err)
}

func toBSON(v any) (any, error) {
	switch t := v.(type) {
	case decimal.Decimal:
		d128, err := primitive.ParseDecimal128(t.String())
		if err != nil {
			return nil, fmt.Errorf("decimal %s: %w", t, err)
		}
		return d128, nil
	case Document:
		out := make(bson.M, len(t))
		for k, val := range t {
			bv, err := toBSON(val)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", k, err)
			}
			out[k] = bv
		}
		return out, nil
	case []any:
		out := make(bson.A, len(t))
		for i, val := range t {
			bv, err := toBSON(val)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out[i] = bv
		}
		return out, nil
	default:
		return v, nil
	}
}

func fromBSONDocument(raw bson.M) (Document, error) {
	v, err := fromBSON(raw)
	if err != nil {
		return nil, err
	}
	return v.(Document), nil
}

// fromBSON maps decoded driver values onto Document kinds.
func fromBSON(v any) (any, error) {
	switch t := v.(type) {
	case primitive.Decimal128:
		d, err := decimal.NewFromString(t.String())
		if err != nil {
			return nil, fmt.Errorf("decimal128 %s: %w", t, err)
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(t), nil
	case int32:
		return int64(t), nil
	case bson.M:
		return fromBSONMap(t)
	case map[string]any:
		return fromBSONMap(t)
	case bson.D:
		m := make(map[string]any, len(t))
		for _, e := range t {
			m[e.Key] = e.Value
		}
		return fromBSONMap(m)
	case bson.A:
		return fromBSONList(t)
	case []any:
		return fromBSONList(t)
	default:
		return normalize(v)
	}
}

func fromBSONMap(m map[string]any) (Document, error) {
	out := make(Document, len(m))
	for k, val := range m {
		nv, err := fromBSON(val)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		out[k] = nv
	}
	return out, nil
}

func fromBSONList(list []any) ([]any, error) {
	out := make([]any, len(list))
	for i, val := range list {
		nv, err := fromBSON(val)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		out[i] = nv
	}
	return out, nil
}
