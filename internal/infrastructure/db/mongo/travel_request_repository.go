package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/agencia-oeste/viajes-api/internal/core/domain"
	"github.com/agencia-oeste/viajes-api/internal/core/ports"
)

const (
	requestsCollection = "solicitudes"
	maxWriteAttempts   = 8
)

// ErrWriteConflict is returned when a write keeps losing races with
// concurrent writers.
var ErrWriteConflict = errors.New("travel request write conflict")

type TravelRequestRepository struct {
	col *mongo.Collection
}

func NewTravelRequestRepository(db *mongo.Database) *TravelRequestRepository {
	return &TravelRequestRepository{col: db.Collection(requestsCollection)}
}

// requestDoc adds the bookkeeping fields kept next to each record: seq keeps
// insertion order and rev guards compare-and-swap updates.
type requestDoc struct {
	domain.TravelRequest `bson:",inline"`
	Seq                  int64 `bson:"seq"`
	Rev                  int64 `bson:"rev"`
}

func (r *TravelRequestRepository) All(ctx context.Context) ([]domain.TravelRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find travel requests: %w", err)
	}
	var docs []requestDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode travel requests: %w", err)
	}

	out := make([]domain.TravelRequest, len(docs))
	for i := range docs {
		out[i] = normalise(docs[i].TravelRequest)
	}
	return out, nil
}

func (r *TravelRequestRepository) FindByID(ctx context.Context, id string) (*domain.TravelRequest, error) {
	doc, err := r.find(ctx, id)
	if err != nil {
		return nil, err
	}
	tr := normalise(doc.TravelRequest)
	return &tr, nil
}

// Append picks the id from the ids currently stored and inserts; a
// duplicate _id means another writer won the id, so it retries.
func (r *TravelRequestRepository) Append(ctx context.Context, rec *domain.TravelRequest, assign ports.IDAssigner) error {
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		ids, err := r.ids(ctx)
		if err != nil {
			return err
		}
		rec.ID = assign(ids)

		insertCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
		_, err = r.col.InsertOne(insertCtx, requestDoc{TravelRequest: *rec, Seq: time.Now().UnixNano()})
		cancel()
		if err == nil {
			return nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("insert travel request: %w", err)
		}
	}
	return ErrWriteConflict
}

// Update replaces the record only if its revision is unchanged since it was
// read, retrying the mutation against the newer version otherwise.
func (r *TravelRequestRepository) Update(ctx context.Context, id string, mutate ports.TravelRequestMutation) (*domain.TravelRequest, error) {
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		doc, err := r.find(ctx, id)
		if err != nil {
			return nil, err
		}
		next, err := mutate(normalise(doc.TravelRequest))
		if err != nil {
			return nil, err
		}
		next.ID = id

		replaceCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
		res, err := r.col.ReplaceOne(replaceCtx,
			bson.M{"_id": id, "rev": doc.Rev},
			requestDoc{TravelRequest: next, Seq: doc.Seq, Rev: doc.Rev + 1},
		)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("replace travel request: %w", err)
		}
		if res.MatchedCount == 1 {
			return &next, nil
		}
	}
	return nil, ErrWriteConflict
}

func (r *TravelRequestRepository) Remove(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("delete travel request: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func (r *TravelRequestRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "seq", Value: 1}}})
	return err
}

func (r *TravelRequestRepository) find(ctx context.Context, id string) (*requestDoc, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc requestDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTravelRequestNotFound
		}
		return nil, fmt.Errorf("find travel request: %w", err)
	}
	return &doc, nil
}

func (r *TravelRequestRepository) ids(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	raw, err := r.col.Distinct(ctx, "_id", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list travel request ids: %w", err)
	}
	ids := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			ids = append(ids, s)
		}
	}
	return ids, nil
}

// normalise restores UTC on timestamps decoded from BSON dates.
func normalise(tr domain.TravelRequest) domain.TravelRequest {
	tr.RegisteredAt = tr.RegisteredAt.UTC()
	if tr.UpdatedAt != nil {
		u := tr.UpdatedAt.UTC()
		tr.UpdatedAt = &u
	}
	return tr
}
