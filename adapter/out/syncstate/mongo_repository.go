// Package syncstate implements the sync engine's document-store outbound
// port over MongoDB: one record per generation_date, replace-then-swap
// semantics, plus a sibling lock collection enforcing the
// one-sync-per-generation mutual-exclusion rule.
package syncstate

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jpmarichal/ccmwf-go/core/domain"
)

const (
	stateCollection = "sync_states"
	lockCollection  = "sync_locks"
)

type stateDoc struct {
	GenerationDate      string    `bson:"generation_date"`
	LastProcessedFileID string    `bson:"last_processed_file_id"`
	ContinuationSet     bool      `bson:"continuation_set"`
	ContinuationFileID  string    `bson:"continuation_file_id"`
	UpdatedAt           time.Time `bson:"updated_at"`
}

type lockDoc struct {
	GenerationDate string    `bson:"_id"`
	LockedAt       time.Time `bson:"locked_at"`
}

// Repository implements out.SyncStateRepository.
type Repository struct {
	states *mongo.Collection
	locks  *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	return &Repository{
		states: db.Collection(stateCollection),
		locks:  db.Collection(lockCollection),
	}
}

func (r *Repository) Get(ctx context.Context, gen domain.GenerationDate) (domain.SyncState, bool, error) {
	var doc stateDoc
	err := r.states.FindOne(ctx, bson.M{"generation_date": string(gen)}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return domain.SyncState{}, false, nil
	}
	if err != nil {
		return domain.SyncState{}, false, err
	}
	return toDomainState(doc), true, nil
}

func (r *Repository) Save(ctx context.Context, state domain.SyncState) error {
	doc := fromDomainState(state)
	_, err := r.states.ReplaceOne(ctx,
		bson.M{"generation_date": doc.GenerationDate},
		doc,
		options.Replace().SetUpsert(true),
	)
	return err
}

func (r *Repository) Delete(ctx context.Context, gen domain.GenerationDate) error {
	_, err := r.states.DeleteOne(ctx, bson.M{"generation_date": string(gen)})
	return err
}

// TryLock inserts a lock document keyed by generation_date; a duplicate
// key error means another sync already holds it.
func (r *Repository) TryLock(ctx context.Context, gen domain.GenerationDate) (bool, error) {
	_, err := r.locks.InsertOne(ctx, lockDoc{
		GenerationDate: string(gen),
		LockedAt:       time.Now().UTC(),
	})
	if mongo.IsDuplicateKeyError(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *Repository) Unlock(ctx context.Context, gen domain.GenerationDate) error {
	_, err := r.locks.DeleteOne(ctx, bson.M{"_id": string(gen)})
	return err
}

func toDomainState(doc stateDoc) domain.SyncState {
	token := domain.NoContinuation()
	if doc.ContinuationSet {
		token = domain.ContinueAt(doc.ContinuationFileID)
	}
	return domain.SyncState{
		GenerationDate:      domain.GenerationDate(doc.GenerationDate),
		LastProcessedFileID: doc.LastProcessedFileID,
		ContinuationToken:   token,
		UpdatedAt:           doc.UpdatedAt,
	}
}

func fromDomainState(state domain.SyncState) stateDoc {
	fileID, set := state.ContinuationToken.FileID()
	return stateDoc{
		GenerationDate:      string(state.GenerationDate),
		LastProcessedFileID: state.LastProcessedFileID,
		ContinuationSet:     set,
		ContinuationFileID:  fileID,
		UpdatedAt:           state.UpdatedAt,
	}
}
