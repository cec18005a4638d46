package storage

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"truthtracker/internal/config"
	"truthtracker/internal/domain"
	"truthtracker/internal/ports"
)

const (
	promisesCollection          = "promises"
	pendingIncidentsCollection  = "incidents_pending"
	verifiedIncidentsCollection = "incidents_verified"
	incidentBatchesCollection   = "incident_batches"
	syncLogsCollection          = "sync_logs"
)

// Mongo holds the document-store connection and hands out per-collection
// repositories.
type Mongo struct {
	client    *mongo.Client
	promises  *PromiseStore
	incidents *IncidentStore
	syncLogs  *SyncLogStore
}

// NewMongo connects, pings, and prepares the collections and their indexes.
func NewMongo(ctx context.Context, cfg config.MongoConfig) (*Mongo, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(cfg.Database)
	m := &Mongo{
		client:   client,
		promises: &PromiseStore{coll: db.Collection(promisesCollection)},
		incidents: &IncidentStore{
			pending:  db.Collection(pendingIncidentsCollection),
			verified: db.Collection(verifiedIncidentsCollection),
			batches:  db.Collection(incidentBatchesCollection),
		},
		syncLogs: &SyncLogStore{coll: db.Collection(syncLogsCollection)},
	}
	if err := m.createIndexes(connectCtx); err != nil {
		return nil, fmt.Errorf("create indexes: %w", err)
	}
	return m, nil
}

func (m *Mongo) createIndexes(ctx context.Context) error {
	indexed := map[*mongo.Collection]string{
		m.promises.coll:      "extractedAt",
		m.incidents.pending:  "addedAt",
		m.incidents.verified: "addedAt",
		m.syncLogs.coll:      "timestamp",
	}
	for coll, field := range indexed {
		model := mongo.IndexModel{Keys: bson.D{{Key: field, Value: -1}}}
		if _, err := coll.Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("index %s on %s: %w", field, coll.Name(), err)
		}
	}
	return nil
}

// Promises returns the promise repository.
func (m *Mongo) Promises() *PromiseStore { return m.promises }

// Incidents returns the incident repository.
func (m *Mongo) Incidents() *IncidentStore { return m.incidents }

// SyncLogs returns the run-summary repository.
func (m *Mongo) SyncLogs() *SyncLogStore { return m.syncLogs }

// Close disconnects from the document store.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// PromiseStore persists extracted promises and serves dedup history.
type PromiseStore struct {
	coll *mongo.Collection
}

var _ ports.PromiseRepository = (*PromiseStore)(nil)

// Save stores an extracted promise in the pending-verification state.
func (s *PromiseStore) Save(ctx context.Context, promise domain.ExtractedPromise) error {
	if promise.Status == "" {
		promise.Status = domain.StatusPendingVerification
	}
	if _, err := s.coll.InsertOne(ctx, promise); err != nil {
		return fmt.Errorf("insert promise: %w", err)
	}
	return nil
}

// Recent returns up to limit promises, newest extraction first.
func (s *PromiseStore) Recent(ctx context.Context, limit int) ([]domain.ExtractedPromise, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "extractedAt", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("query recent promises: %w", err)
	}
	defer cursor.Close(ctx)

	var promises []domain.ExtractedPromise
	if err := cursor.All(ctx, &promises); err != nil {
		return nil, fmt.Errorf("decode promises: %w", err)
	}
	return promises, nil
}

// IncidentStore owns the pending and verified incident collections plus the
// raw batch append collection.
type IncidentStore struct {
	pending  *mongo.Collection
	verified *mongo.Collection
	batches  *mongo.Collection
}

var _ ports.IncidentRepository = (*IncidentStore)(nil)

// CreatePending stores a machine-ingested incident awaiting human review.
func (s *IncidentStore) CreatePending(ctx context.Context, incident domain.PoliticalIncident) error {
	incident.Verified = false
	if _, err := s.pending.InsertOne(ctx, incident); err != nil {
		return fmt.Errorf("insert pending incident: %w", err)
	}
	return nil
}

// Pending lists incidents awaiting review, newest first.
func (s *IncidentStore) Pending(ctx context.Context) ([]domain.PoliticalIncident, error) {
	return s.list(ctx, s.pending)
}

// Verified lists approved incidents, newest first. This is the only incident
// view public listings are allowed to read.
func (s *IncidentStore) Verified(ctx context.Context) ([]domain.PoliticalIncident, error) {
	return s.list(ctx, s.verified)
}

func (s *IncidentStore) list(ctx context.Context, coll *mongo.Collection) ([]domain.PoliticalIncident, error) {
	opts := options.Find().SetSort(bson.D{{Key: "addedAt", Value: -1}})
	cursor, err := coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", coll.Name(), err)
	}
	defer cursor.Close(ctx)

	var incidents []domain.PoliticalIncident
	if err := cursor.All(ctx, &incidents); err != nil {
		return nil, fmt.Errorf("decode incidents: %w", err)
	}
	return incidents, nil
}

// Promote moves one incident from pending to verified. The verified copy is
// written first; if the pending delete then fails, the verified copy is
// removed again so the record never stays visible in both collections.
func (s *IncidentStore) Promote(ctx context.Context, id string) error {
	var incident domain.PoliticalIncident
	err := s.pending.FindOne(ctx, bson.M{"_id": id}).Decode(&incident)
	if err == mongo.ErrNoDocuments {
		return fmt.Errorf("pending incident %s not found", id)
	}
	if err != nil {
		return fmt.Errorf("load pending incident: %w", err)
	}

	incident.Verified = true
	if _, err := s.verified.InsertOne(ctx, incident); err != nil {
		return fmt.Errorf("insert verified incident: %w", err)
	}

	if _, err := s.pending.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		if _, rollbackErr := s.verified.DeleteOne(ctx, bson.M{"_id": id}); rollbackErr != nil {
			return fmt.Errorf("delete pending incident: %v (rollback of verified copy also failed: %w)", err, rollbackErr)
		}
		return fmt.Errorf("delete pending incident: %w", err)
	}
	return nil
}

// DeletePending rejects a pending incident.
func (s *IncidentStore) DeletePending(ctx context.Context, id string) error {
	result, err := s.pending.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete pending incident: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("pending incident %s not found", id)
	}
	return nil
}

// AppendBatch stores an externally submitted incident batch as-is.
func (s *IncidentStore) AppendBatch(ctx context.Context, batch domain.IncidentBatch) error {
	if _, err := s.batches.InsertOne(ctx, batch); err != nil {
		return fmt.Errorf("insert incident batch: %w", err)
	}
	return nil
}

// SyncLogStore appends and lists run-summary records.
type SyncLogStore struct {
	coll *mongo.Collection
}

var _ ports.SyncLogRepository = (*SyncLogStore)(nil)

// Append writes one run-summary record.
func (s *SyncLogStore) Append(ctx context.Context, log domain.SyncLog) error {
	if _, err := s.coll.InsertOne(ctx, log); err != nil {
		return fmt.Errorf("insert sync log: %w", err)
	}
	return nil
}

// Recent returns up to limit run-summary records, newest first.
func (s *SyncLogStore) Recent(ctx context.Context, limit int) ([]domain.SyncLog, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("query sync logs: %w", err)
	}
	defer cursor.Close(ctx)

	var logs []domain.SyncLog
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, fmt.Errorf("decode sync logs: %w", err)
	}
	return logs, nil
}
