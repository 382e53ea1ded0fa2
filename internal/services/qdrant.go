package services

import (
	"context"
	"encoding/binary"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/logger"
)

// VectorPoint is one embedded resume chunk.
type VectorPoint struct {
	DocID   string
	DocType string
	RunID   string
	Text    string
	Vector  []float32
}

type VectorStore interface {
	Upsert(ctx context.Context, points []VectorPoint) error
	// BestScore returns the highest similarity between vector and the points
	// stored for docID. ok is false when docID has no points.
	BestScore(ctx context.Context, vector []float32, docID string) (score float32, ok bool, err error)
	DeleteRun(ctx context.Context, runID string) error
	Close() error
}

type qdrantStore struct {
	client         *qdrant.Client
	collectionName string
	logger         *zap.Logger

	once    sync.Once
	initErr error
}

func NewQdrantStore(urlStr, apiKey, collectionName string, log *zap.Logger) (VectorStore, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	// gRPC port
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   parsed.Hostname(),
		Port:   port,
		APIKey: apiKey,
		UseTLS: parsed.Scheme == "https",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantStore{
		client:         client,
		collectionName: collectionName,
		logger:         logger.OrNop(log),
	}, nil
}

// ensureCollection creates the collection on first use, sized to the first
// vector written.
func (q *qdrantStore) ensureCollection(ctx context.Context, size int) error {
	q.once.Do(func() {
		exists, err := q.client.CollectionExists(ctx, q.collectionName)
		if err != nil {
			q.initErr = fmt.Errorf("failed to check collection: %w", err)
			return
		}
		if exists {
			return
		}

		err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: q.collectionName,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(size),
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			q.initErr = fmt.Errorf("failed to create collection: %w", err)
			return
		}

		q.logger.Info("qdrant collection created",
			zap.String("collection", q.collectionName),
			zap.Int("vector_size", size),
		)
	})
	return q.initErr
}

// Upsert implements VectorStore.
func (q *qdrantStore) Upsert(ctx context.Context, points []VectorPoint) error {
	if len(points) == 0 {
		return nil
	}
	if err := q.ensureCollection(ctx, len(points[0].Vector)); err != nil {
		return err
	}

	structs := make([]*qdrant.PointStruct, 0, len(points))
	for _, p := range points {
		structs = append(structs, &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(pointID()),
			Vectors: qdrant.NewVectors(p.Vector...),
			Payload: qdrant.NewValueMap(map[string]any{
				"doc_id":   p.DocID,
				"doc_type": p.DocType,
				"run_id":   p.RunID,
				"text":     p.Text,
			}),
		})
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Wait:           qdrant.PtrOf(true),
		Points:         structs,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}
	return nil
}

// BestScore implements VectorStore.
func (q *qdrantStore) BestScore(ctx context.Context, vector []float32, docID string) (float32, bool, error) {
	found, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(vector...),
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch("doc_id", docID)},
		},
		Limit: qdrant.PtrOf(uint64(1)),
	})
	if err != nil {
		return 0, false, fmt.Errorf("failed to search: %w", err)
	}
	if len(found) == 0 {
		return 0, false, nil
	}
	return found[0].Score, true, nil
}

// DeleteRun implements VectorStore.
func (q *qdrantStore) DeleteRun(ctx context.Context, runID string) error {
	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: &qdrant.Filter{
					Must: []*qdrant.Condition{qdrant.NewMatch("run_id", runID)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete run points: %w", err)
	}
	return nil
}

// Close implements VectorStore.
func (q *qdrantStore) Close() error {
	return q.client.Close()
}

func pointID() uint64 {
	id := uuid.New()
	return binary.BigEndian.Uint64(id[:8])
}
