package firestore

import (
	"context"
	"sync/atomic"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/inkwell-labs/mnemosyne/pkg/domain/model"
	"github.com/inkwell-labs/mnemosyne/pkg/domain/types"
)

// memoryDoc is the Firestore document representation of model.Memory.
// Embedding is stored as firestore.Vector32 so a vector index can serve
// FindNearest queries if server-side search is ever preferred over the
// in-process ranker.
type memoryDoc struct {
	ID             model.MemoryID     `firestore:"ID"`
	UserID         string             `firestore:"UserID"`
	CompanionID    string             `firestore:"CompanionID,omitempty"`
	DocumentID     string             `firestore:"DocumentID,omitempty"`
	ConversationID string             `firestore:"ConversationID,omitempty"`
	Kind           string             `firestore:"Kind"`
	Content        string             `firestore:"Content"`
	Embedding      firestore.Vector32 `firestore:"Embedding,omitempty"`
	Importance     int                `firestore:"Importance"`
	Tags           []string           `firestore:"Tags,omitempty"`
	CreatedAt      time.Time          `firestore:"CreatedAt"`
	LastAccessedAt time.Time          `firestore:"LastAccessedAt"`
}

func toMemoryDoc(m *model.Memory) *memoryDoc {
	doc := &memoryDoc{
		ID:             m.ID,
		UserID:         m.UserID.String(),
		CompanionID:    m.CompanionID.String(),
		DocumentID:     m.DocumentID.String(),
		ConversationID: m.ConversationID.String(),
		Kind:           m.Kind.String(),
		Content:        m.Content,
		Importance:     m.Importance,
		Tags:           m.Tags,
		CreatedAt:      m.CreatedAt,
		LastAccessedAt: m.LastAccessedAt,
	}
	if len(m.Embedding) > 0 {
		doc.Embedding = firestore.Vector32(m.Embedding)
	}
	return doc
}

func fromMemoryDoc(d *memoryDoc) *model.Memory {
	m := &model.Memory{
		ID:             d.ID,
		UserID:         types.UserID(d.UserID),
		CompanionID:    types.CompanionID(d.CompanionID),
		DocumentID:     types.DocumentID(d.DocumentID),
		ConversationID: types.ConversationID(d.ConversationID),
		Kind:           types.MemoryKind(d.Kind),
		Content:        d.Content,
		Importance:     d.Importance,
		Tags:           d.Tags,
		CreatedAt:      d.CreatedAt,
		LastAccessedAt: d.LastAccessedAt,
	}
	if len(d.Embedding) > 0 {
		m.Embedding = []float32(d.Embedding)
	}
	return m
}

type memoryRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newMemoryRepository(client *firestore.Client) *memoryRepository {
	return &memoryRepository{client: client}
}

// memoriesCollection returns the subcollection path:
// users/{userID}/memories
func (r *memoryRepository) memoriesCollection(userID types.UserID) *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix+"users").Doc(userID.String()).
		Collection("memories")
}

func (r *memoryRepository) Insert(ctx context.Context, mem *model.Memory) (*model.Memory, error) {
	if err := mem.Validate(); err != nil {
		return nil, err
	}

	created := mem.Clone()
	if created.ID == "" {
		created.ID = model.NewMemoryID()
	}
	now := time.Now().UTC()
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	if created.LastAccessedAt.IsZero() {
		created.LastAccessedAt = created.CreatedAt
	}

	docRef := r.memoriesCollection(created.UserID).Doc(string(created.ID))
	if _, err := docRef.Set(ctx, toMemoryDoc(created)); err != nil {
		return nil, goerr.Wrap(err, "failed to insert memory", goerr.V("memoryID", created.ID))
	}

	return created, nil
}

func (r *memoryRepository) Query(ctx context.Context, userID types.UserID, filter model.MemoryFilter, limit int) ([]*model.Memory, error) {
	q := r.memoriesCollection(userID).Query
	if filter.CompanionID != "" {
		q = q.Where("CompanionID", "==", filter.CompanionID.String())
	}
	if filter.DocumentID != "" {
		q = q.Where("DocumentID", "==", filter.DocumentID.String())
	}
	if filter.ConversationID != "" {
		q = q.Where("ConversationID", "==", filter.ConversationID.String())
	}
	if len(filter.Kinds) > 0 {
		kinds := make([]string, len(filter.Kinds))
		for i, k := range filter.Kinds {
			kinds[i] = k.String()
		}
		q = q.Where("Kind", "in", kinds)
	}
	q = q.OrderBy("CreatedAt", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	memories := make([]*model.Memory, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate memories", goerr.V("userID", userID))
		}

		var d memoryDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal memory")
		}

		memories = append(memories, fromMemoryDoc(&d))
	}

	return memories, nil
}

func (r *memoryRepository) TouchAccess(ctx context.Context, userID types.UserID, ids []model.MemoryID) error {
	now := time.Now().UTC()
	for _, id := range ids {
		docRef := r.memoriesCollection(userID).Doc(string(id))
		if _, err := docRef.Update(ctx, []firestore.Update{
			{Path: "LastAccessedAt", Value: now},
		}); err != nil {
			// a memory removed by retention between query and touch is not an error
			if status.Code(err) == codes.NotFound {
				continue
			}
			return goerr.Wrap(err, "failed to touch memory access time", goerr.V("memoryID", id))
		}
	}
	return nil
}

// deleteConcurrency bounds parallel document deletes during retention sweeps
const deleteConcurrency = 8

func (r *memoryRepository) DeleteOlderThan(ctx context.Context, userID types.UserID, cutoff time.Time) (int, error) {
	iter := r.memoriesCollection(userID).
		Where("CreatedAt", "<", cutoff).
		Documents(ctx)
	defer iter.Stop()

	var refs []*firestore.DocumentRef
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, goerr.Wrap(err, "failed to iterate memories for retention")
		}
		refs = append(refs, doc.Ref)
	}

	var removed atomic.Int64
	eg := errgroup.Group{}
	eg.SetLimit(deleteConcurrency)
	for _, ref := range refs {
		eg.Go(func() error {
			if _, err := ref.Delete(ctx); err != nil {
				if status.Code(err) == codes.NotFound {
					return nil
				}
				return goerr.Wrap(err, "failed to delete memory", goerr.V("doc", ref.ID))
			}
			removed.Add(1)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return int(removed.Load()), err
	}

	return int(removed.Load()), nil
}
