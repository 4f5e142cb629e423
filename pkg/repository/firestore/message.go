package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"

	"github.com/inkwell-labs/mnemosyne/pkg/domain/model"
	"github.com/inkwell-labs/mnemosyne/pkg/domain/types"
)

type messageDoc struct {
	ID             string    `firestore:"ID"`
	ConversationID string    `firestore:"ConversationID"`
	Role           string    `firestore:"Role"`
	Content        string    `firestore:"Content"`
	Importance     int       `firestore:"Importance"`
	Emotion        string    `firestore:"Emotion,omitempty"`
	CreatedAt      time.Time `firestore:"CreatedAt"`
}

func toMessageDoc(m *model.Message) *messageDoc {
	return &messageDoc{
		ID:             m.ID,
		ConversationID: m.ConversationID.String(),
		Role:           m.Role.String(),
		Content:        m.Content,
		Importance:     m.Importance,
		Emotion:        m.Emotion,
		CreatedAt:      m.CreatedAt,
	}
}

func fromMessageDoc(d *messageDoc) model.Message {
	return model.Message{
		ID:             d.ID,
		ConversationID: types.ConversationID(d.ConversationID),
		Role:           types.Role(d.Role),
		Content:        d.Content,
		Importance:     d.Importance,
		Emotion:        d.Emotion,
		CreatedAt:      d.CreatedAt,
	}
}

type messageRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newMessageRepository(client *firestore.Client) *messageRepository {
	return &messageRepository{client: client}
}

// messagesCollection returns the subcollection path:
// conversations/{conversationID}/messages
func (r *messageRepository) messagesCollection(conversationID types.ConversationID) *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix+"conversations").Doc(conversationID.String()).
		Collection("messages")
}

func (r *messageRepository) Append(ctx context.Context, msg *model.Message) (*model.Message, error) {
	if err := msg.ConversationID.Validate(); err != nil {
		return nil, err
	}

	stored := *msg
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	docRef := r.messagesCollection(stored.ConversationID).Doc(stored.ID)
	if _, err := docRef.Set(ctx, toMessageDoc(&stored)); err != nil {
		return nil, goerr.Wrap(err, "failed to append message",
			goerr.V("conversationID", stored.ConversationID))
	}

	return &stored, nil
}

func (r *messageRepository) ListRecent(ctx context.Context, conversationID types.ConversationID, limit int) ([]model.Message, error) {
	q := r.messagesCollection(conversationID).
		OrderBy("CreatedAt", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	messages := make([]model.Message, 0, limit)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate messages",
				goerr.V("conversationID", conversationID))
		}

		var d messageDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal message")
		}

		messages = append(messages, fromMessageDoc(&d))
	}

	// reverse to oldest-first order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

func (r *messageRepository) Count(ctx context.Context, conversationID types.ConversationID) (int, error) {
	docs, err := r.messagesCollection(conversationID).Select().Documents(ctx).GetAll()
	if err != nil {
		return 0, goerr.Wrap(err, "failed to count messages",
			goerr.V("conversationID", conversationID))
	}
	return len(docs), nil
}
