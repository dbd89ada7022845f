package consumers

import (
	"context"
	"encoding/json"
	"log/slog"

	"afisha/internal/config"
	"afisha/internal/database"
	"afisha/internal/messaging"
	"afisha/internal/models"
	"afisha/internal/repository"
	"afisha/internal/search"

	"github.com/nats-io/stan.go"
)

// Indexer keeps the Elasticsearch index in sync with event lifecycle
// messages. Published events are indexed, canceled events removed.
type Indexer struct {
	db     *database.DB
	nats   *messaging.NATSClient
	repos  *repository.Repositories
	search *search.Client
}

func NewIndexer(cfg *config.IndexerConfig) (*Indexer, error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		return nil, err
	}

	searchClient, err := search.NewClient(cfg.Search)
	if err != nil {
		return nil, err
	}

	return &Indexer{
		db:     db,
		nats:   natsClient,
		repos:  repository.NewRepositories(db),
		search: searchClient,
	}, nil
}

func (ix *Indexer) Start() error {
	slog.Info("Starting indexer consumers...")

	if _, err := ix.nats.SubscribeQueue(models.SubjectEventPublished, "indexer", ix.handleEventPublished); err != nil {
		return err
	}
	if _, err := ix.nats.SubscribeQueue(models.SubjectEventCanceled, "indexer", ix.handleEventCanceled); err != nil {
		return err
	}

	slog.Info("All consumers started successfully")
	return nil
}

// handleEventPublished re-reads the event so the index always reflects the
// committed row, not the message payload.
func (ix *Indexer) handleEventPublished(m *stan.Msg) {
	var msg models.EventPublishedMessage
	if err := json.Unmarshal(m.Data, &msg); err != nil {
		slog.Error("Failed to unmarshal event.published", "error", err)
		m.Ack() // malformed payload, redelivery won't help
		return
	}

	ctx := context.Background()
	event, err := ix.repos.Events.GetByID(ctx, msg.EventID)
	if err != nil {
		slog.Error("Failed to load event", "event_id", msg.EventID, "error", err)
		return
	}
	if event == nil || event.State != models.EventStatePublished {
		// Already gone or unpublished again; nothing to index.
		m.Ack()
		return
	}

	if err := ix.search.IndexEvent(ctx, event); err != nil {
		slog.Error("Failed to index event", "event_id", event.ID, "error", err)
		return
	}

	slog.Info("Indexed event", "event_id", event.ID)
	m.Ack()
}

func (ix *Indexer) handleEventCanceled(m *stan.Msg) {
	var msg models.EventCanceledMessage
	if err := json.Unmarshal(m.Data, &msg); err != nil {
		slog.Error("Failed to unmarshal event.canceled", "error", err)
		m.Ack() // malformed payload, redelivery won't help
		return
	}

	if err := ix.search.DeleteEvent(context.Background(), msg.EventID); err != nil {
		slog.Error("Failed to remove event from index", "event_id", msg.EventID, "error", err)
		return
	}

	slog.Info("Removed event from index", "event_id", msg.EventID)
	m.Ack()
}

func (ix *Indexer) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down indexer...")

	if ix.nats != nil {
		if err := ix.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}

	if ix.db != nil {
		if err := ix.db.Close(); err != nil {
			slog.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
