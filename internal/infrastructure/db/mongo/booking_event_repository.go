package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/swahilipot/room-booking/internal/core/domain"
)

const (
	bookingEventsCollection = "booking_events"
	opTimeout               = 5 * time.Second
)

// bookingEventDoc is the stored shape of a domain.BookingEvent.
type bookingEventDoc struct {
	BookingID int64     `bson:"booking_id"`
	Action    string    `bson:"action"`
	Status    string    `bson:"status"`
	ActorID   int64     `bson:"actor_id"`
	ActorRole string    `bson:"actor_role"`
	RoomID    int64     `bson:"room_id"`
	Date      string    `bson:"date"`
	Window    string    `bson:"window"`
	Timestamp time.Time `bson:"timestamp"`
}

func toDoc(e *domain.BookingEvent) bookingEventDoc {
	return bookingEventDoc{
		BookingID: e.BookingID,
		Action:    string(e.Action),
		Status:    string(e.Status),
		ActorID:   e.ActorID,
		ActorRole: e.ActorRole,
		RoomID:    e.RoomID,
		Date:      e.Date,
		Window:    e.Window,
		Timestamp: e.Timestamp.UTC(),
	}
}

func (d bookingEventDoc) toDomain() domain.BookingEvent {
	return domain.BookingEvent{
		BookingID: d.BookingID,
		Action:    domain.BookingAction(d.Action),
		Status:    domain.BookingStatus(d.Status),
		ActorID:   d.ActorID,
		ActorRole: d.ActorRole,
		RoomID:    d.RoomID,
		Date:      d.Date,
		Window:    d.Window,
		Timestamp: d.Timestamp,
	}
}

// BookingEventRepository implements ports.BookingEventRepository using MongoDB.
type BookingEventRepository struct {
	col *mongo.Collection
}

func NewBookingEventRepository(db *mongo.Database) *BookingEventRepository {
	return &BookingEventRepository{col: db.Collection(bookingEventsCollection)}
}

// Append persists a lifecycle event to the booking_events audit collection.
func (r *BookingEventRepository) Append(ctx context.Context, event *domain.BookingEvent) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, toDoc(event)); err != nil {
		return fmt.Errorf("insert booking event: %w", err)
	}
	return nil
}

func (r *BookingEventRepository) ListByBooking(ctx context.Context, bookingID int64) ([]domain.BookingEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.col.Find(ctx, bson.M{"booking_id": bookingID}, opts)
	if err != nil {
		return nil, fmt.Errorf("query booking events: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []bookingEventDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode booking events: %w", err)
	}

	events := make([]domain.BookingEvent, 0, len(docs))
	for _, d := range docs {
		events = append(events, d.toDomain())
	}
	return events, nil
}

// EnsureIndexes creates the lookup index on the booking_events collection.
func (r *BookingEventRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "booking_id", Value: 1}, {Key: "timestamp", Value: 1}}},
		{Keys: bson.D{{Key: "room_id", Value: 1}, {Key: "date", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
