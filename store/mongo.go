package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"stagepass/config"
	"stagepass/errs"
	"stagepass/models"
)

const mongoTimeout = 5 * time.Second

type Mongo struct {
	client   *mongo.Client
	users    *mongo.Collection
	shows    *mongo.Collection
	bookings *mongo.Collection
}

// ConnectMongo probes the durable store once. A failed ping here is the
// signal for main to downgrade the whole repository to the memory fallback.
func ConnectMongo(cfg config.Mongo) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), mongoTimeout)
	defer cancel()

	opts := options.Client().ApplyURI(cfg.URI).SetServerSelectionTimeout(mongoTimeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	db := client.Database(cfg.Database)
	return &Mongo{
		client:   client,
		users:    db.Collection("users"),
		shows:    db.Collection("shows"),
		bookings: db.Collection("bookings"),
	}, nil
}

// Init seeds an empty shows collection with the sample inventory and migrates
// legacy show documents: missing totalSeats/bookedSeats/seatLayout get
// defaults, and the old "seats" field is renamed to totalSeats then removed.
func (m *Mongo) Init(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	count, err := m.shows.CountDocuments(ctx, bson.M{})
	if err != nil {
		return err
	}
	if count == 0 {
		shows := SampleShows()
		docs := make([]interface{}, len(shows))
		for i, s := range shows {
			docs[i] = s
		}
		if _, err := m.shows.InsertMany(ctx, docs); err != nil {
			return err
		}
		log.Println("✓ Sample data initialized")
		return nil
	}

	// carry the old seats count over before applying the blanket default
	if _, err := m.shows.UpdateMany(ctx,
		bson.M{"seats": bson.M{"$exists": true}, "totalSeats": bson.M{"$exists": false}},
		mongo.Pipeline{bson.D{{Key: "$set", Value: bson.M{"totalSeats": "$seats"}}}},
	); err != nil {
		return err
	}
	if _, err := m.shows.UpdateMany(ctx,
		bson.M{"totalSeats": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{
			"totalSeats":  100,
			"bookedSeats": []string{},
			"seatLayout":  models.SeatLayout{Rows: 10, Cols: 10},
		}},
	); err != nil {
		return err
	}
	if _, err := m.shows.UpdateMany(ctx, bson.M{}, bson.M{"$unset": bson.M{"seats": ""}}); err != nil {
		return err
	}
	log.Println("✓ Data migration completed")
	return nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %v: %w", op, err, errs.ErrDependencyUnavailable)
}

func (m *Mongo) FindShow(ctx context.Context, id string) (*models.Show, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	var show models.Show
	err := m.shows.FindOne(ctx, bson.M{"id": id}).Decode(&show)
	if err == mongo.ErrNoDocuments {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, storeErr("find show", err)
	}
	return &show, nil
}

func (m *Mongo) ListShows(ctx context.Context) ([]models.Show, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	cur, err := m.shows.Find(ctx, bson.M{})
	if err != nil {
		return nil, storeErr("list shows", err)
	}
	defer cur.Close(ctx)

	var shows []models.Show
	if err := cur.All(ctx, &shows); err != nil {
		return nil, storeErr("list shows", err)
	}
	return shows, nil
}

// ReserveSeats is the one true check-and-set of the system: the filter only
// matches when none of the requested seats are present, so two overlapping
// reservations can never both commit.
func (m *Mongo) ReserveSeats(ctx context.Context, showID string, seats []string) error {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	filter := bson.M{
		"id":          showID,
		"bookedSeats": bson.M{"$nin": seats},
		// capacity guard: committed seats may never exceed totalSeats
		"$expr": bson.M{"$lte": bson.A{
			bson.M{"$size": bson.M{"$ifNull": bson.A{"$bookedSeats", bson.A{}}}},
			bson.M{"$subtract": bson.A{"$totalSeats", len(seats)}},
		}},
	}
	res, err := m.shows.UpdateOne(ctx, filter,
		bson.M{"$push": bson.M{"bookedSeats": bson.M{"$each": seats}}},
	)
	if err != nil {
		return storeErr("reserve seats", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	// Nothing matched: either the show is unknown or we lost the race.
	show, err := m.FindShow(ctx, showID)
	if err != nil {
		return err
	}
	booked := make(map[string]bool, len(show.BookedSeats))
	for _, s := range show.BookedSeats {
		booked[s] = true
	}
	for _, s := range seats {
		if booked[s] {
			return &errs.SeatConflictError{Seat: s}
		}
	}
	return &errs.SeatConflictError{Seat: seats[0]}
}

func (m *Mongo) ReleaseSeats(ctx context.Context, showID string, seats []string) error {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	_, err := m.shows.UpdateOne(ctx,
		bson.M{"id": showID},
		bson.M{"$pull": bson.M{"bookedSeats": bson.M{"$in": seats}}},
	)
	if err != nil {
		return storeErr("release seats", err)
	}
	return nil
}

func (m *Mongo) CreateBooking(ctx context.Context, b *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	if _, err := m.bookings.InsertOne(ctx, b); err != nil {
		return storeErr("create booking", err)
	}
	return nil
}

func (m *Mongo) FindBooking(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	var b models.Booking
	err := m.bookings.FindOne(ctx, bson.M{"id": id}).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, storeErr("find booking", err)
	}
	return &b, nil
}

func (m *Mongo) FindBookingsByUser(ctx context.Context, email string) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	cur, err := m.bookings.Find(ctx, bson.M{"user": email})
	if err != nil {
		return nil, storeErr("find bookings", err)
	}
	defer cur.Close(ctx)

	var bookings []models.Booking
	if err := cur.All(ctx, &bookings); err != nil {
		return nil, storeErr("find bookings", err)
	}
	return bookings, nil
}

func (m *Mongo) UpdateBookingStatus(ctx context.Context, id, status string) error {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	res, err := m.bookings.UpdateOne(ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		return storeErr("update booking status", err)
	}
	if res.MatchedCount == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (m *Mongo) CreateUser(ctx context.Context, u *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	err := m.users.FindOne(ctx, bson.M{"email": u.Email}).Err()
	if err == nil {
		return errs.ErrDuplicateUser
	}
	if err != mongo.ErrNoDocuments {
		return storeErr("create user", err)
	}

	if _, err := m.users.InsertOne(ctx, u); err != nil {
		return storeErr("create user", err)
	}
	return nil
}

func (m *Mongo) FindUser(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	var u models.User
	err := m.users.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, storeErr("find user", err)
	}
	return &u, nil
}
