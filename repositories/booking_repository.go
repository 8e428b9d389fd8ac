package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nestay/nestay_backend/config"
	"github.com/nestay/nestay_backend/models"
)

type BookingRepository struct {
	collection *mongo.Collection
}

func NewBookingRepository(db *mongo.Client) *BookingRepository {
	return &BookingRepository{
		collection: config.GetCollection(db, "bookings"),
	}
}

// FindByHost returns all bookings for a host, newest first.
func (r *BookingRepository) FindByHost(ctx context.Context, hostID primitive.ObjectID) ([]models.Booking, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"hostId": hostID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// FindByGuest returns all bookings made by a guest, newest first.
func (r *BookingRepository) FindByGuest(ctx context.Context, guestID primitive.ObjectID) ([]models.Booking, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"guestId": guestID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// HasOverlap reports whether a listing already has a non-cancelled booking
// intersecting the [checkIn, checkOut) range.
func (r *BookingRepository) HasOverlap(ctx context.Context, listingID primitive.ObjectID, checkIn, checkOut time.Time) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"listingId": listingID,
		"status":    bson.M{"$nin": []string{models.BookingStatusCancelled}},
		"checkIn":   bson.M{"$lt": checkOut},
		"checkOut":  bson.M{"$gt": checkIn},
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ExpireStalePending cancels pending_approval bookings whose check-in date
// has already passed. Runs from the background sweeper.
func (r *BookingRepository) ExpireStalePending(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.collection.UpdateMany(ctx,
		bson.M{
			"status":  models.BookingStatusPendingApproval,
			"checkIn": bson.M{"$lt": now},
		},
		bson.M{"$set": bson.M{
			"status":       models.BookingStatusCancelled,
			"hostResponse": "Request expired before approval",
			"updatedAt":    now,
		}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
