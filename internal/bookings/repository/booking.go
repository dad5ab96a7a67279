package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "hotelbook/internal/bookings/errors"
	"hotelbook/pkg/config"
	mongotx "hotelbook/pkg/db/mongo"
	"hotelbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Bookings"
)

type BookingRepository interface {
	// CreateIfAvailable stores b and claims its nights in one atomic step, or
	// returns ErrDatesUnavailable if any non-cancelled booking overlaps.
	CreateIfAvailable(ctx context.Context, b *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindByOrderID(ctx context.Context, orderID string) (*model.Booking, error)
	FindByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, error)
	Count(ctx context.Context) (int64, error)
	// AttachOrder sets the order id only if none is set. The returned flag is
	// false when the booking already carried an order.
	AttachOrder(ctx context.Context, id, orderID string) (*model.Booking, bool, error)
	FinalizeAsPaid(ctx context.Context, id, orderID, paymentID, signature string) (*model.Booking, bool, error)
	MarkPaymentFailed(ctx context.Context, id string) (*model.Booking, bool, error)
	UpdateStatus(ctx context.Context, id, status string) (*model.Booking, string, error)
}

type mongoBookingRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	nights     *roomNightStore
	txManager  mongotx.TransactionManager
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		nights:     newRoomNightStore(db),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout unless it is a SessionContext,
// which cannot be wrapped without leaving the transaction.
func (r *mongoBookingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline && time.Until(deadline) < timeout {
		return context.WithDeadline(ctx, deadline)
	}
	return context.WithTimeout(ctx, timeout)
}

func overlapFilter(roomID string, checkIn, checkOut time.Time, excludeID any) bson.M {
	filter := bson.M{
		"room_id":   roomID,
		"status":    bson.M{"$ne": model.StatusCancelled},
		"check_in":  bson.M{"$lt": checkOut},
		"check_out": bson.M{"$gt": checkIn},
	}
	if excludeID != nil {
		filter["_id"] = bson.M{"$ne": excludeID}
	}
	return filter
}

// translateClaimError maps store-level races to ErrDatesUnavailable.
func translateClaimError(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) || mongotx.IsWriteConflict(err) {
		return bookingserrors.ErrDatesUnavailable
	}
	return err
}

func (r *mongoBookingRepository) CreateIfAvailable(ctx context.Context, b *model.Booking) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	doc, err := toDocument(b)
	if err != nil {
		return err
	}

	err = r.txManager.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		overlapping, err := r.collection.CountDocuments(sessCtx, overlapFilter(b.RoomID, b.CheckIn, b.CheckOut, nil), options.Count().SetLimit(1))
		if err != nil {
			return fmt.Errorf("failed to check overlap: %w", err)
		}
		if overlapping > 0 {
			return bookingserrors.ErrDatesUnavailable
		}

		if _, err := r.collection.InsertOne(sessCtx, doc); err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}
		return r.nights.claim(sessCtx, model.ClaimsFor(b, b.CreatedAt))
	})
	return translateClaimError(err)
}

func (r *mongoBookingRepository) findOne(ctx context.Context, filter bson.M) (*model.Booking, error) {
	var doc bookingDocument
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return doc.toModel(), nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *mongoBookingRepository) FindByOrderID(ctx context.Context, orderID string) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	if orderID == "" {
		return nil, bookingserrors.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"razorpay_order_id": orderID})
}

func (r *mongoBookingRepository) find(ctx context.Context, filter bson.M, limit int, offset int64) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []bookingDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	bookings := make([]*model.Booking, 0, len(docs))
	for i := range docs {
		bookings = append(bookings, docs[i].toModel())
	}
	return bookings, nil
}

func (r *mongoBookingRepository) count(ctx context.Context, filter bson.M) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

func (r *mongoBookingRepository) FindByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, error) {
	return r.find(ctx, bson.M{"user_id": userID}, limit, offset)
}

func (r *mongoBookingRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	return r.count(ctx, bson.M{"user_id": userID})
}

func (r *mongoBookingRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, error) {
	return r.find(ctx, bson.M{}, limit, offset)
}

func (r *mongoBookingRepository) Count(ctx context.Context) (int64, error) {
	return r.count(ctx, bson.M{})
}

func (r *mongoBookingRepository) updateOne(ctx context.Context, filter, update bson.M) (*model.Booking, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc bookingDocument
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return doc.toModel(), nil
}

func (r *mongoBookingRepository) AttachOrder(ctx context.Context, id, orderID string) (*model.Booking, bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := parseID(id)
	if err != nil {
		return nil, false, err
	}

	filter := bson.M{
		"_id":               oid,
		"razorpay_order_id": bson.M{"$in": bson.A{nil, ""}},
	}
	update := bson.M{"$set": bson.M{
		"razorpay_order_id": orderID,
		"payment_status":    model.PaymentPending,
		"updated_at":        now(),
	}}

	updated, err := r.updateOne(ctx, filter, update)
	if err != nil {
		return nil, false, fmt.Errorf("failed to attach order: %w", err)
	}
	if updated != nil {
		return updated, true, nil
	}

	current, err := r.findOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return nil, false, err
	}
	return current, false, nil
}

func (r *mongoBookingRepository) FinalizeAsPaid(ctx context.Context, id, orderID, paymentID, signature string) (*model.Booking, bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := parseID(id)
	if err != nil {
		return nil, false, err
	}

	filter := bson.M{
		"_id":               oid,
		"razorpay_order_id": orderID,
		"status":            bson.M{"$ne": model.StatusCancelled},
		"payment_status":    bson.M{"$ne": model.PaymentPaid},
	}
	update := bson.M{"$set": bson.M{
		"status":              model.StatusConfirmed,
		"payment_status":      model.PaymentPaid,
		"razorpay_payment_id": paymentID,
		"razorpay_signature":  signature,
		"updated_at":          now(),
	}}

	updated, err := r.updateOne(ctx, filter, update)
	if err != nil {
		return nil, false, fmt.Errorf("failed to finalize booking: %w", err)
	}
	if updated != nil {
		return updated, true, nil
	}

	current, err := r.findOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return nil, false, err
	}
	return classifyFinalize(current, orderID, paymentID)
}

func (r *mongoBookingRepository) MarkPaymentFailed(ctx context.Context, id string) (*model.Booking, bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := parseID(id)
	if err != nil {
		return nil, false, err
	}

	filter := bson.M{"_id": oid, "payment_status": model.PaymentPending}
	update := bson.M{"$set": bson.M{
		"payment_status": model.PaymentFailed,
		"updated_at":     now(),
	}}

	updated, err := r.updateOne(ctx, filter, update)
	if err != nil {
		return nil, false, fmt.Errorf("failed to mark payment failed: %w", err)
	}
	if updated != nil {
		return updated, true, nil
	}

	current, err := r.findOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return nil, false, err
	}
	return current, false, nil
}

// UpdateStatus applies an admin status change and keeps the night claims in step:
// cancelling releases them, leaving cancelled claims them again. It returns the
// previous status.
func (r *mongoBookingRepository) UpdateStatus(ctx context.Context, id, status string) (*model.Booking, string, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := parseID(id)
	if err != nil {
		return nil, "", err
	}

	var (
		result   *model.Booking
		previous string
	)
	err = r.txManager.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		current, err := r.findOne(sessCtx, bson.M{"_id": oid})
		if err != nil {
			return err
		}
		previous = current.Status
		if current.Status == status {
			result = current
			return nil
		}

		switch {
		case status == model.StatusCancelled:
			if err := r.nights.release(sessCtx, current.ID); err != nil {
				return err
			}
		case current.Status == model.StatusCancelled:
			overlapping, err := r.collection.CountDocuments(sessCtx, overlapFilter(current.RoomID, current.CheckIn, current.CheckOut, oid), options.Count().SetLimit(1))
			if err != nil {
				return fmt.Errorf("failed to check overlap: %w", err)
			}
			if overlapping > 0 {
				return bookingserrors.ErrDatesUnavailable
			}
			if err := r.nights.claim(sessCtx, model.ClaimsFor(current, now())); err != nil {
				return err
			}
		}

		updated, err := r.updateOne(sessCtx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
			"status":     status,
			"updated_at": now(),
		}})
		if err != nil {
			return fmt.Errorf("failed to update booking status: %w", err)
		}
		if updated == nil {
			return bookingserrors.ErrNotFound
		}
		result = updated
		return nil
	})
	if err != nil {
		return nil, "", translateClaimError(err)
	}
	return result, previous, nil
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
