package model

import (
	"fmt"
	"time"
)

const nightLayout = "2006-01-02"

// RoomNight claims one night of one room for a booking. Its ID is derived from the
// room and the date, so the store rejects a second claim on the same night.
type RoomNight struct {
	ID        string    `bson:"_id" json:"id"`
	RoomID    string    `bson:"room_id" json:"room_id"`
	Night     time.Time `bson:"night" json:"night"`
	BookingID string    `bson:"booking_id" json:"booking_id"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

func NightKey(roomID string, night time.Time) string {
	return fmt.Sprintf("%s|%s", roomID, night.UTC().Format(nightLayout))
}

// NightsBetween lists the nights of a half-open stay [checkIn, checkOut).
func NightsBetween(checkIn, checkOut time.Time) []time.Time {
	var nights []time.Time
	for d := checkIn.UTC(); d.Before(checkOut); d = d.AddDate(0, 0, 1) {
		nights = append(nights, d)
	}
	return nights
}

// NightCount counts the nights of [checkIn, checkOut) without enumerating them.
func NightCount(checkIn, checkOut time.Time) int {
	if !checkIn.Before(checkOut) {
		return 0
	}
	span := checkOut.Sub(checkIn)
	nights := int(span / (24 * time.Hour))
	if span%(24*time.Hour) != 0 {
		nights++
	}
	return nights
}

// ClaimsFor builds the night claims of a booking.
func ClaimsFor(b *Booking, now time.Time) []*RoomNight {
	nights := NightsBetween(b.CheckIn, b.CheckOut)
	claims := make([]*RoomNight, 0, len(nights))
	for _, night := range nights {
		claims = append(claims, &RoomNight{
			ID:        NightKey(b.RoomID, night),
			RoomID:    b.RoomID,
			Night:     night,
			BookingID: b.ID,
			CreatedAt: now,
		})
	}
	return claims
}

// ParseStayDate accepts a calendar date (2006-01-02) or an RFC3339 timestamp and
// returns midnight UTC of that calendar day.
func ParseStayDate(raw string) (time.Time, error) {
	if t, err := time.Parse(nightLayout, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC3339", raw)
	}
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

// StaysOverlap applies the half-open rule: a stay ending on a day does not
// collide with one starting that day.
func StaysOverlap(in1, out1, in2, out2 time.Time) bool {
	return in1.Before(out2) && out1.After(in2)
}
