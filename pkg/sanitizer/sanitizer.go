package sanitizer

import (
	"strings"
	"unicode"

	"hotelbook/pkg/model"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var (
	idPipeline   = Pipeline{strings.TrimSpace, strings.ToLower}
	datePipeline = Pipeline{strings.TrimSpace, strings.ToUpper}
	typePipeline = Pipeline{TrimAndNormalize, strings.ToLower}
	roomPipeline = Pipeline{TrimAndNormalize, strings.ToUpper}
)

// TrimAndNormalize trims s and collapses inner whitespace runs to one space.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
			continue
		}
		result.WriteRune(r)
		lastWasSpace = false
	}
	return result.String()
}

// NormalizeID lowercases hex object ids so "65F1..." and "65f1..." name the same row.
func NormalizeID(id string) string {
	return idPipeline.Apply(id)
}

// NormalizeDate upper-cases the RFC3339 separators ("t", "z") some clients send lowercase.
func NormalizeDate(date string) string {
	return datePipeline.Apply(date)
}

func SanitizeReserveRequest(req *model.ReserveRequest) {
	if req == nil {
		return
	}
	req.HotelID = NormalizeID(req.HotelID)
	req.RoomID = NormalizeID(req.RoomID)
	req.CheckIn = NormalizeDate(req.CheckIn)
	req.CheckOut = NormalizeDate(req.CheckOut)
}

func SanitizeRoom(room *model.Room) {
	if room == nil {
		return
	}
	room.ID = NormalizeID(room.ID)
	room.HotelID = NormalizeID(room.HotelID)
	room.RoomNumber = roomPipeline.Apply(room.RoomNumber)
	room.Type = typePipeline.Apply(room.Type)
}
