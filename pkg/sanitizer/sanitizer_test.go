package sanitizer

import (
	"testing"

	"hotelbook/pkg/model"
)

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "trim spaces", input: "  Sea View  ", want: "Sea View"},
		{name: "multiple spaces between words", input: "Sea    View", want: "Sea View"},
		{name: "tabs and newlines", input: "Sea\t\nView", want: "Sea View"},
		{name: "empty string", input: "", want: ""},
		{name: "only whitespace", input: "   \t\n  ", want: ""},
		{name: "preserve special characters", input: " Café & Spa™ ", want: "Café & Spa™"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimAndNormalize(tt.input)
			if got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := TrimAndNormalize(got); again != got {
				t.Errorf("not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestSanitizeReserveRequest(t *testing.T) {
	req := &model.ReserveRequest{
		HotelID:  " 65F1A0C2B7E4D3A1F0C9E001 ",
		RoomID:   "65f1a0c2b7e4d3a1f0c9e101\n",
		CheckIn:  " 2030-01-10 ",
		CheckOut: "2030-01-12t00:00:00z",
	}
	SanitizeReserveRequest(req)

	if req.HotelID != "65f1a0c2b7e4d3a1f0c9e001" {
		t.Errorf("hotel id not normalized: %q", req.HotelID)
	}
	if req.RoomID != "65f1a0c2b7e4d3a1f0c9e101" {
		t.Errorf("room id not normalized: %q", req.RoomID)
	}
	if req.CheckIn != "2030-01-10" {
		t.Errorf("check-in not trimmed: %q", req.CheckIn)
	}
	if req.CheckOut != "2030-01-12T00:00:00Z" {
		t.Errorf("check-out not normalized: %q", req.CheckOut)
	}

	SanitizeReserveRequest(nil)
}

func TestSanitizeRoom(t *testing.T) {
	room := &model.Room{
		HotelID:    "65F1A0C2B7E4D3A1F0C9E001",
		RoomNumber: " 12a ",
		Type:       " Deluxe ",
	}
	SanitizeRoom(room)

	if room.HotelID != "65f1a0c2b7e4d3a1f0c9e001" || room.RoomNumber != "12A" || room.Type != "deluxe" {
		t.Errorf("unexpected room %+v", room)
	}
}
