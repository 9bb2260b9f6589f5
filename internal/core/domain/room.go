package domain

import (
	"encoding/json"
	"strings"
)

// Room is a bookable physical space. The catalog is owned elsewhere and is
// read-only here.
type Room struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Space     string   `json:"space"`
	Capacity  int      `json:"capacity"`
	Amenities []string `json:"amenities"`
	Status    string   `json:"status"`
}

// DecodeAmenities parses the serialized amenity list. NULL, empty and
// malformed values all yield an empty list.
func DecodeAmenities(raw []byte) []string {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return []string{}
	}
	return out
}
