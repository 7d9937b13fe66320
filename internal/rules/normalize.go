package rules

import (
	"strings"

	"golang.org/x/text/cases"
)

var foldCaser = cases.Fold()

// fold lowercases a string for case-insensitive comparison, handling
// non-ASCII input correctly (e.g. "STRASSE" vs "straße").
func fold(s string) string {
	return foldCaser.String(strings.TrimSpace(s))
}

// canonicalRoomTypes maps literal room names, as users actually type
// them, to the canonical category rule authors write rules against.
// Keys are folded and space-normalized.
var canonicalRoomTypes = map[string]string{
	"bedroom":         "bedroom",
	"primary bedroom": "bedroom",
	"master bedroom":  "bedroom",
	"guest bedroom":   "bedroom",
	"guest room":      "bedroom",
	"kids room":       "bedroom",
	"kids bedroom":    "bedroom",
	"nursery":         "bedroom",
	"spare room":      "bedroom",

	"bathroom":        "bathroom",
	"bath":            "bathroom",
	"full bath":       "bathroom",
	"half bath":       "bathroom",
	"powder room":     "bathroom",
	"master bathroom": "bathroom",
	"ensuite":         "bathroom",
	"en suite":        "bathroom",
	"washroom":        "bathroom",

	"kitchen":     "kitchen",
	"kitchenette": "kitchen",

	"living room": "living_room",
	"family room": "living_room",
	"great room":  "living_room",
	"den":         "living_room",
	"lounge":      "living_room",

	"dining room": "dining_room",

	"laundry":      "laundry",
	"laundry room": "laundry",
	"utility room": "laundry",
	"mudroom":      "laundry",

	"office":      "office",
	"home office": "office",
	"study":       "office",

	"garage":   "garage",
	"basement": "basement",
	"cellar":   "basement",
	"attic":    "attic",
	"hallway":  "hallway",
	"closet":   "closet",
}

// CanonicalRoomType normalizes a literal room type to its canonical
// category so rule authors write one rule per category instead of
// enumerating variants. Unknown types are returned folded with spaces
// collapsed to underscores, so exact-match rules still work.
func CanonicalRoomType(roomType string) string {
	s := fold(roomType)
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	s = strings.Join(strings.Fields(s), " ")
	if c, ok := canonicalRoomTypes[s]; ok {
		return c
	}
	// Fall back to keyword matching for compound names the table does
	// not enumerate ("Upstairs Guest Bedroom", "Main Floor Bath").
	switch {
	case strings.Contains(s, "bedroom") || strings.Contains(s, "nursery"):
		return "bedroom"
	case strings.Contains(s, "bath"):
		return "bathroom"
	case strings.Contains(s, "kitchen"):
		return "kitchen"
	case strings.Contains(s, "laundry"):
		return "laundry"
	case strings.Contains(s, "garage"):
		return "garage"
	case strings.Contains(s, "office") || strings.Contains(s, "study"):
		return "office"
	}
	return strings.ReplaceAll(s, " ", "_")
}
