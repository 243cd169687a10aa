package guide

import "strings"

// Coordinates pinpoints a destination for map display. The backend serves
// them as plain data; rendering is entirely the client's concern.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// A Destination is a static catalog entry shown on the explore page.
type Destination struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Location    string      `json:"location"`
	Description string      `json:"description"`
	Image       string      `json:"image"`
	Tags        []string    `json:"tags"`
	Rating      float64     `json:"rating"`
	Coordinates Coordinates `json:"coordinates"`
}

var destinations = []Destination{
	{
		ID:          "borobudur",
		Name:        "Borobudur Temple",
		Location:    "Magelang, Central Java",
		Description: "The world's largest Buddhist temple, a UNESCO World Heritage site built in the 9th century. Featuring over 2,600 relief panels and 504 Buddha statues.",
		Image:       "https://images.unsplash.com/photo-1555098730-2f8af152d7c1?ixlib=rb-4.0.3",
		Tags:        []string{"Temple", "Culture", "UNESCO", "History"},
		Rating:      4.9,
		Coordinates: Coordinates{Lat: -7.6079, Lng: 110.2038},
	},
	{
		ID:          "raja-ampat",
		Name:        "Raja Ampat Islands",
		Location:    "West Papua",
		Description: "A tropical paradise with the richest marine biodiversity on earth. Perfect for diving, snorkeling, and experiencing pristine nature.",
		Image:       "https://images.unsplash.com/photo-1516748957061-f5ed80023bde?ixlib=rb-4.0.3",
		Tags:        []string{"Beach", "Nature", "Diving", "Remote"},
		Rating:      4.8,
		Coordinates: Coordinates{Lat: -0.5897, Lng: 130.1403},
	},
	{
		ID:          "komodo",
		Name:        "Komodo National Park",
		Location:    "East Nusa Tenggara",
		Description: "Home to the legendary Komodo dragon, this national park offers unique wildlife, beautiful pink beaches, and excellent diving opportunities.",
		Image:       "https://images.unsplash.com/photo-1544867692-26595a48843d?ixlib=rb-4.0.3",
		Tags:        []string{"Wildlife", "National Park", "UNESCO", "Adventure"},
		Rating:      4.7,
		Coordinates: Coordinates{Lat: -8.5852, Lng: 119.4412},
	},
	{
		ID:          "bali",
		Name:        "Bali",
		Location:    "Bali Province",
		Description: "The Island of Gods offers stunning landscapes, from volcanic mountains to pristine beaches, along with a vibrant culture and spiritual experiences.",
		Image:       "https://images.unsplash.com/photo-1537996194471-e657df975ab4?ixlib=rb-4.0.3",
		Tags:        []string{"Beach", "Culture", "Spirituality", "Nightlife"},
		Rating:      4.6,
		Coordinates: Coordinates{Lat: -8.3405, Lng: 115.0920},
	},
	{
		ID:          "prambanan",
		Name:        "Prambanan Temple",
		Location:    "Yogyakarta",
		Description: "A magnificent 9th-century Hindu temple compound, known for its tall and pointed architecture dedicated to the Trimurti (Brahma, Vishnu, and Shiva).",
		Image:       "https://images.unsplash.com/photo-1584810359583-96fc3448beaa?ixlib=rb-4.0.3",
		Tags:        []string{"Temple", "Culture", "UNESCO", "History"},
		Rating:      4.7,
		Coordinates: Coordinates{Lat: -7.7520, Lng: 110.4914},
	},
	{
		ID:          "tana-toraja",
		Name:        "Tana Toraja",
		Location:    "South Sulawesi",
		Description: "Famous for its elaborate funeral rituals, traditional houses (tongkonan), and stunning landscapes of terraced rice fields.",
		Image:       "https://images.unsplash.com/photo-1559628129-67cf63b72248?ixlib=rb-4.0.3",
		Tags:        []string{"Culture", "Traditional", "Mountains", "Remote"},
		Rating:      4.5,
		Coordinates: Coordinates{Lat: -3.0374, Lng: 119.8624},
	},
}

// Destinations returns the full static catalog.
func Destinations() []Destination {
	out := make([]Destination, len(destinations))
	copy(out, destinations)
	return out
}

// FilterDestinations narrows the catalog by a free-text query and a set of
// tags. The query matches name, description or location case-insensitively;
// a destination matches the tags when it carries at least one of them. Empty
// arguments match everything.
func FilterDestinations(query string, tags []string) []Destination {
	lower := strings.ToLower(query)
	out := make([]Destination, 0, len(destinations))
	for _, d := range destinations {
		matchesQuery := lower == "" ||
			strings.Contains(strings.ToLower(d.Name), lower) ||
			strings.Contains(strings.ToLower(d.Description), lower) ||
			strings.Contains(strings.ToLower(d.Location), lower)
		if !matchesQuery {
			continue
		}
		if len(tags) > 0 && !hasAnyTag(d.Tags, tags) {
			continue
		}
		out = append(out, d)
	}
	return out
}

func hasAnyTag(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}
