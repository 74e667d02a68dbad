package domain

import (
	"fmt"
	"time"
)

// Place is a food location on campus.
type Place struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Address     string    `json:"address,omitempty"`
	Category    string    `json:"category,omitempty"`
	Description string    `json:"description,omitempty"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	Rating      float64   `json:"rating"`
	ReviewCount int       `json:"review_count"`
	Tags        []string  `json:"tags,omitempty"`
	Distance    *float64  `json:"distance,omitempty"` // miles, computed field
	CreatedAt   time.Time `json:"created_at"`
}

// Location returns the place's coordinate.
func (p Place) Location() GeoPoint {
	return GeoPoint{Lat: p.Lat, Lng: p.Lng}
}

// DirectionsURL links to walking/driving directions in Google Maps.
func (p Place) DirectionsURL() string {
	return fmt.Sprintf("https://www.google.com/maps/dir/?api=1&destination=%g,%g", p.Lat, p.Lng)
}

// PlaceFilter narrows a place listing.
type PlaceFilter struct {
	Category string
	Search   string

	// RadiusMiles limits Nearby results to places within this distance of the
	// origin. Zero means no limit.
	RadiusMiles float64
}

// LocationRecord is a place as the legacy locations API serves it.
type LocationRecord struct {
	LocationID  any      `json:"locationID"`
	Name        string   `json:"name"`
	Address     string   `json:"address,omitempty"`
	Category    string   `json:"category,omitempty"`
	Description string   `json:"description,omitempty"`
	Lat         float64  `json:"lat"`
	Lng         float64  `json:"lng"`
	Rating      *float64 `json:"rating,omitempty"`
	ReviewCount int      `json:"reviewCount,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Place maps the record into a Place. A missing rating becomes 0 and an empty
// description falls back to the category.
func (r LocationRecord) Place() Place {
	p := Place{
		Name:        r.Name,
		Address:     r.Address,
		Category:    r.Category,
		Description: r.Description,
		Lat:         r.Lat,
		Lng:         r.Lng,
		ReviewCount: r.ReviewCount,
		Tags:        r.Tags,
	}
	switch id := r.LocationID.(type) {
	case string:
		p.ID = id
	case float64:
		p.ID = fmt.Sprintf("%d", int64(id))
	case nil:
	default:
		p.ID = fmt.Sprint(id)
	}
	if r.Rating != nil {
		p.Rating = *r.Rating
	}
	if p.Description == "" {
		p.Description = r.Category
	}
	return p
}

// Review is a user review of a place.
type Review struct {
	ID           string    `json:"id"`
	PlaceID      string    `json:"place_id"`
	Author       string    `json:"author"`
	Rating       int       `json:"rating"`
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	Tags         []string  `json:"tags"`
	HelpfulCount int       `json:"helpful_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// ReviewSort orders a review listing.
type ReviewSort string

const (
	ReviewSortRecent  ReviewSort = "recent"
	ReviewSortHighest ReviewSort = "highest"
	ReviewSortLowest  ReviewSort = "lowest"
	ReviewSortHelpful ReviewSort = "helpful"
)

// ReviewQuery selects one page of a place's reviews.
type ReviewQuery struct {
	Page     int
	PageSize int
	SortBy   ReviewSort
	Tags     []string
}

// Offset is the number of rows skipped before this page.
func (q ReviewQuery) Offset() int {
	if q.Page <= 1 {
		return 0
	}
	return (q.Page - 1) * q.PageSize
}

// ReviewPage is one page of reviews plus totals for pagination.
type ReviewPage struct {
	Reviews      []Review `json:"reviews"`
	TotalReviews int      `json:"totalReviews"`
	TotalPages   int      `json:"totalPages"`
	Page         int      `json:"page"`
	PageSize     int      `json:"pageSize"`
}

// Marker is a place (or the user) positioned on the static map.
type Marker struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Kind     string     `json:"kind"` // "place" | "user"
	Location GeoPoint   `json:"location"`
	Position PixelPoint `json:"position"`
	Outside  bool       `json:"outside"` // clamped to the viewport edge
	Distance *float64   `json:"distance,omitempty"`
}

// MapView is what the map widget needs to render one frame.
type MapView struct {
	Bounds   ViewportBounds `json:"bounds"`
	Size     ViewportSize   `json:"size"`
	User     *Marker        `json:"user,omitempty"`
	Markers  []Marker       `json:"markers"`
	Expanded bool           `json:"expanded"`
}

// ReviewPostedEvent is published after a review is stored.
type ReviewPostedEvent struct {
	ReviewID string    `json:"review_id"`
	PlaceID  string    `json:"place_id"`
	Rating   int       `json:"rating"`
	PostedAt time.Time `json:"posted_at"`
}

// ViewportExpandedEvent is published when a session's bounds grow.
type ViewportExpandedEvent struct {
	SessionID string         `json:"session_id"`
	Bounds    ViewportBounds `json:"bounds"`
	Trigger   GeoPoint       `json:"trigger"`
	At        time.Time      `json:"at"`
}
