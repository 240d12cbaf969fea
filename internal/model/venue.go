package model

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Hall 場館模型，建立後不可變更
type Hall struct {
	ID        int       `json:"id"`
	Size      string    `json:"size"`
	Capacity  int       `json:"capacity"`
	CreatedAt time.Time `json:"created_at"`
}

// Event 活動模型
type Event struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	StartsAt    time.Time `json:"starts_at"`
	OrganizerID int       `json:"organizer_id"`
	HallID      int       `json:"hall_id"`
	Description string    `json:"description,omitempty"`
	MediaRef    string    `json:"media_ref,omitempty"`
	CreatedAt   time.Time `json:"created_at"`

	// Zones is populated before the event is published to the repository
	// and never written afterwards, so it may be read without locking.
	Zones map[string]*Zone `json:"-"`
}

// Zone returns the zone for a type label.
func (e *Event) Zone(zoneType string) (*Zone, bool) {
	z, ok := e.Zones[zoneType]
	return z, ok
}

// ZoneTypes returns zone type labels in a stable order.
func (e *Event) ZoneTypes() []string {
	types := make([]string, 0, len(e.Zones))
	for t := range e.Zones {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// ZoneSpec 建立活動時的分區規格
type ZoneSpec struct {
	Type       string          `json:"type" binding:"required"`
	Percentage float64         `json:"percentage" binding:"required,gt=0"`
	Price      decimal.Decimal `json:"price" binding:"required"`
}

// CreateHallRequest 建立場館請求
type CreateHallRequest struct {
	Size     string `json:"size" binding:"required"`
	Capacity int    `json:"capacity" binding:"required,min=1"`
}

// CreateEventRequest 建立活動請求
type CreateEventRequest struct {
	Name        string     `json:"name" binding:"required"`
	StartsAt    time.Time  `json:"starts_at" binding:"required"`
	OrganizerID int        `json:"organizer_id" binding:"required"`
	HallID      int        `json:"hall_id" binding:"required"`
	Description string     `json:"description"`
	MediaRef    string     `json:"media_ref"`
	Zones       []ZoneSpec `json:"zones" binding:"required,min=1,dive"`
}

// ZoneSummary 分區概況（對外回應用）
type ZoneSummary struct {
	ID        int             `json:"id"`
	Type      string          `json:"type"`
	Capacity  int             `json:"capacity"`
	Price     decimal.Decimal `json:"price"`
	Available int             `json:"available"`
}

// EventResponse 活動回應
type EventResponse struct {
	ID          int           `json:"id"`
	Name        string        `json:"name"`
	StartsAt    time.Time     `json:"starts_at"`
	OrganizerID int           `json:"organizer_id"`
	HallID      int           `json:"hall_id"`
	Description string        `json:"description,omitempty"`
	MediaRef    string        `json:"media_ref,omitempty"`
	Zones       []ZoneSummary `json:"zones"`
}
