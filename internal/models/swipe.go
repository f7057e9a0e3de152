package models

import "strings"

// SwipeDirection is the preference recorded by a swipe.
type SwipeDirection string

const (
	SwipeLike SwipeDirection = "LIKE"
	SwipePass SwipeDirection = "PASS"
)

// ParseSwipeDirection normalises user input into a known direction.
func ParseSwipeDirection(value string) (SwipeDirection, bool) {
	switch SwipeDirection(strings.ToUpper(strings.TrimSpace(value))) {
	case SwipeLike:
		return SwipeLike, true
	case SwipePass:
		return SwipePass, true
	default:
		return "", false
	}
}

// SwipeEvent is the latest preference of SwiperID towards SwipeeID. One row per ordered pair.
type SwipeEvent struct {
	BaseModel

	SwiperID  string         `gorm:"type:uuid;uniqueIndex:idx_swipe_events_pair;not null" json:"swiper_id"`
	SwipeeID  string         `gorm:"type:uuid;uniqueIndex:idx_swipe_events_pair;not null" json:"swipee_id"`
	Direction SwipeDirection `gorm:"type:varchar(8);not null" json:"direction"`
}
