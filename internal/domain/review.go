package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// Review is a user's rating and comment for one EV.
type Review struct {
	ID         string    `json:"id"`
	EVID       string    `json:"ev_id"`
	UserID     string    `json:"user_id"`
	AuthorName string    `json:"author_name,omitempty"`
	Content    string    `json:"content"`
	Rating     int       `json:"rating"`
	CreatedAt  time.Time `json:"created_at"`
}

// ReviewInput holds the parameters for creating a review. UserID comes from
// the verified identity, never from the form.
type ReviewInput struct {
	EVID    string `form:"-" validate:"required,uuid"`
	UserID  string `form:"-"`
	Content string `form:"content" validate:"required,max=2000"`
	Rating  int    `form:"rating" validate:"gte=1,lte=5"`
}

// Normalize trims surrounding whitespace from the content.
func (in *ReviewInput) Normalize() {
	in.Content = strings.TrimSpace(in.Content)
}

// AverageScore is the mean rating of an EV's reviews. The zero value
// (Count == 0) means the EV has no reviews yet, which is distinct from an
// average of zero.
type AverageScore struct {
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

// NewAverageScore divides sum by count and rounds to two decimals.
func NewAverageScore(sum, count int) AverageScore {
	if count <= 0 {
		return AverageScore{}
	}
	avg := float64(sum) / float64(count)
	return AverageScore{
		Value: math.Round(avg*100) / 100,
		Count: count,
	}
}

// HasReviews reports whether the score was computed from at least one review.
func (s AverageScore) HasReviews() bool {
	return s.Count > 0
}

func (s AverageScore) String() string {
	if !s.HasReviews() {
		return "No reviews yet"
	}
	return fmt.Sprintf("%.2f", s.Value)
}
