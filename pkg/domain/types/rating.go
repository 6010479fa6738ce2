package types

import (
	"github.com/m-mizutani/goerr/v2"
)

// Rating is a 1-5 ordinal rating used for probability and impact.
// The zero value means the rating has not been set yet.
type Rating int

const (
	RatingUnset Rating = 0
	RatingMin   Rating = 1
	RatingMax   Rating = 5
)

// IsSet reports whether the rating carries a value
func (r Rating) IsSet() bool {
	return r != RatingUnset
}

// IsValid checks if the rating is either unset or within 1-5
func (r Rating) IsValid() bool {
	return r == RatingUnset || (r >= RatingMin && r <= RatingMax)
}

// Validate returns an error if the rating is out of range
func (r Rating) Validate() error {
	if !r.IsValid() {
		return goerr.New("rating must be between 1 and 5", goerr.V("rating", int(r)))
	}
	return nil
}

// Int returns the rating as a plain integer
func (r Rating) Int() int {
	return int(r)
}

// MaxRating returns the largest of the given ratings. Unset ratings are ignored.
func MaxRating(ratings ...Rating) Rating {
	max := RatingUnset
	for _, r := range ratings {
		if r > max {
			max = r
		}
	}
	return max
}
