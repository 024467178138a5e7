package gamemap

import (
	"errors"
	"fmt"
)

// ErrInvalidWeights is returned for weight sets with a negative entry or a zero total.
var ErrInvalidWeights = errors.New("invalid weights")

// Source is the random number source the generator draws from.
// *rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
	Float64() float64
}

// Weights are the relative odds of each rolled category. Empty is never
// rolled; it is only forced by the neighbor rule.
type Weights struct {
	Obstacle int `yaml:"obstacle" json:"obstacle"`
	Resource int `yaml:"resource" json:"resource"`
	Enemy    int `yaml:"enemy" json:"enemy"`
	Campfire int `yaml:"campfire" json:"campfire"`
	Boss     int `yaml:"boss" json:"boss"`
}

// Total is the sum of all five weights.
func (w Weights) Total() int {
	return w.Obstacle + w.Resource + w.Enemy + w.Campfire + w.Boss
}

// Validate checks that every weight is non-negative and the total is positive.
func (w Weights) Validate() error {
	for i, v := range w.bands() {
		if v < 0 {
			return fmt.Errorf("%w: %s weight is %d", ErrInvalidWeights, bandOrder[i], v)
		}
	}
	if w.Total() <= 0 {
		return fmt.Errorf("%w: total weight must be positive", ErrInvalidWeights)
	}
	return nil
}

// bandOrder fixes the order in which cumulative bands are laid out.
var bandOrder = [5]Category{Obstacle, Resource, Enemy, Campfire, Boss}

func (w Weights) bands() [5]int {
	return [5]int{w.Obstacle, w.Resource, w.Enemy, w.Campfire, w.Boss}
}

// categoryForRoll maps roll in [0, Total) to a band. A roll equal to a
// cumulative boundary belongs to the next band.
func (w Weights) categoryForRoll(roll int) Category {
	cumulative := 0
	for i, v := range w.bands() {
		cumulative += v
		if roll < cumulative {
			return bandOrder[i]
		}
	}
	return Empty
}
