package model

import "fmt"

// Weights tunes how much each signal contributes to an invoice's score.
// Each weight is divided by 100 on its own; they need not sum to 100.
type Weights struct {
	Importance float64
	Age        float64
	Amount     float64
}

// DefaultWeights favors importance, then age, then amount.
func DefaultWeights() Weights {
	return Weights{
		Importance: 60,
		Age:        30,
		Amount:     10,
	}
}

// Total returns the sum of all three weights.
func (w Weights) Total() float64 {
	return w.Importance + w.Age + w.Amount
}

// Validate checks each weight sits on the 0-100 slider range.
// Allocation itself accepts any value.
func (w Weights) Validate() error {
	checks := []struct {
		name  string
		value float64
	}{
		{"importance", w.Importance},
		{"age", w.Age},
		{"amount", w.Amount},
	}
	for _, c := range checks {
		if c.value < 0 || c.value > 100 {
			return fmt.Errorf("%s weight must be between 0 and 100, got %.2f", c.name, c.value)
		}
	}
	return nil
}
