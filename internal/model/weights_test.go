package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWeightsValidate(t *testing.T) {
	assert.NoError(t, DefaultWeights().Validate())
	assert.NoError(t, Weights{}.Validate())
	assert.NoError(t, Weights{Importance: 100, Age: 100, Amount: 100}.Validate())

	err := Weights{Importance: 60, Age: -1, Amount: 10}.Validate()
	assert.ErrorContains(t, err, "age weight")

	err = Weights{Importance: 100.5}.Validate()
	assert.ErrorContains(t, err, "importance weight")
}

func TestWeightsTotal(t *testing.T) {
	assert.InDelta(t, 100, DefaultWeights().Total(), 0.0001)
	assert.InDelta(t, 150, Weights{Importance: 50, Age: 50, Amount: 50}.Total(), 0.0001)
}
