package model

import (
	"github.com/google/uuid"
)

type BreedID string

// Weight is the weight range of a breed as reported by the Cat API
type Weight struct {
	Imperial string `json:"imperial" yaml:"imperial"`
	Metric   string `json:"metric" yaml:"metric"`
}

// Breed is an immutable breed record loaded from the Cat API
type Breed struct {
	ID          BreedID `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Origin      string  `json:"origin" yaml:"origin"`
	Temperament string  `json:"temperament" yaml:"temperament"`
	LifeSpan    string  `json:"life_span" yaml:"life_span"`
	Description string  `json:"description" yaml:"description"`
	Weight      Weight  `json:"weight" yaml:"weight"`
}

// Image is an entry of the image search endpoint
type Image struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type DisplayID string

// NewDisplayID generates a new unique DisplayID
func NewDisplayID() DisplayID {
	return DisplayID(uuid.New().String())
}
