package model

import "time"

const (
	// PlaceholderImageURL is used when the image search returns no entry for a breed
	PlaceholderImageURL = "https://via.placeholder.com/400?text=No+Image"

	// UnavailableImageURL is shown by the browser when the image itself fails to load
	UnavailableImageURL = "https://via.placeholder.com/400?text=Image+Not+Available"

	// DateLayout formats the discovery date token (en-US short date, e.g. 10/19/2026)
	DateLayout = "1/2/2006"
)

// DisplayRecord is the breed currently shown to the user. It is replaced as a
// whole on every successful selection and never modified in place.
type DisplayRecord struct {
	ID          DisplayID `json:"id" yaml:"id"`
	BreedID     BreedID   `json:"breed_id" yaml:"breed_id"`
	Name        string    `json:"name" yaml:"name"`
	ImageURL    string    `json:"image_url" yaml:"image_url"`
	Origin      string    `json:"origin" yaml:"origin"`
	Temperament string    `json:"temperament" yaml:"temperament"`
	LifeSpan    string    `json:"life_span" yaml:"life_span"`
	Description string    `json:"description" yaml:"description"`
	Weight      string    `json:"weight" yaml:"weight"`
	Date        string    `json:"date" yaml:"date"`
	CapturedAt  time.Time `json:"captured_at" yaml:"captured_at"`
}

// NewDisplayRecord assembles a display record for breed b. An empty imageURL
// falls back to PlaceholderImageURL.
func NewDisplayRecord(b *Breed, imageURL string, now time.Time) *DisplayRecord {
	if imageURL == "" {
		imageURL = PlaceholderImageURL
	}

	return &DisplayRecord{
		ID:          NewDisplayID(),
		BreedID:     b.ID,
		Name:        b.Name,
		ImageURL:    imageURL,
		Origin:      b.Origin,
		Temperament: b.Temperament,
		LifeSpan:    b.LifeSpan,
		Description: b.Description,
		Weight:      b.Weight.Metric,
		Date:        now.Format(DateLayout),
		CapturedAt:  now,
	}
}

// Attribute names a bannable field of a display record
type Attribute string

const (
	AttributeName        Attribute = "name"
	AttributeOrigin      Attribute = "origin"
	AttributeTemperament Attribute = "temperament"
	AttributeDate        Attribute = "date"
)

// Attributes lists the bannable attributes in display order
var Attributes = []Attribute{
	AttributeName,
	AttributeOrigin,
	AttributeTemperament,
	AttributeDate,
}

// Token returns the ban token for the given attribute of the record
func (r *DisplayRecord) Token(attr Attribute) (string, error) {
	switch attr {
	case AttributeName:
		return r.Name, nil
	case AttributeOrigin:
		return r.Origin, nil
	case AttributeTemperament:
		return r.Temperament, nil
	case AttributeDate:
		return r.Date, nil
	default:
		return "", ErrUnknownAttribute
	}
}
