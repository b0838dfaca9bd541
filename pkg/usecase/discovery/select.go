package discovery

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/whisker/pkg/model"
	"github.com/m-mizutani/whisker/pkg/utils/logging"
)

// Eligible returns the breeds of catalog that are not excluded by bans,
// keeping catalog order
func Eligible(catalog []*model.Breed, bans *model.BanList) []*model.Breed {
	eligible := make([]*model.Breed, 0, len(catalog))
	for _, b := range catalog {
		if b == nil || bans.Excludes(b) {
			continue
		}
		eligible = append(eligible, b)
	}
	return eligible
}

// SelectNext picks a random eligible breed, fetches one image for it and
// assembles a display record.
// 1. Filter catalog by the ban list (model.ErrExhausted if nothing is left)
// 2. Draw one breed uniformly at random
// 3. Fetch a single image of that breed (model.ErrImageFetch on failure)
// 4. Build the record; an empty image result falls back to the placeholder
func (u *UseCase) SelectNext(
	ctx context.Context,
	catalog []*model.Breed,
	bans *model.BanList,
) (*model.DisplayRecord, error) {
	eligible := Eligible(catalog, bans)
	if len(eligible) == 0 {
		return nil, goerr.Wrap(model.ErrExhausted, "no eligible breed",
			goerr.V("catalog_size", len(catalog)),
			goerr.V("banned", bans.Len()))
	}

	breed := eligible[u.intN(len(eligible))]
	logging.From(ctx).Debug("Fetching random breed", "name", breed.Name, "id", breed.ID)

	images, err := u.api.SearchImages(ctx, breed.ID, 1)
	if err != nil {
		return nil, goerr.Wrap(model.Fail(model.ErrImageFetch, err), "failed to fetch breed image",
			goerr.V("breed_id", breed.ID))
	}

	var imageURL string
	if len(images) > 0 && images[0] != nil {
		imageURL = images[0].URL
	}

	record := model.NewDisplayRecord(breed, imageURL, u.now())
	logging.From(ctx).Debug("Fetched cat", "id", record.ID, "name", record.Name, "image_url", record.ImageURL)

	return record, nil
}
