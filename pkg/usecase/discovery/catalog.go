package discovery

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/whisker/pkg/model"
	"github.com/m-mizutani/whisker/pkg/utils/logging"
)

// LoadCatalog fetches the full breed list once. A failure is returned as
// model.ErrCatalogFetch; callers treat it as non-fatal and keep an empty catalog.
func (u *UseCase) LoadCatalog(ctx context.Context) ([]*model.Breed, error) {
	breeds, err := u.api.ListBreeds(ctx)
	if err != nil {
		return nil, goerr.Wrap(model.Fail(model.ErrCatalogFetch, err), "failed to load breed catalog")
	}

	logging.From(ctx).Info("Available cat breeds", "count", len(breeds))
	return breeds, nil
}
