package usecasecontract

import (
	"context"

	"github.com/Deokive/BE-sub001/internal/domain/entity"
)

// IViewUsecase is the view-registration surface exposed to handlers.
type IViewUsecase interface {
	RegisterView(ctx context.Context, domain entity.ContentDomain, entityID, viewerIdentity string) (counted bool, err error)
}
