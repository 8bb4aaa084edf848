package controllers

import (
	"context"

	"store-it/internal/application/usecases"
	"store-it/internal/domain/entities"
	"store-it/internal/presentation/http/validation"
)

// FileController adapts parsed HTTP input to the file use case.
type FileController struct {
	uc *usecases.FileUseCase
}

func NewFileController(uc *usecases.FileUseCase) *FileController {
	return &FileController{uc: uc}
}

func (c *FileController) List(ctx context.Context, user *entities.User, q validation.ListQuery) (*entities.FileList, error) {
	return c.uc.List(ctx, user, usecases.ListParams{
		Types:      q.Types,
		SearchText: q.SearchText,
		Sort:       q.Sort,
		Limit:      q.Limit,
	})
}

// SpaceOverview is the dashboard payload: raw totals plus the summary cards.
type SpaceOverview struct {
	Total   *entities.SpaceSummary `json:"total"`
	Summary usecases.UsageSummary  `json:"summary"`
}

func (c *FileController) Space(ctx context.Context, user *entities.User) (*SpaceOverview, error) {
	total, err := c.uc.TotalSpaceUsed(ctx, user)
	if err != nil {
		return nil, err
	}
	return &SpaceOverview{Total: total, Summary: usecases.Summarize(total)}, nil
}
