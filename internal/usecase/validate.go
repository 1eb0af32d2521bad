package usecase

import (
	"context"

	"github.com/go-playground/validator/v10"
)

var recordValidator = validator.New(validator.WithRequiredStructEnabled())

func validateRecord(ctx context.Context, record any) error {
	return recordValidator.StructCtx(ctx, record)
}
