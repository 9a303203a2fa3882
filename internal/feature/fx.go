package feature

import (
	"github.com/cohortlens/cohortlens/internal/feature/repository"
	"github.com/cohortlens/cohortlens/internal/feature/service"
	"go.uber.org/fx"
)

var Module = fx.Module("feature",
	fx.Provide(
		repository.New,
		service.New,
	),
)
