package usage

import (
	"github.com/cohortlens/cohortlens/internal/usage/repository"
	"github.com/cohortlens/cohortlens/internal/usage/service"
	"go.uber.org/fx"
)

var Module = fx.Module("usage",
	fx.Provide(
		repository.New,
		service.New,
	),
)
