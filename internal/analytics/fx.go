package analytics

import (
	"github.com/cohortlens/cohortlens/internal/analytics/repository"
	"github.com/cohortlens/cohortlens/internal/analytics/service"
	"go.uber.org/fx"
)

var Module = fx.Module("analytics",
	fx.Provide(
		repository.New,
		service.New,
	),
)
