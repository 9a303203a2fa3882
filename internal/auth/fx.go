package auth

import (
	"github.com/cohortlens/cohortlens/internal/auth/repository"
	"github.com/cohortlens/cohortlens/internal/auth/service"
	"go.uber.org/fx"
)

var Module = fx.Module("auth",
	fx.Provide(
		repository.New,
		service.New,
	),
)
