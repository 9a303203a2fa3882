package recommendation

import (
	"github.com/cohortlens/cohortlens/internal/recommendation/domain"
	"github.com/cohortlens/cohortlens/internal/recommendation/groq"
	"github.com/cohortlens/cohortlens/internal/recommendation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("recommendation",
	fx.Provide(
		fx.Annotate(groq.New, fx.As(new(domain.Completer))),
		service.New,
	),
)
