package deployment

import (
	"github.com/foliopress/foliopress/internal/deployment/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("deployment",
	fx.Provide(repository.Provide),
)
