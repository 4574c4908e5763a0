package portfolio

import (
	"github.com/foliopress/foliopress/internal/portfolio/render"
	"go.uber.org/fx"
)

var Module = fx.Module("portfolio",
	fx.Provide(render.NewRenderer),
)
