package providers

import (
	"github.com/foliopress/foliopress/internal/providers/hosting"
	"github.com/foliopress/foliopress/internal/providers/pdf"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	hosting.Module,
	pdf.Module,
)
