package hosting

import "go.uber.org/fx"

var Module = fx.Module("providers.hosting",
	fx.Provide(NewGitHubProvider),
	fx.Provide(NewChecker),
)
