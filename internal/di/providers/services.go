package providers

import (
	"github.com/samber/do/v2"

	"github.com/focusflowapp/focusflow-server/internal/ai"
	"github.com/focusflowapp/focusflow-server/internal/config"
	"github.com/focusflowapp/focusflow-server/internal/logger"
	"github.com/focusflowapp/focusflow-server/internal/ratelimit"
	"github.com/focusflowapp/focusflow-server/internal/service"
	"github.com/focusflowapp/focusflow-server/internal/validation"
)

// ProvideValidator provides the request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideAnalyzer provides the session analysis provider. When no
// provider is configured the disabled analyzer is wired in and the
// analyze endpoint reports the capability as unavailable.
func ProvideAnalyzer(i do.Injector) (ai.Analyzer, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.AI.AnalysisEnabled() {
		log.Warn("No analysis provider configured, session analysis is disabled")
		return ai.NewDisabled(), nil
	}

	analyzer, err := ai.NewAzureAnalyzer(cfg.AI.Endpoint, cfg.AI.APIKey, cfg.AI.Deployment)
	if err != nil {
		return nil, err
	}

	log.Info("Analysis provider configured", "deployment", cfg.AI.Deployment)
	return analyzer, nil
}

// ProvideAnalyzeLimiter provides the per-user rate limiter for the
// analyze endpoint.
func ProvideAnalyzeLimiter(i do.Injector) (*ratelimit.KeyedRateLimiter, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return ratelimit.New(cfg.AI.AnalyzeRPS, cfg.AI.AnalyzeBurst), nil
}

// ProvideFocusService provides the focus session service.
func ProvideFocusService(i do.Injector) (*service.FocusService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	analyzer := do.MustInvoke[ai.Analyzer](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewFocusService(storeHandle.Store, analyzer, validator, log.Logger), nil
}
