package engine

import (
	"fmt"

	"inventory-workers/internal/common/config"
	"inventory-workers/internal/common/errors"
	"inventory-workers/internal/inventory/analytics"
	"inventory-workers/internal/inventory/resolver"
	"inventory-workers/internal/models"
)

// FromSettings converts the inventory section of the service configuration.
func FromSettings(inv config.InventoryConfig) (Config, error) {
	policy, err := analytics.ParseExpiryPolicy(inv.UnparseableExpiry)
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		DefaultSession: inv.DefaultSession,
		DefaultRate:    inv.DefaultRate,
		Thresholds:     resolver.Thresholds{Typed: inv.Thresholds.Typed, Informal: inv.Thresholds.Informal},
		ExpiryPolicy:   policy,
		Suggestions:    inv.Suggestions,
	}
	if len(inv.FillerPhrases) > 0 {
		cfg.FillerPhrases = inv.FillerPhrases
	}

	for _, name := range inv.RequiredFields {
		f, ok := models.ParseCanonicalField(name)
		if !ok {
			return Config{}, errors.NewValidationError(fmt.Sprintf("unknown required field %q", name))
		}
		cfg.RequiredFields = append(cfg.RequiredFields, f)
	}

	if len(inv.Synonyms) > 0 {
		cfg.Synonyms = make(map[models.CanonicalField][]string, len(inv.Synonyms))
		for name, aliases := range inv.Synonyms {
			f, ok := models.ParseCanonicalField(name)
			if !ok {
				return Config{}, errors.NewValidationError(fmt.Sprintf("unknown synonym field %q", name))
			}
			cfg.Synonyms[f] = append(cfg.Synonyms[f], aliases...)
		}
	}
	return cfg, nil
}
