package providers

import (
	"github.com/samber/do/v2"

	"github.com/contactdock/contactdock-server/internal/config"
	"github.com/contactdock/contactdock-server/internal/identity"
	"github.com/contactdock/contactdock-server/internal/logger"
)

// ProvideVerifier provides the identity token verifier.
// When no key is configured a local one is loaded or generated under the
// data path, which lets development setups mint their own tokens.
func ProvideVerifier(i do.Injector) (*identity.Verifier, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	keyHex := cfg.Identity.KeyHex
	if keyHex == "" {
		generated, err := identity.LoadOrGenerateKeyHex(cfg.Data.Path)
		if err != nil {
			return nil, err
		}
		keyHex = generated
		cfg.Identity.KeyHex = generated
		log.Info("Using local identity key", "path", cfg.Data.Path)
	}

	verifier, err := identity.NewVerifier(identity.Config{
		KeyHex:   keyHex,
		Issuer:   cfg.Identity.Issuer,
		Audience: cfg.Identity.Audience,
	})
	if err != nil {
		return nil, err
	}

	log.Info("Identity verifier configured",
		"issuer", cfg.Identity.Issuer,
		"audience", cfg.Identity.Audience,
	)

	return verifier, nil
}
