package config

import (
	"fmt"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Marshal renders cfg in the given format ("toml" or "yaml"). Tokens are
// masked unless showSecrets is set.
func Marshal(cfg *Config, format string, showSecrets bool) ([]byte, error) {
	out := *cfg
	if !showSecrets {
		out.Tokens = Tokens{
			GitHub:   mask(cfg.Tokens.GitHub),
			Modrinth: mask(cfg.Tokens.Modrinth),
			S3: S3Credentials{
				AccessKey: mask(cfg.Tokens.S3.AccessKey),
				SecretKey: mask(cfg.Tokens.S3.SecretKey),
			},
		}
		out.Status.Webhook = maskURL(cfg.Status.Webhook)
	}

	switch strings.ToLower(format) {
	case "toml", "":
		return toml.Marshal(out)
	case "yaml", "yml":
		return yaml.Marshal(out)
	default:
		return nil, fmt.Errorf("unknown format %q (want toml or yaml)", format)
	}
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "********"
}

// maskURL keeps the scheme and host of a webhook and hides the path, which
// carries the webhook secret.
func maskURL(raw string) string {
	if raw == "" {
		return ""
	}
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return mask(raw)
	}
	host, _, _ := strings.Cut(rest, "/")
	return scheme + "://" + host + "/********"
}
