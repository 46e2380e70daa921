// Package config handles configuration loading for sigil.
//
// # Overview
//
// Two configurations live here, sharing the same YAML conventions: Config for
// the sigil publisher CLI and ServerConfig for the sigil-hub server. Both are
// loaded from YAML files with environment variable expansion and validated
// before use.
//
// # Configuration Files
//
// Publisher config default locations (in order):
//
//  1. Path from SIGIL_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/sigil/sigil.yaml
//  3. ~/.config/sigil/sigil.yaml
//
// The hub server resolves SIGIL_HUB_CONFIG > $XDG_CONFIG_HOME/sigil/hub.yaml
// > ~/.config/sigil/hub.yaml the same way.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	hub:
//	  endpoint: "${SIGIL_HUB_ENDPOINT}"
//
// Syntax: ${VAR_NAME}. Unset variables expand to the empty string, which
// fails validation when the field is required.
//
// # Publisher Sections
//
// Hub connection:
//
//	hub:
//	  endpoint: "http://localhost:8420"
//	  request_timeout: "30s"
//
// Agent identity and blueprint:
//
//	agent:
//	  id: "juliaxbt-investigator"
//	  display_name: "JuliaXBT Investigator"
//	  description: "Traces fund flows across chains"
//	  blueprint: "./blueprint.yaml"
//
// Marketplace listing (optional):
//
//	listing:
//	  path: "./listing.toml"
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Hub Server Sections
//
// Listen address or tailnet:
//
//	server:
//	  http_addr: "127.0.0.1:8420"
//
//	tailscale:
//	  enabled: false
//	  hostname: "sigil-hub"
//	  auth_key: "${TS_AUTHKEY}"
//
// Database:
//
//	database:
//	  path: "/var/lib/sigil/hub.db"
//
// # Usage
//
//	cfg, err := config.Load(path)
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
