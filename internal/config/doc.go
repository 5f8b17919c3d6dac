// Package config reads the environment contract shared with the bot
// (DATA_DIR, COOKIES_FILE and friends), the bootstrap gate variables, and an
// optional YAML settings overlay with installer overrides.
package config
