// Package doctor performs a read-only preflight of the bot's deployment:
// binary resolution, data directory writability and cookie health.
package doctor
