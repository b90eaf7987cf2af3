// Package processor wires the stores, image generation, translation and
// snapshot services together for one identity and implements the
// command handlers of the wordflash CLI. It is the only place that knows
// which concrete backends are configured.
package processor
