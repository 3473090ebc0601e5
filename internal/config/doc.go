// Package config provides 12-factor configuration for the simulator.
//
// Configuration is loaded from environment variables with sensible
// defaults. A YAML scenario file and CLI flags can override individual
// values; precedence is flags > scenario file > environment > defaults.
//
// Configuration Sections:
//   - Sim: waiting-room parameters (capacity, burst size, timing knobs,
//     safety toggle, seed)
//   - Logging: operational log level and output format
//   - HTTP: optional observation endpoint address
//
// Environment Variables:
//   - SIM_CAPACITY, SIM_BURST_SIZE, SIM_HAIRCUT_MIN_MS, SIM_HAIRCUT_MAX_MS
//   - SIM_FIB_WORK, SIM_LOCK_HOLD_MS, SIM_SAFETY, SIM_SEED
//   - SIM_POLL_MS, SIM_SETTLE_MS, SIM_JOIN_TIMEOUT_MS, SIM_REPEAT, SIM_LOG_DIR
//   - LOG_LEVEL, LOG_DEV, HTTP_ADDR
package config
