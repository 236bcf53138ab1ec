// Package config loads and watches the serpgap configuration file
// (config.yaml).
//
// Load(path) reads the YAML file, applies defaults (action percentile 70,
// watch percentile 40, three-month period, built-in CTR curve and layout
// penalties, HTTP port 8080, 24h batch TTL), then validates required
// fields, percentile ranges, and curve monotonicity. Default() returns the
// same defaults without touching the filesystem, for the CLI's no-config
// path.
//
// Engine settings convert to the engine's runtime form via
// EngineConfig.Runtime(), which builds the validated curve model and
// layout adjuster.
//
// Watch(ctx, path, onChange) uses fsnotify to detect file changes and
// calls onChange with the newly parsed Config. It handles the
// rename→create pattern used by atomic-save editors by re-adding the
// watch after each reload.
package config
