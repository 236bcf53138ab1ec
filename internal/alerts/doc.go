// Package alerts evaluates threshold rules against batch summaries and
// delivers webhook notifications when rules fire or resolve.
//
// Conditions are "field operator value" expressions over summary fields
// (rescue_count, cannibal_groups, defective_pct, ...). Each rule tracks
// firing state per batch with a cooldown, so a noisy input directory does
// not spam the webhook targets.
package alerts
