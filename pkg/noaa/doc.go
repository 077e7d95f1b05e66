// Package noaa pulls observations and predictions from the NOAA CO-OPS data
// API. A Query names a product, sampling interval and time window at one
// station; a successful pull returns a time indexed Table trimmed to the
// window. Every failure along the way (transport, status, error payloads,
// empty payloads) is reported as ErrUnavailable so callers can treat it as
// "no update this cycle". All times are station local.
package noaa
