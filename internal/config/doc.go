// Package config loads run settings for ibew-locals.
//
// Settings come from three layers, later ones winning: built-in defaults, an
// optional JSON5 file (plus a sibling <name>.local.<ext> override), and command
// line flags applied by the caller. All validation happens here so that bad
// input is rejected before any network request is made.
package config
