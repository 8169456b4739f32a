// Package theme holds the presentation configuration for notification feed
// clients: colors, sizing and typography for the bell, the popover, the
// notification list and the unseen badge, with a variant per display mode
// (light and dark).
//
// The package is pure data. It ships documented defaults per mode, merges
// partial overrides over those defaults, and loads overrides from YAML
// files. Nothing here renders anything; clients consume the resolved
// variant and apply it themselves.
//
//	t, err := theme.LoadFile("theme.yaml")
//	if err != nil { ... }
//	v := t.Variant(theme.ModeDark)
package theme
