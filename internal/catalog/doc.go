// Package catalog supplies the furniture items the fit engine evaluates.
//
// Items come from three places:
//   - the built-in presets (presets.yaml, embedded at build time)
//   - an optional override file that adds or replaces presets by ID
//   - custom items built from user-entered strings or a scanned product label
//
// Items are values and are never mutated after creation. Custom items get a
// fresh ID on every creation, so creating the "same" custom item twice yields
// two distinct items.
//
// # Custom Item Fallbacks
//
// Width, height and depth that are missing, non-numeric, non-finite or not
// positive fall back to 100, 100 and 50 cm respectively. The fields that fell
// back are reported so callers can tell the user.
//
// # Label Parsing
//
// ParseLabelDimensions understands the two layouts common on product labels:
//
//	200 x 85 x 90 cm
//	W: 200cm  H: 85cm  D: 90cm
//
// Millimetres and inches are converted to centimetres.
package catalog
