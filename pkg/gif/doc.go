// Package gif classifies and reassembles GIF89a streams at the block level.
//
// The package never decodes pixels. [Scan] walks the stream once and splits
// it into sections: the header and every non-frame block are Start sections,
// each graphic control extension together with the image it governs is one
// Shuffle section (an animation frame), and the trailer is the End section.
// [Assemble] writes the sections back in a caller-chosen frame order, with
// optional delay and loop-count overrides applied by a [Rewriter].
//
// # Sections
//
//	GIF89a | LSD | GCT        -> start   (header)
//	21 FF ... 00              -> start   (application)
//	21 FE ... 00              -> start   (comment)
//	21 F9 04 .. 00 2C ... 00  -> shuffle (frame)
//	2C ... 00                 -> start   (image without graphic control)
//	3B                        -> end     (trailer)
//
// # Errors
//
// Scan failures are coded with the transform kinds from package errors, so
// callers can hand them across a host boundary unchanged:
//
//	layout, err := gif.Scan(data)
//	if errors.Is(err, errors.ErrCodeMissingColorTable) {
//	    // ...
//	}
package gif
