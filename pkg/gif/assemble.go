package gif

import (
	stderrors "errors"

	"github.com/matzehuels/gifshuffle/pkg/buffer"
	"github.com/matzehuels/gifshuffle/pkg/errors"
)

// OutputSize returns the exact number of bytes Assemble writes.
func OutputSize(l *Layout, r *Rewriter) int {
	return l.Size() + r.Growth(l)
}

// Assemble writes the stream described by l into w: Start sections in
// original order (followed by a synthesized loop block when r needs one),
// then frames in the given order, then the trailer. order[k] is the index,
// among l.Frames(), of the frame written at output slot k.
//
// A write that does not fit in w fails with NoSpaceLeft.
func Assemble(w *buffer.Writer, data []byte, l *Layout, order []int, r *Rewriter) error {
	if r == nil {
		r = &Rewriter{}
	}
	frames := l.Frames()
	if len(order) != len(frames) {
		return errors.New(errors.ErrCodeInternal, "order has %d entries for %d frames", len(order), len(frames))
	}

	inserted := false
	for i, s := range l.Sections {
		if s.Kind != KindStart {
			continue
		}
		off := w.Len()
		if err := write(w, data[s.Start:s.End]); err != nil {
			return err
		}
		if r.setLoop && l.Loop != nil && l.Loop.Section == i {
			if err := patch(w, off+l.Loop.Offset-s.Start, r.loop[:]); err != nil {
				return err
			}
		}
		if !inserted && r.insertsLoop(l) {
			if err := write(w, r.loopBlock()); err != nil {
				return err
			}
			inserted = true
		}
	}

	for _, idx := range order {
		s := frames[idx]
		off := w.Len()
		if err := write(w, data[s.Start:s.End]); err != nil {
			return err
		}
		if r.setDelay {
			if err := patch(w, off+delayOffset, r.delay[:]); err != nil {
				return err
			}
		}
	}

	for _, s := range l.Sections {
		if s.Kind != KindEnd {
			continue
		}
		if err := write(w, data[s.Start:s.End]); err != nil {
			return err
		}
	}
	return nil
}

func write(w *buffer.Writer, p []byte) error {
	if _, err := w.Write(p); err != nil {
		return noSpace(w, len(p), err)
	}
	return nil
}

func patch(w *buffer.Writer, off int, p []byte) error {
	if err := w.PatchAt(off, p); err != nil {
		return noSpace(w, len(p), err)
	}
	return nil
}

func noSpace(w *buffer.Writer, n int, err error) error {
	if stderrors.Is(err, buffer.ErrNoSpace) {
		return errors.Wrap(errors.ErrCodeNoSpaceLeft, err,
			"writing %d bytes at offset %d of %d", n, w.Len(), w.Cap())
	}
	return err
}
