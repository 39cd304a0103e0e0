package cli

import (
	"context"
	"testing"
	"time"
)

func TestSpinnerStop(t *testing.T) {
	tests := []struct {
		name string
		stop func(*Spinner)
	}{
		{"stop", (*Spinner).Stop},
		{"stop twice", func(s *Spinner) { s.Stop(); s.Stop() }},
		{"success", func(s *Spinner) { s.StopWithSuccess("Shuffled anim.gif") }},
		{"error", func(s *Spinner) { s.StopWithError("anim.gif: not a GIF89a file") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSpinnerWithContext(context.Background(), "Shuffling anim.gif")
			s.Start()
			tt.stop(s)
			if !s.Cancelled() {
				t.Error("Cancelled() = false after Stop, want true")
			}
		})
	}
}

func TestSpinnerFollowsCommandContext(t *testing.T) {
	tests := []struct {
		name string
		ctx  func() (context.Context, context.CancelFunc)
	}{
		{"interrupt", func() (context.Context, context.CancelFunc) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			return ctx, cancel
		}},
		{"deadline", func() (context.Context, context.CancelFunc) {
			return context.WithTimeout(context.Background(), 20*time.Millisecond)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := tt.ctx()
			defer cancel()

			s := newSpinnerWithContext(ctx, "Shuffling 3 files")
			s.Start()
			select {
			case <-s.stopped:
			case <-time.After(time.Second):
				t.Fatal("spinner goroutine still running after context ended")
			}
			if !s.Cancelled() {
				t.Error("Cancelled() = false, want true")
			}
			s.Stop()
		})
	}
}
