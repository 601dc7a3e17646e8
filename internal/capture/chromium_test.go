package capture

import (
	"context"
	"testing"
	"time"
)

func TestOptionsNormalize(t *testing.T) {
	o := Options{URL: "http://127.0.0.1:8080/", OutputPath: "out.png"}
	if err := o.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if o.Width != DefaultWidth || o.Height != DefaultHeight {
		t.Fatalf("viewport = %dx%d", o.Width, o.Height)
	}
	if o.Timeout != DefaultTimeoutSec*time.Second {
		t.Fatalf("timeout = %v", o.Timeout)
	}

	o = Options{URL: "http://x/", OutputPath: "out.png", Width: 800, Height: 600, Timeout: time.Second}
	if err := o.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if o.Width != 800 || o.Height != 600 || o.Timeout != time.Second {
		t.Fatalf("explicit values overwritten: %+v", o)
	}
}

func TestSnapshotRequiresTarget(t *testing.T) {
	if err := SnapshotPNG(context.Background(), Options{OutputPath: "out.png"}); err == nil {
		t.Fatalf("expected error without URL")
	}
	if err := SnapshotPNG(context.Background(), Options{URL: "http://x/"}); err == nil {
		t.Fatalf("expected error without output path")
	}
}
