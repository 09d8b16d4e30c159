package app

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"battmon/config"
)

func testConfig() config.Config {
	return config.Config{
		ScreenHeight:     24,
		BarWidth:         3,
		SpaceBetweenBars: 3,
		VoltsMin:         80,
		VoltsMax:         150,
		MaxLineLength:    512,
	}
}

// captureFrames replaces the presenter so tests observe frames without a
// live screen.
func captureFrames(a *App) *[][]int {
	frames := &[][]int{}
	a.present = func(readings []int) {
		*frames = append(*frames, append([]int(nil), readings...))
	}
	return frames
}

func TestHandleRecordSkipsInvalidLines(t *testing.T) {
	a := New("unused", testConfig())
	frames := captureFrames(a)
	ctx := context.Background()

	if err := a.handleRecord(ctx, "not telemetry!"); err != nil {
		t.Fatalf("invalid record returned error: %v", err)
	}
	if err := a.handleRecord(ctx, ""); err != nil {
		t.Fatalf("empty record returned error: %v", err)
	}
	if len(*frames) != 0 {
		t.Fatalf("invalid records rendered %d frames", len(*frames))
	}

	if err := a.handleRecord(ctx, " B , 10 , 20 , H "); err != nil {
		t.Fatalf("valid record returned error: %v", err)
	}
	if len(*frames) != 1 || !slices.Equal((*frames)[0], []int{10, 20}) {
		t.Fatalf("frames = %v, want [[10 20]]", *frames)
	}
}

func TestHandleRecordRendersDegenerateFrame(t *testing.T) {
	a := New("unused", testConfig())
	frames := captureFrames(a)

	// A record without a battery zone is a valid frame with no bars.
	if err := a.handleRecord(context.Background(), "STATUS,OK"); err != nil {
		t.Fatalf("zoneless record returned error: %v", err)
	}
	if len(*frames) != 1 || len((*frames)[0]) != 0 {
		t.Fatalf("frames = %v, want one empty frame", *frames)
	}
}

func TestHandleRecordMirrorsAcceptedLinesVerbatim(t *testing.T) {
	mirror := filepath.Join(t.TempDir(), "mirror.txt")
	cfg := testConfig()
	cfg.OutputFile = mirror

	a := New("unused", cfg)
	captureFrames(a)
	if err := a.openMirror(); err != nil {
		t.Fatalf("openMirror: %v", err)
	}
	defer a.closeMirror()

	ctx := context.Background()
	raw := " B , 100 , H"
	if err := a.handleRecord(ctx, raw); err != nil {
		t.Fatalf("handleRecord: %v", err)
	}
	if err := a.handleRecord(ctx, "rejected line"); err != nil {
		t.Fatalf("handleRecord: %v", err)
	}

	data, err := os.ReadFile(mirror)
	if err != nil {
		t.Fatalf("read mirror: %v", err)
	}
	if got, want := string(data), raw+"\n"; got != want {
		t.Fatalf("mirror content = %q, want %q", got, want)
	}
}

func TestHandleRecordAppendsToExistingMirror(t *testing.T) {
	mirror := filepath.Join(t.TempDir(), "mirror.txt")
	if err := os.WriteFile(mirror, []byte("B,1,H\n"), 0o644); err != nil {
		t.Fatalf("seed mirror: %v", err)
	}

	cfg := testConfig()
	cfg.OutputFile = mirror
	a := New("unused", cfg)
	captureFrames(a)
	if err := a.openMirror(); err != nil {
		t.Fatalf("openMirror: %v", err)
	}
	defer a.closeMirror()

	if err := a.handleRecord(context.Background(), "B,2,H"); err != nil {
		t.Fatalf("handleRecord: %v", err)
	}

	data, err := os.ReadFile(mirror)
	if err != nil {
		t.Fatalf("read mirror: %v", err)
	}
	if got, want := string(data), "B,1,H\nB,2,H\n"; got != want {
		t.Fatalf("mirror content = %q, want %q", got, want)
	}
}

func TestFollowSourceRendersAppendedRecordsInOrder(t *testing.T) {
	source := filepath.Join(t.TempDir(), "telemetry.txt")
	if err := os.WriteFile(source, []byte("B,10,H\nB,20,H\n"), 0o644); err != nil {
		t.Fatalf("seed source: %v", err)
	}

	a := New(source, testConfig())
	frames := make(chan []int, 16)
	a.present = func(readings []int) {
		frames <- append([]int(nil), readings...)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.followSource(ctx)

	collect := func(n int) [][]int {
		t.Helper()
		var got [][]int
		for len(got) < n {
			select {
			case f := <-frames:
				got = append(got, f)
			case <-time.After(10 * time.Second):
				t.Fatalf("timed out after %d of %d frames: %v", len(got), n, got)
			}
		}
		return got
	}

	initial := collect(2)
	want := [][]int{{10}, {20}}
	for i := range want {
		if !slices.Equal(initial[i], want[i]) {
			t.Fatalf("initial frames = %v, want %v", initial, want)
		}
	}

	// Append across the end-of-file boundary; the malformed line must be
	// skipped without disturbing the frame order.
	f, err := os.OpenFile(source, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("reopen source: %v", err)
	}
	if _, err := f.WriteString("partial junk!\nB,30,H\nB,40,H\n"); err != nil {
		t.Fatalf("append source: %v", err)
	}
	f.Close()

	appended := collect(2)
	wantAppended := [][]int{{30}, {40}}
	for i := range wantAppended {
		if !slices.Equal(appended[i], wantAppended[i]) {
			t.Fatalf("appended frames = %v, want %v", appended, wantAppended)
		}
	}

	if err := a.fatalError(); err != nil {
		t.Fatalf("follow loop reported fatal error: %v", err)
	}
}

func TestFollowSourceFailsOnMissingFile(t *testing.T) {
	a := New(filepath.Join(t.TempDir(), "absent.txt"), testConfig())
	captureFrames(a)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a.followSource(ctx)

	if a.fatalError() == nil {
		t.Fatal("missing source file did not produce a fatal error")
	}
}
