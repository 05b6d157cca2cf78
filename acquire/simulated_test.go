package acquire

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/cwbudde/algo-biosig/realtime"
)

func TestSimulatedSourceReproducible(t *testing.T) {
	read := func() [][]float64 {
		src, err := NewSimulatedSource(2, 1000, 42, WithNoise(0.1), WithEMGBursts(2, 0.05, 0.5))
		if err != nil {
			t.Fatalf("NewSimulatedSource: %v", err)
		}
		if err := src.Start(); err != nil {
			t.Fatalf("Start: %v", err)
		}
		data, _, err := src.Read(500)
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		return data
	}

	a, b := read(), read()
	for ch := range a {
		for i := range a[ch] {
			if a[ch][i] != b[ch][i] {
				t.Fatalf("seeded streams diverge at ch%d[%d]: %g vs %g", ch, i, a[ch][i], b[ch][i])
			}
		}
	}
}

func TestSimulatedSourceCleanTones(t *testing.T) {
	src, err := NewSimulatedSource(2, 1000, 1)
	if err != nil {
		t.Fatalf("NewSimulatedSource: %v", err)
	}
	if err := src.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	data, ts, err := src.Read(1000)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	// Without noise the channels are exact sines at 5 and 15 Hz.
	for i := 0; i < 1000; i++ {
		tm := float64(i) / 1000
		if math.Abs(data[0][i]-math.Sin(2*math.Pi*5*tm)) > 1e-12 {
			t.Fatalf("ch0[%d] deviates from 5 Hz tone", i)
		}
		if math.Abs(data[1][i]-math.Sin(2*math.Pi*15*tm)) > 1e-12 {
			t.Fatalf("ch1[%d] deviates from 15 Hz tone", i)
		}
		if math.Abs(ts[i]-tm) > 1e-12 {
			t.Fatalf("timestamp %d = %g, want %g", i, ts[i], tm)
		}
	}

	// Reads continue where the previous one ended.
	more, ts2, err := src.Read(10)
	if err != nil {
		t.Fatalf("second Read: %v", err)
	}
	if ts2[0] != 1.0 {
		t.Errorf("second read starts at %g, want 1.0", ts2[0])
	}
	if math.Abs(more[0][0]-math.Sin(2*math.Pi*5*1.0)) > 1e-12 {
		t.Error("second read does not continue the tone phase")
	}
}

func TestSimulatedSourceLifecycle(t *testing.T) {
	src, err := NewSimulatedSource(1, 250, 0)
	if err != nil {
		t.Fatalf("NewSimulatedSource: %v", err)
	}

	if _, _, err := src.Read(10); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Read before Start error = %v, want ErrNotStarted", err)
	}

	if err := src.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, _, err := src.Read(10); err != nil {
		t.Errorf("Read after Start: %v", err)
	}

	if err := src.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if _, _, err := src.Read(10); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Read after Stop error = %v, want ErrNotStarted", err)
	}

	labels := src.ChannelLabels()
	if len(labels) != 1 || labels[0] != "ch0" {
		t.Errorf("labels = %v, want [ch0]", labels)
	}
	if src.SampleRate() != 250 {
		t.Errorf("SampleRate = %g, want 250", src.SampleRate())
	}
}

func TestPumpFillsBuffer(t *testing.T) {
	src, err := NewSimulatedSource(2, 2000, 7)
	if err != nil {
		t.Fatalf("NewSimulatedSource: %v", err)
	}
	buf, err := realtime.NewRingBuffer(2, 1024)
	if err != nil {
		t.Fatalf("NewRingBuffer: %v", err)
	}

	pump := NewPump(src, buf, 64, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if err := pump.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if buf.Size() == 0 {
		t.Fatal("pump moved no samples")
	}
	if _, ok := buf.ReadLast(64); !ok {
		t.Error("buffer missing a full batch after pumping")
	}
}
