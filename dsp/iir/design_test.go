package iir

import (
	"math"
	"math/cmplx"
	"testing"
)

// responseAt evaluates the cascade magnitude response at freq (Hz).
func responseAt(coeffs []Coefficients, freq, sampleRate float64) float64 {
	w := 2 * math.Pi * freq / sampleRate
	z1 := cmplx.Exp(complex(0, -w))
	z2 := z1 * z1

	h := complex(1, 0)
	for _, c := range coeffs {
		num := complex(c.B0, 0) + complex(c.B1, 0)*z1 + complex(c.B2, 0)*z2
		den := complex(1, 0) + complex(c.A1, 0)*z1 + complex(c.A2, 0)*z2
		h *= num / den
	}

	return cmplx.Abs(h)
}

func TestNotch_UnityAwayFromCenter(t *testing.T) {
	c := Notch(50, 30, 1000)
	if c.IsZero() {
		t.Fatal("valid notch returned zero coefficients")
	}

	coeffs := []Coefficients{c}
	if mag := responseAt(coeffs, 50, 1000); mag > 1e-6 {
		t.Fatalf("response at center = %g, want ~0", mag)
	}
	for _, f := range []float64{5, 200, 400} {
		if mag := responseAt(coeffs, f, 1000); math.Abs(mag-1) > 0.05 {
			t.Fatalf("response at %v Hz = %v, want ~1", f, mag)
		}
	}
}

func TestNotch_InvalidFrequency(t *testing.T) {
	for _, f := range []float64{0, -10, 500, 600} {
		if c := Notch(f, 30, 1000); !c.IsZero() {
			t.Fatalf("freq=%v: expected zero coefficients", f)
		}
	}
}

func TestButterworth_SectionCount(t *testing.T) {
	for order := 1; order <= 8; order++ {
		want := (order + 1) / 2
		if got := ButterworthLP(100, order, 1000); len(got) != want {
			t.Fatalf("LP order %d: sections=%d, want %d", order, len(got), want)
		}
		if got := ButterworthHP(100, order, 1000); len(got) != want {
			t.Fatalf("HP order %d: sections=%d, want %d", order, len(got), want)
		}
	}
}

func TestButterworthLP_Minus3dBAtCutoff(t *testing.T) {
	for _, order := range []int{1, 2, 4, 6} {
		coeffs := ButterworthLP(100, order, 1000)
		mag := responseAt(coeffs, 100, 1000)
		want := 1 / math.Sqrt2
		if math.Abs(mag-want) > 0.02 {
			t.Fatalf("order %d: |H(fc)| = %v, want %v", order, mag, want)
		}
	}
}

func TestButterworthHP_RejectsDC(t *testing.T) {
	coeffs := ButterworthHP(1, 2, 1000)
	if mag := responseAt(coeffs, 0.01, 1000); mag > 1e-3 {
		t.Fatalf("near-DC response = %v, want ~0", mag)
	}
	if mag := responseAt(coeffs, 100, 1000); math.Abs(mag-1) > 0.05 {
		t.Fatalf("passband response = %v, want ~1", mag)
	}
}

func TestButterworthBP_PassbandAndStopband(t *testing.T) {
	coeffs := ButterworthBP(1, 100, 4, 1000)
	if coeffs == nil {
		t.Fatal("valid bandpass returned nil")
	}

	if mag := responseAt(coeffs, 50, 1000); math.Abs(mag-1) > 0.1 {
		t.Fatalf("mid-band response = %v, want ~1", mag)
	}
	if mag := responseAt(coeffs, 400, 1000); mag > 0.01 {
		t.Fatalf("stopband response = %v, want ~0", mag)
	}
}

func TestButterworthBP_InvalidBand(t *testing.T) {
	if got := ButterworthBP(100, 1, 4, 1000); got != nil {
		t.Fatal("expected nil for inverted band")
	}
	if got := ButterworthBP(1, 600, 4, 1000); got != nil {
		t.Fatal("expected nil for edge beyond Nyquist")
	}
	if got := ButterworthBP(1, 100, 0, 1000); got != nil {
		t.Fatal("expected nil for zero order")
	}
}

func TestButterworth_AllSectionsStable(t *testing.T) {
	for _, order := range []int{1, 2, 4, 8} {
		for _, c := range ButterworthLP(100, order, 1000) {
			// Stability: poles inside unit circle, i.e. |A2| < 1 and |A1| < 1 + A2.
			if math.Abs(c.A2) >= 1 || math.Abs(c.A1) >= 1+c.A2 {
				t.Fatalf("order %d: unstable section %+v", order, c)
			}
		}
	}
}
