package quant

import (
	"math"
	"testing"

	"github.com/deepteams/jxl/internal/imagef"
)

func TestSetQuantFieldRawRange(t *testing.T) {
	qf := imagef.NewPlane(4, 3)
	vals := []float32{0.1, 0.5, 1.2, 3.7, 0.9, 2.2, 0.3, 1.0, 1.9, 2.8, 0.7, 3.7}
	i := 0
	for y := 0; y < 3; y++ {
		row := qf.Row(y)
		for x := range row {
			row[x] = vals[i]
			i++
		}
	}
	raw := imagef.NewPlaneI(4, 3)
	q := NewQuantizer()
	q.SetQuantField(1.5, qf, raw)

	for y := 0; y < 3; y++ {
		for _, r := range raw.Row(y) {
			if r < 1 || r > MaxQuant {
				t.Errorf("raw index %d outside 1..%d", r, MaxQuant)
			}
		}
	}
	// The field maximum must land at (or next to) the top raw index.
	var maxRaw int32
	for _, r := range raw.Pix {
		if r > maxRaw {
			maxRaw = r
		}
	}
	if maxRaw < MaxQuant-1 {
		t.Errorf("field maximum mapped to raw %d, want close to %d", maxRaw, MaxQuant)
	}
	if got := q.QuantDC(); got != 1.5 {
		t.Errorf("QuantDC = %v, want 1.5", got)
	}
}

func TestScaleInverse(t *testing.T) {
	qf := imagef.NewPlane(2, 2)
	qf.Fill(2.5)
	q := NewQuantizer()
	q.SetQuantField(1, qf, nil)
	if got := q.Scale() * q.InvGlobalScale(); math.Abs(float64(got-1)) > 1e-5 {
		t.Errorf("Scale * InvGlobalScale = %v, want 1", got)
	}
}

func TestRawMonotone(t *testing.T) {
	qf := imagef.NewPlane(8, 1)
	for x := 0; x < 8; x++ {
		qf.Set(x, 0, float32(x+1)*0.4)
	}
	raw := imagef.NewPlaneI(8, 1)
	q := NewQuantizer()
	q.SetQuantField(1, qf, raw)
	row := raw.Row(0)
	for x := 1; x < 8; x++ {
		if row[x] < row[x-1] {
			t.Errorf("raw not monotone in field: raw[%d]=%d < raw[%d]=%d",
				x, row[x], x-1, row[x-1])
		}
	}
}

func TestRoundTripThroughRaw(t *testing.T) {
	qf := imagef.NewPlane(4, 4)
	qf.Fill(1.7)
	raw := imagef.NewPlaneI(4, 4)
	q := NewQuantizer()
	q.SetQuantField(1, qf, raw)
	got := q.FieldFromRaw(raw.At(0, 0))
	// One raw step of error at most.
	if math.Abs(float64(got-1.7)) > float64(q.Scale()) {
		t.Errorf("FieldFromRaw(raw) = %v, want within one step of 1.7", got)
	}
}

func TestInvQuantACRadial(t *testing.T) {
	q := NewQuantizer()
	q.SetQuant(1, 1)
	raw := q.RawFromField(1)
	dc := q.InvQuantAC(raw, 0, 0, 8, 8)
	hf := q.InvQuantAC(raw, 7, 7, 8, 8)
	if hf <= dc {
		t.Errorf("high-frequency step %v not coarser than low-frequency %v", hf, dc)
	}
	// Stronger quantization means finer steps.
	strong := q.InvQuantAC(raw*2, 7, 7, 8, 8)
	if strong >= hf {
		t.Errorf("doubling quant strength did not shrink the step: %v vs %v", strong, hf)
	}
}

func TestQuantizeCoeffRounds(t *testing.T) {
	if got := QuantizeCoeff(1.6, 1); got != 2 {
		t.Errorf("QuantizeCoeff(1.6, 1) = %v, want 2", got)
	}
	if got := QuantizeCoeff(-1.6, 1); got != -2 {
		t.Errorf("QuantizeCoeff(-1.6, 1) = %v, want -2", got)
	}
	if got := QuantizeCoeff(0.4, 1); got != 0 {
		t.Errorf("QuantizeCoeff(0.4, 1) = %v, want 0", got)
	}
}

func TestSetQuantFieldSizeMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("size mismatch did not panic")
		}
	}()
	q := NewQuantizer()
	q.SetQuantField(1, imagef.NewPlane(4, 4), imagef.NewPlaneI(3, 4))
}
