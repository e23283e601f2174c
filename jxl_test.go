package jxl

import (
	"testing"
)

func testOpsin(w, h int) Plane3 {
	opsin := NewPlane3(w, h)
	for y := 0; y < h; y++ {
		row := opsin[1].Row(y)
		for x := range row {
			row[x] = 0.02 * float32((x*5+y*3)%13)
		}
	}
	return opsin
}

func TestNewEncoderStatePadsToBlocks(t *testing.T) {
	opsin := testOpsin(21, 13)
	s := NewEncoderState(opsin, 21, 13)
	if s.Dim.XSizePadded != 24 || s.Dim.YSizePadded != 16 {
		t.Fatalf("padded to %dx%d, want 24x16", s.Dim.XSizePadded, s.Dim.YSizePadded)
	}
	if s.Opsin[1].W != 24 || s.Opsin[1].H != 16 {
		t.Fatalf("opsin plane is %dx%d, want 24x16", s.Opsin[1].W, s.Opsin[1].H)
	}
	// Edge replication: padding columns repeat the last valid column and
	// padding rows the last valid row.
	for y := 0; y < 13; y++ {
		want := opsin[1].At(20, y)
		for x := 21; x < 24; x++ {
			if s.Opsin[1].At(x, y) != want {
				t.Fatalf("padding (%d,%d) = %f, want %f", x, y, s.Opsin[1].At(x, y), want)
			}
		}
	}
	for y := 13; y < 16; y++ {
		if s.Opsin[1].At(5, y) != opsin[1].At(5, 12) {
			t.Fatalf("padding row %d does not replicate the last valid row", y)
		}
	}
	if s.QuantField.W != 3 || s.QuantField.H != 2 {
		t.Fatalf("quant field is %dx%d, want 3x2", s.QuantField.W, s.QuantField.H)
	}
}

func TestInitialQuantFieldPositive(t *testing.T) {
	s := NewEncoderState(testOpsin(32, 24), 32, 24)
	field := s.InitialQuantField(&Params{Distance: 1})
	if field != s.QuantField {
		t.Fatal("returned field is not the state's field")
	}
	for y := 0; y < field.H; y++ {
		for x, v := range field.Row(y) {
			if v <= 0 {
				t.Fatalf("field (%d,%d) = %f, want positive", x, y, v)
			}
		}
	}
}

func TestFastTierCommitsWithoutComparator(t *testing.T) {
	s := NewEncoderState(testOpsin(32, 24), 32, 24)
	s.InitialQuantField(&Params{Distance: 1})
	if err := s.FindBestQuantizer(Plane3{}, &Params{Distance: 1, Tier: TierWombat}); err != nil {
		t.Fatal(err)
	}
	for y := 0; y < s.RawQuant.H; y++ {
		for x, r := range s.RawQuant.Row(y) {
			if r < 1 || r > 255 {
				t.Fatalf("raw quant (%d,%d) = %d out of range", x, y, r)
			}
		}
	}
	if s.QuantDC() <= 0 {
		t.Errorf("DC quant %f not committed", s.QuantDC())
	}
}

func TestStandardSearchEndToEnd(t *testing.T) {
	s := NewEncoderState(testOpsin(32, 24), 32, 24)
	s.InitialQuantField(&Params{Distance: 1})
	p := &Params{Distance: 1, Tier: TierKitten, MaxIters: 1}
	if err := s.FindBestQuantizer(Plane3{}, p); err != nil {
		t.Fatal(err)
	}
	for y := 0; y < s.RawQuant.H; y++ {
		for x, r := range s.RawQuant.Row(y) {
			if r < 1 {
				t.Fatalf("raw quant (%d,%d) = %d not committed", x, y, r)
			}
		}
	}
}

func TestRoundtripImageShape(t *testing.T) {
	s := NewEncoderState(testOpsin(24, 17), 24, 17)
	s.InitialQuantField(&Params{Distance: 1})
	if err := s.FindBestQuantizer(Plane3{}, &Params{Distance: 1, Tier: TierWombat}); err != nil {
		t.Fatal(err)
	}
	dec, err := s.RoundtripImage()
	if err != nil {
		t.Fatal(err)
	}
	for c := 0; c < 3; c++ {
		if dec[c].W != s.Dim.XSizePadded || dec[c].H != s.Dim.YSizePadded {
			t.Fatalf("channel %d decoded to %dx%d, want %dx%d",
				c, dec[c].W, dec[c].H, s.Dim.XSizePadded, s.Dim.YSizePadded)
		}
	}
}

func TestTokenizeFlatImage(t *testing.T) {
	s := NewEncoderState(NewPlane3(16, 16), 16, 16)
	s.InitialQuantField(&Params{Distance: 1})
	if err := s.FindBestQuantizer(Plane3{}, &Params{Distance: 1, Tier: TierWombat}); err != nil {
		t.Fatal(err)
	}
	tokens, err := s.TokenizeCoefficients()
	if err != nil {
		t.Fatal(err)
	}
	// A flat image has no AC coefficients: one zero-valued non-zero-count
	// token per block and channel.
	if len(tokens) != 4*3 {
		t.Fatalf("got %d tokens, want 12", len(tokens))
	}
	for i, tok := range tokens {
		if tok.Value != 0 {
			t.Errorf("token %d value = %d, want 0", i, tok.Value)
		}
	}
}

func TestTokenizeBusyImageEmitsCoefficients(t *testing.T) {
	opsin := NewPlane3(16, 16)
	for y := 0; y < 16; y++ {
		row := opsin[1].Row(y)
		for x := range row {
			if (x+y)%2 == 0 {
				row[x] = 0.5
			}
		}
	}
	s := NewEncoderState(opsin, 16, 16)
	s.InitialQuantField(&Params{Distance: 0.5})
	// A strong uniform quant guarantees surviving AC coefficients.
	if err := s.FindBestQuantizer(Plane3{}, &Params{Distance: 0.5, Tier: TierWombat, UniformQuant: 4}); err != nil {
		t.Fatal(err)
	}
	tokens, err := s.TokenizeCoefficients()
	if err != nil {
		t.Fatal(err)
	}
	if len(tokens) <= 4*3 {
		t.Fatalf("got %d tokens, want coefficient tokens beyond the counts", len(tokens))
	}
}

func TestBlockCtxMapBytesRoundtrip(t *testing.T) {
	m := DefaultBlockCtxMap()
	data := EncodeBlockCtxMap(m)
	if len(data) == 0 {
		t.Fatal("empty encoding")
	}
	dec, err := DecodeBlockCtxMap(data)
	if err != nil {
		t.Fatal(err)
	}
	if dec.NumCtxs() != m.NumCtxs() {
		t.Errorf("decoded %d contexts, want %d", dec.NumCtxs(), m.NumCtxs())
	}
	if !dec.IsDefault() {
		t.Error("default map did not decode as default")
	}
}

func TestDefaultParams(t *testing.T) {
	p := DefaultParams(2.5)
	if p.Distance != 2.5 || p.MaxIters == 0 || p.MaxItersHQ == 0 {
		t.Errorf("unexpected defaults: %+v", p)
	}
}
