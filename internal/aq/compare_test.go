package aq

import (
	"errors"
	"testing"

	"github.com/deepteams/jxl/internal/imagef"
)

func TestComparatorIdenticalImagesScoreZero(t *testing.T) {
	img := imagef.NewPlane3(16, 16)
	for y := 0; y < 16; y++ {
		row := img[1].Row(y)
		for x := range row {
			row[x] = 0.1 * float32(x)
		}
	}
	c := NewOpsinComparator()
	if err := c.SetReferenceImage(img); err != nil {
		t.Fatal(err)
	}
	score, diffmap, err := c.CompareWith(img)
	if err != nil {
		t.Fatal(err)
	}
	if score != 0 {
		t.Errorf("identical images scored %f", score)
	}
	for y := 0; y < 16; y++ {
		for x, v := range diffmap.Row(y) {
			if v != 0 {
				t.Fatalf("diffmap (%d,%d) = %f, want 0", x, y, v)
			}
		}
	}
}

func TestComparatorLocalizesDistortion(t *testing.T) {
	ref := imagef.NewPlane3(24, 24)
	ref[1].Fill(0.5)
	img := ref.Clone()
	img[1].Set(4, 4, 0.9)

	c := NewOpsinComparator()
	if err := c.SetReferenceImage(ref); err != nil {
		t.Fatal(err)
	}
	score, diffmap, err := c.CompareWith(img)
	if err != nil {
		t.Fatal(err)
	}
	if score <= 0 {
		t.Fatal("distorted image scored zero")
	}
	if diffmap.At(4, 4) <= diffmap.At(20, 20) {
		t.Error("diffmap does not peak near the distortion")
	}
	if diffmap.At(20, 20) != 0 {
		t.Errorf("far corner diff = %f, want 0", diffmap.At(20, 20))
	}
}

func TestComparatorPolarity(t *testing.T) {
	c := NewOpsinComparator()
	if c.GoodQualityScore() >= c.BadQualityScore() {
		t.Error("default comparator is not lower-is-better")
	}
}

func TestComparatorErrors(t *testing.T) {
	c := NewOpsinComparator()
	_, _, err := c.CompareWith(imagef.NewPlane3(8, 8))
	if !errors.Is(err, ErrNoReference) {
		t.Fatalf("err = %v, want ErrNoReference", err)
	}
	if err := c.SetReferenceImage(imagef.NewPlane3(8, 8)); err != nil {
		t.Fatal(err)
	}
	if _, _, err := c.CompareWith(imagef.NewPlane3(16, 8)); err == nil {
		t.Error("size mismatch not rejected")
	}
}
