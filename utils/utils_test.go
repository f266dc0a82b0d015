package utils

import (
	"image/color"
	"strings"
	"testing"
)

func TestColorFloatRGBA(t *testing.T) {
	var tests = []struct {
		in  ColorFloat
		out color.RGBA64
	}{
		{ColorFloat{1, 1, 1, 1}, color.RGBA64{0xffff, 0xffff, 0xffff, 0xffff}},
		{ColorFloat{1, 0, 0, 0}, color.RGBA64{0, 0, 0, 0}},
		{ColorFloat{2, -1, 0, 1}, color.RGBA64{0xffff, 0, 0, 0xffff}},
	}
	for _, test := range tests {
		c := test.in
		got := color.RGBA64Model.Convert(&c).(color.RGBA64)
		if got != test.out {
			t.Errorf("RGBA(%v) = %v; expected %v", test.in, got, test.out)
		}
	}
	if c := NewColorFloat([]float32{0.5, 0.25, 0}); c[3] != 1 {
		t.Errorf("NewColorFloat alpha %v", c[3])
	}
}

func TestSDumpShallow(t *testing.T) {
	type inner struct{ Values []int }
	type outer struct{ In inner }
	full := SDump(outer{inner{[]int{1, 2, 3}}})
	shallow := SDumpShallow(1, outer{inner{[]int{1, 2, 3}}})
	if !strings.Contains(full, "(int) 3") {
		t.Errorf("SDump lost values:\n%s", full)
	}
	if strings.Contains(shallow, "(int) 3") || !strings.Contains(shallow, "max depth reached") {
		t.Errorf("SDumpShallow ignored depth:\n%s", shallow)
	}
}
