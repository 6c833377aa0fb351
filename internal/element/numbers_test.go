package element

import "testing"

func TestNarrowestFitUnsigned(t *testing.T) {
	tests := []struct {
		value uint64
		want  string
	}{
		{0, "u8"},
		{255, "u8"},
		{256, "u16"},
		{65535, "u16"},
		{65536, "u32"},
		{1 << 32, "u64"},
	}
	for _, tt := range tests {
		if got := NarrowestFitInteger(tt.value, false); got != tt.want {
			t.Errorf("NarrowestFitInteger(%d, false) = %s, want %s", tt.value, got, tt.want)
		}
	}
}

func TestNarrowestFitSigned(t *testing.T) {
	tests := []struct {
		value int64
		want  string
	}{
		{-1, "s8"},
		{-128, "s8"},
		{-129, "s16"},
		{127, "s8"},
		{128, "s16"},
		{1 << 31, "s64"}, // s32 max is 2^31-1
		{(1 << 31) - 1, "s32"},
	}
	for _, tt := range tests {
		if got := NarrowestFitInteger(uint64(tt.value), true); got != tt.want {
			t.Errorf("NarrowestFitInteger(%d, true) = %s, want %s", tt.value, got, tt.want)
		}
	}
}

func TestNarrowestFitFloat(t *testing.T) {
	if got := NarrowestFitFloat(1.5); got != "f32" {
		t.Errorf("NarrowestFitFloat(1.5) = %s, want f32", got)
	}
	if got := NarrowestFitFloat(0.1); got != "f64" {
		t.Errorf("NarrowestFitFloat(0.1) = %s, want f64", got)
	}
}

func TestNumericProperties(t *testing.T) {
	props, ok := NumericPropertiesFor("s32")
	if !ok {
		t.Fatal("s32 missing from the numeric properties table")
	}
	if props.SizeInBytes != 4 || !props.Signed {
		t.Errorf("s32 properties wrong: %+v", props)
	}
	if _, ok := NumericPropertiesFor("s128"); ok {
		t.Error("s128 should not exist")
	}
}

func TestAlign(t *testing.T) {
	tests := []struct {
		value, alignment, want int
	}{
		{0, 4, 0},
		{1, 4, 4},
		{4, 4, 4},
		{5, 8, 8},
		{9, 1, 9},
	}
	for _, tt := range tests {
		if got := Align(tt.value, tt.alignment); got != tt.want {
			t.Errorf("Align(%d, %d) = %d, want %d", tt.value, tt.alignment, got, tt.want)
		}
	}
}
