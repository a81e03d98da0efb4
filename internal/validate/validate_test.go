package validate

import "testing"

func TestID(t *testing.T) {
	for in, want := range map[string]bool{
		"mash-tee-001": true,
		" p1 ":         true,
		"":             false,
		"../etc":       false,
		"a b":          false,
	} {
		if _, ok := ID(in); ok != want {
			t.Errorf("ID(%q) = %v, want %v", in, ok, want)
		}
	}
}

func TestQuantity(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"3", 3, true},
		{" 1 ", 1, true},
		{"0", 0, false},
		{"-2", 0, false},
		{"abc", 0, false},
		{"1000", 99, true},
	}
	for _, tc := range cases {
		got, ok := Quantity(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("Quantity(%q) = %d,%v want %d,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestVariants(t *testing.T) {
	if got, ok := Variants(map[string]string{" size ": "M"}); !ok || got["size"] != "M" {
		t.Fatalf("trimmed selection rejected: %v %v", got, ok)
	}
	if _, ok := Variants(map[string]string{"size": "<script>"}); ok {
		t.Fatal("markup accepted as option")
	}
	if got, ok := Variants(nil); !ok || len(got) != 0 {
		t.Fatal("empty selection should be valid")
	}
}
