package util

import "testing"

func TestPriceNumber(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"$549.99", "549.99"},
		{"1,299.00 EUR", "1299"},
		{"999 \u00a0kr", "999"},
		{"1 249,00", "124900"},
		{"Call for price", ""},
		{"", ""},
		{"0012.50", "12.5"},
	}
	for _, c := range cases {
		if got := PriceNumber(c.in); got != c.want {
			t.Fatalf("PriceNumber(%q)=%q want %q", c.in, got, c.want)
		}
	}
}
