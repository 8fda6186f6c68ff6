package pipeline

import (
	"strings"
	"testing"

	"hwharvest/internal"
	"hwharvest/internal/util"
)

func TestFingerprint(t *testing.T) {
	got := Fingerprint("Gaming  PC", "HARDWARE", "")
	if got != "gaming pc||hardware||" {
		t.Fatalf("fingerprint: got %q", got)
	}
	if Fingerprint("a", "b") != Fingerprint("A ", " b") {
		t.Fatalf("fingerprint must fold case and whitespace")
	}
}

func TestIdentityFields(t *testing.T) {
	rec := &internal.ProductRecord{
		BaseName:  "Gaming PC Ryzen 5 5600",
		Category:  util.StringPtr("Desktops"),
		SpecLines: []string{"CPU: Ryzen 5 5600"},
		Attrs:     internal.NewAttributeSet(),
	}
	rec.Attrs.Set(internal.AttrCPU, "Ryzen 5 5600")
	rec.Attrs.Set(internal.AttrRAM, "16GB DDR4")

	withGPU := *rec
	withGPU.Attrs = internal.NewAttributeSet()
	withGPU.Attrs.Set(internal.AttrCPU, "Ryzen 5 5600")
	withGPU.Attrs.Set(internal.AttrRAM, "16GB DDR4")
	withGPU.Attrs.Set(internal.AttrGPU, "RTX 3060")

	if Fingerprint(IdentityFields(rec)...) != Fingerprint(IdentityFields(&withGPU)...) {
		t.Fatalf("gpu is not part of the identity")
	}

	otherRAM := *rec
	otherRAM.Attrs = internal.NewAttributeSet()
	otherRAM.Attrs.Set(internal.AttrCPU, "Ryzen 5 5600")
	otherRAM.Attrs.Set(internal.AttrRAM, "32GB DDR4")

	if Fingerprint(IdentityFields(rec)...) == Fingerprint(IdentityFields(&otherRAM)...) {
		t.Fatalf("ram must be part of the identity")
	}

	bare := &internal.ProductRecord{
		BaseName: "Mystery Box",
		Price:    util.StringPtr("499"),
		Category: util.StringPtr("Misc"),
		Image:    util.StringPtr("https://example.com/box.jpg"),
		Attrs:    internal.NewAttributeSet(),
	}
	fields := IdentityFields(bare)
	want := []string{"Mystery Box", "499", "Misc", "https://example.com/box.jpg"}
	if len(fields) != len(want) {
		t.Fatalf("fields: got %v", fields)
	}
	for i := range want {
		if fields[i] != want[i] {
			t.Fatalf("field %d: got %q, want %q", i, fields[i], want[i])
		}
	}
}

func TestCodeBookAssign(t *testing.T) {
	book := NewCodeBook()

	first := book.Assign("print-a")
	if again := book.Assign("print-a"); again != first {
		t.Fatalf("same fingerprint must keep its code: %q vs %q", first, again)
	}
	if other := book.Assign("print-b"); other == first {
		t.Fatalf("distinct fingerprints must not share a code")
	}

	if len(first) != codeLen {
		t.Fatalf("code %q has length %d", first, len(first))
	}
	for _, r := range first {
		if !strings.ContainsRune(codeAlphabet, r) {
			t.Fatalf("code %q contains %q outside the alphabet", first, r)
		}
	}
}

func TestCodeBookCollisionFallsBack(t *testing.T) {
	book := NewCodeBook()
	taken := hashCode("colliding-print")
	book.used[taken] = struct{}{}

	code := book.Assign("colliding-print")
	if code == taken {
		t.Fatalf("collision must mint a fresh code")
	}
	if len(code) != codeLen {
		t.Fatalf("code %q has length %d", code, len(code))
	}
	if again := book.Assign("colliding-print"); again != code {
		t.Fatalf("fallback code must be remembered: %q vs %q", code, again)
	}
}

func TestHashCodeDeterministic(t *testing.T) {
	if hashCode("alpha") != hashCode("alpha") {
		t.Fatalf("hash code must be stable")
	}
	if hashCode("alpha") == hashCode("beta") {
		t.Fatalf("hash codes for distinct prints should differ")
	}
}

func TestSymbolForUniform(t *testing.T) {
	counts := make(map[byte]int)
	rejected := 0
	for b := 0; b < 256; b++ {
		s, ok := symbolFor(byte(b))
		if !ok {
			rejected++
			continue
		}
		counts[s]++
	}

	if want := 256 % len(codeAlphabet); rejected != want {
		t.Fatalf("rejected %d byte values, want %d", rejected, want)
	}
	want := (256 - rejected) / len(codeAlphabet)
	for i := 0; i < len(codeAlphabet); i++ {
		if got := counts[codeAlphabet[i]]; got != want {
			t.Fatalf("symbol %q maps from %d byte values, want %d", codeAlphabet[i], got, want)
		}
	}
}

func TestCodeBookManyUnique(t *testing.T) {
	book := NewCodeBook()
	seen := make(map[string]struct{})
	for i := 0; i < 500; i++ {
		code := book.Assign(Fingerprint("item", strings.Repeat("x", i%7), string(rune('a'+i%26)), strings.Repeat("y", i)))
		if _, dup := seen[code]; dup {
			t.Fatalf("duplicate code %q at %d", code, i)
		}
		seen[code] = struct{}{}
	}
}
