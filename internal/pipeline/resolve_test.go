package pipeline

import (
	"testing"

	"hwharvest/internal"
)

func TestResolveKeyed(t *testing.T) {
	lines := []string{
		"CPU: AMD Ryzen 5 5600",
		"RAM: 16GB DDR4",
		"M2: 1TB",
		"GPU: RTX 3060",
		"PSU: 650W Bronze",
		"Case: Mid Tower",
		"Resolution: 2560x1440",
	}
	attrs := Resolve(lines)

	want := map[internal.AttributeKey]string{
		internal.AttrCPU:        "AMD Ryzen 5 5600",
		internal.AttrRAM:        "16GB DDR4",
		internal.AttrStorage:    "M.2 1TB",
		internal.AttrGPU:        "RTX 3060",
		internal.AttrPSU:        "650W Bronze",
		internal.AttrCase:       "Mid Tower",
		internal.AttrResolution: "2560x1440",
	}
	for key, value := range want {
		if got := attrs.Get(key); got != value {
			t.Errorf("%s: got %q, want %q", key, got, value)
		}
	}
	if !attrs.Full() {
		t.Fatalf("expected a full attribute set, got %v", attrs)
	}
}

func TestResolveBrandLookahead(t *testing.T) {
	attrs := Resolve([]string{"Graphics AMD", "Radeon RX 6600"})
	if got := attrs.Get(internal.AttrGPU); got != "Radeon RX 6600" {
		t.Fatalf("gpu: got %q, want %q", got, "Radeon RX 6600")
	}
}

func TestResolveHeadingNextLine(t *testing.T) {
	lines := []string{
		"Memory:",
		"16GB (2x8GB) DDR4",
		"Processor",
		"Intel Core i5-10400F",
	}
	attrs := Resolve(lines)

	if got := attrs.Get(internal.AttrRAM); got != "16GB (2x8GB) DDR4" {
		t.Errorf("ram: got %q", got)
	}
	if got := attrs.Get(internal.AttrCPU); got != "Intel Core i5-10400F" {
		t.Errorf("cpu: got %q", got)
	}
	if attrs.Has(internal.AttrStorage) {
		t.Errorf("storage should not resolve from a bare capacity, got %q", attrs.Get(internal.AttrStorage))
	}
	if attrs.Has(internal.AttrGPU) {
		t.Errorf("gpu should stay empty, got %q", attrs.Get(internal.AttrGPU))
	}
}

func TestResolveFreeform(t *testing.T) {
	lines := []string{
		"Gaming PC",
		"Ryzen 7 5800X, 32GB DDR4",
		"1TB NVMe Gen4 SSD",
		"GeForce RTX 3070 Ti",
	}
	attrs := Resolve(lines)

	if got := attrs.Get(internal.AttrCPU); got != "Ryzen 7 5800X" {
		t.Errorf("cpu: got %q", got)
	}
	if got := attrs.Get(internal.AttrRAM); got != "32GB DDR4" {
		t.Errorf("ram: got %q", got)
	}
	if got := attrs.Get(internal.AttrStorage); got != "PCIe 4 NVMe 1TB SSD" {
		t.Errorf("storage: got %q", got)
	}
	if got := attrs.Get(internal.AttrGPU); got != "GeForce RTX 3070 Ti" {
		t.Errorf("gpu: got %q", got)
	}
}

func TestResolveStorageCanonical(t *testing.T) {
	cases := []struct {
		line string
		want string
	}{
		{"M2: 1TB", "M.2 1TB"},
		{"Storage: 2TB M.2 PCIe 4.0 NVMe", "M.2 PCIe 4 NVMe 2TB"},
		{"SSD: 512GB", "512GB SSD"},
		{"PCIE: Gen 3 1TB", "PCIe 3 1TB"},
		{"Storage: Seagate Barracuda", "Seagate Barracuda"},
	}
	for _, tc := range cases {
		attrs := Resolve([]string{tc.line})
		if got := attrs.Get(internal.AttrStorage); got != tc.want {
			t.Errorf("%q: got %q, want %q", tc.line, got, tc.want)
		}
	}
}

func TestResolveCPUPositionalFallback(t *testing.T) {
	cases := []struct {
		name  string
		lines []string
		want  string
	}{
		{
			name:  "first cpu-likely line",
			lines: []string{"Mini Tower", "8-Core Desktop", "GPU: GTX 1650"},
			want:  "8-Core Desktop",
		},
		{
			name:  "second non-keyed line",
			lines: []string{"Office PC Pro", "Intel NUC Box", "RAM: 8GB DDR4"},
			want:  "Intel NUC Box",
		},
		{
			name:  "second pair value",
			lines: []string{"RAM: 16GB DDR4", "GPU: RTX 3060"},
			want:  "RTX 3060",
		},
	}
	for _, tc := range cases {
		attrs := Resolve(tc.lines)
		if got := attrs.Get(internal.AttrCPU); got != tc.want {
			t.Errorf("%s: cpu got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestResolveNoFallbackWithoutHardware(t *testing.T) {
	attrs := Resolve([]string{"Just a slogan", "Another line"})
	if len(attrs) != 0 {
		t.Fatalf("expected no attributes, got %v", attrs)
	}

	attrs = Resolve([]string{"27 inch IPS", "2560 x 1440 @ 144Hz"})
	if got := attrs.Get(internal.AttrResolution); got != "2560 x 1440 @ 144Hz" {
		t.Fatalf("resolution: got %q", got)
	}
	if attrs.Has(internal.AttrCPU) {
		t.Fatalf("resolution alone must not trigger the cpu fallback, got %q", attrs.Get(internal.AttrCPU))
	}
}

func TestResolveFirstMatchWins(t *testing.T) {
	attrs := Resolve([]string{"CPU: Ryzen 5 5600", "CPU: Ryzen 7 5800X"})
	if got := attrs.Get(internal.AttrCPU); got != "Ryzen 5 5600" {
		t.Fatalf("cpu: got %q, want first keyed value", got)
	}

	attrs = Resolve([]string{"GeForce RTX 3070", "GPU: GTX 1650"})
	if got := attrs.Get(internal.AttrGPU); got != "GTX 1650" {
		t.Fatalf("gpu: got %q, keyed value must beat the freeform scan", got)
	}
}
