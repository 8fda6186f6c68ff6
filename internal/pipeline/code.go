package pipeline

import (
	"crypto/rand"
	"crypto/sha256"
	"math/big"
	"strings"
	"time"

	"hwharvest/internal"
	"hwharvest/internal/util"
)

const (
	codeLen      = 8
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Fingerprint folds each identity field to lower case with collapsed
// whitespace and joins them with "||".
func Fingerprint(fields ...string) string {
	folded := make([]string, len(fields))
	for i, f := range fields {
		folded[i] = util.FoldField(f)
	}
	return strings.Join(folded, "||")
}

// IdentityFields picks the fields that define a record's identity. When
// spec lines were extracted the identity is the structured shape of the
// build; without them it falls back to the raw storefront fields.
func IdentityFields(rec *internal.ProductRecord) []string {
	if len(rec.SpecLines) > 0 {
		return []string{
			rec.BaseName,
			derefString(rec.Category),
			rec.Attrs.Get(internal.AttrCPU),
			rec.Attrs.Get(internal.AttrRAM),
			rec.Attrs.Get(internal.AttrStorage),
			rec.Attrs.Get(internal.AttrPSU),
			rec.Attrs.Get(internal.AttrCase),
		}
	}
	return []string{
		rec.BaseName,
		derefString(rec.Price),
		derefString(rec.Category),
		derefString(rec.Image),
	}
}

// CodeBook hands out short codes within a single run. The same
// fingerprint always receives the same code; a hash collision with an
// earlier code falls back to random codes from the same alphabet.
type CodeBook struct {
	used    map[string]struct{}
	byPrint map[string]string
}

func NewCodeBook() *CodeBook {
	return &CodeBook{
		used:    make(map[string]struct{}),
		byPrint: make(map[string]string),
	}
}

func (b *CodeBook) Assign(print string) string {
	if code, ok := b.byPrint[print]; ok {
		return code
	}
	code := hashCode(print)
	if code == "" || b.isUsed(code) {
		code = b.randomUnused()
	}
	b.used[code] = struct{}{}
	b.byPrint[print] = code
	return code
}

func (b *CodeBook) isUsed(code string) bool {
	_, ok := b.used[code]
	return ok
}

func (b *CodeBook) randomUnused() string {
	for {
		code := randomCode()
		if !b.isUsed(code) {
			return code
		}
	}
}

// hashCode derives the 8-character code for a fingerprint: sha256,
// rendered in base 36, upper-cased, non-alphanumerics stripped, then
// truncated or left-padded with "0" to the code length.
func hashCode(print string) string {
	sum := sha256.Sum256([]byte(print))
	text := strings.ToUpper(new(big.Int).SetBytes(sum[:]).Text(36))

	var b strings.Builder
	for _, r := range text {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	code := b.String()
	if len(code) >= codeLen {
		return code[:codeLen]
	}
	for len(code) < codeLen {
		code = "0" + code
	}
	return code
}

// symbolFor maps one random byte onto the code alphabet. Bytes at or past
// the largest multiple of the alphabet size are rejected; every accepted
// byte value maps onto the alphabet equally often, keeping the draw
// uniform.
func symbolFor(b byte) (byte, bool) {
	const limit = 256 - 256%len(codeAlphabet)
	if int(b) >= limit {
		return 0, false
	}
	return codeAlphabet[int(b)%len(codeAlphabet)], true
}

func randomCode() string {
	out := make([]byte, 0, codeLen)
	buf := make([]byte, codeLen)
	for len(out) < codeLen {
		if _, err := rand.Read(buf); err != nil {
			now := time.Now().UnixNano()
			for i := 0; len(out) < codeLen; i++ {
				if s, ok := symbolFor(byte(now >> (8 * i))); ok {
					out = append(out, s)
				}
			}
			break
		}
		for _, b := range buf {
			if len(out) == codeLen {
				break
			}
			if s, ok := symbolFor(b); ok {
				out = append(out, s)
			}
		}
	}
	return string(out)
}
