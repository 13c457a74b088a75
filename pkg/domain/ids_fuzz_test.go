//go:build go1.18

package domain

import (
	"testing"
	"unicode/utf8"
)

// FuzzParseUserID tests that parsing never panics on arbitrary input
// and always returns either a valid ID or an error.
func FuzzParseUserID(f *testing.F) {
	f.Add("")
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("00000000-0000-0000-0000-000000000000")
	f.Add("not-a-uuid")
	f.Add(string([]byte{0x00, 0x01, 0x02}))
	f.Add("550e8400-e29b-41d4-a716-446655440000\x00suffix")

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseUserID(input)
		if err == nil {
			roundTrip, err2 := ParseUserID(id.String())
			if err2 != nil {
				t.Errorf("Valid ID failed round-trip: %v", err2)
			}
			if roundTrip != id {
				t.Error("Round-trip changed ID value")
			}
		}

		if !utf8.ValidString(input) && err == nil {
			t.Error("Non-UTF8 input was accepted")
		}
	})
}

// FuzzParseProductCode checks that accepted codes are already normalised.
func FuzzParseProductCode(f *testing.F) {
	f.Add("TC001")
	f.Add(" TT002 ")
	f.Add("")
	f.Add("a\tb")

	f.Fuzz(func(t *testing.T, input string) {
		code, err := ParseProductCode(input)
		if err != nil {
			return
		}
		if !code.IsValid() {
			t.Errorf("accepted code %q is not valid", code)
		}
		again, err := ParseProductCode(string(code))
		if err != nil || again != code {
			t.Errorf("parse is not idempotent for %q", code)
		}
	})
}
