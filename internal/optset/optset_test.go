package optset

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestParseAndString(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"single flag", "-f", "-f"},
		{"flag with value", "-W 1920", "-W 1920"},
		{"mixed", "-f --mangoapp -W 1920 -H 1080", "-f --mangoapp -W 1920 -H 1080"},
		{"extra whitespace", "  -f   --mangoapp  ", "-f --mangoapp"},
		{"leading positional", "steam -f", "steam -f"},
		{"negative value", "-o -1 -f", "-o -1 -f"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.in).String())
		})
	}
}

func TestNegativeNumberIsAValue(t *testing.T) {
	s := Parse("-o -1")

	v, ok := s.Value("-o")
	require.True(t, ok)
	assert.Equal(t, "-1", v)
	assert.False(t, s.Has("-1"))
}

func TestAddAbsentThenPresent(t *testing.T) {
	s := Parse("-f --mangoapp")

	s.Add("--hdr-enabled")
	assert.Equal(t, "-f --mangoapp --hdr-enabled", s.String())

	// second Add is a no-op
	s.Add("--hdr-enabled")
	assert.Equal(t, "-f --mangoapp --hdr-enabled", s.String())
}

func TestPutReplacesInPlace(t *testing.T) {
	s := Parse("-W 1920 -H 1080 --mangoapp")

	s.Put("-W", "3440")
	assert.Equal(t, "-W 3440 -H 1080 --mangoapp", s.String())
	assert.Equal(t, 1, strings.Count(s.String(), "-W"))
	assert.NotContains(t, s.String(), "1920")
}

func TestPutAppendsWhenAbsent(t *testing.T) {
	s := Parse("-f --mangoapp")

	s.Put("-W", "2560")
	s.Put("-H", "1440")
	assert.Equal(t, "-f --mangoapp -W 2560 -H 1440", s.String())
}

func TestPutOnEmptySet(t *testing.T) {
	s := Parse("")
	require.True(t, s.Empty())

	s.Put("-W", "1280")
	assert.Equal(t, "-W 1280", s.String())
}

func TestValue(t *testing.T) {
	s := Parse("-f -O DP-1 -W 2560")

	v, ok := s.Value("-O")
	require.True(t, ok)
	assert.Equal(t, "DP-1", v)

	_, ok = s.Value("-f")
	assert.False(t, ok)

	_, ok = s.Value("--nope")
	assert.False(t, ok)
}

// genFlag generates plausible flag tokens like -W or --adaptive-sync.
func genFlag() *rapid.Generator[string] {
	return rapid.Custom(func(t *rapid.T) string {
		name := rapid.StringMatching(`[a-zA-Z][a-zA-Z-]{0,10}`).Draw(t, "name")
		if rapid.Bool().Draw(t, "long") {
			return "--" + name
		}
		return "-" + name
	})
}

func TestAddIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		base := rapid.SliceOfN(genFlag(), 0, 5).Draw(t, "base")
		s := Parse(strings.Join(base, " "))
		flag := genFlag().Draw(t, "flag")

		s.Add(flag)
		once := s.String()
		s.Add(flag)

		if s.String() != once {
			t.Fatalf("second Add changed set: %q != %q", s.String(), once)
		}
		if !s.Has(flag) {
			t.Fatalf("flag %q missing after Add", flag)
		}
	})
}

func TestPutSingleOccurrence(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		base := rapid.SliceOfN(genFlag(), 0, 5).Draw(t, "base")
		s := Parse(strings.Join(base, " "))
		flag := genFlag().Draw(t, "flag")
		val := fmt.Sprint(rapid.IntRange(1, 9999).Draw(t, "val"))

		s.Put(flag, val)

		count := 0
		for _, tok := range s.Tokens() {
			if tok == flag {
				count++
			}
		}
		if count != 1 {
			t.Fatalf("flag %q occurs %d times after Put", flag, count)
		}
		got, ok := s.Value(flag)
		if !ok || got != val {
			t.Fatalf("Value(%q) = %q, %v; want %q", flag, got, ok, val)
		}
	})
}
