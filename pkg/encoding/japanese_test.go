package encoding

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShiftJISRoundTrip(t *testing.T) {
	for _, s := range []string{"", "walk_loop", "歩き", "ｱﾆﾒ", "攻撃_01"} {
		encoded := UTF8ToShiftJIS(s)
		assert.Equal(t, s, ShiftJISToUTF8(encoded), "input %q", s)
	}
}

func TestUTF8ToShiftJIS_ASCIIUnchanged(t *testing.T) {
	assert.Equal(t, []byte("idle"), UTF8ToShiftJIS("idle"))
}

func TestUTF8ToShiftJIS_Unsupported(t *testing.T) {
	assert.Equal(t, []byte("a?b"), UTF8ToShiftJIS("a😀b"))
	assert.Equal(t, []byte("??"), UTF8ToShiftJIS("\xff\xfe"))
	assert.Equal(t, append([]byte{0x95, 0xE0}, '?'), UTF8ToShiftJIS("歩😀"))
}

func TestTruncateShiftJIS_Unsupported(t *testing.T) {
	got := TruncateShiftJIS(strings.Repeat("😀", 20), 10)
	assert.Equal(t, []byte(strings.Repeat("?", 10)), got)
}

func TestTruncateShiftJIS(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  int
	}{
		{"short ascii", "abc", 40, 3},
		{"exact ascii", "abcd", 4, 4},
		{"long ascii", "abcdefgh", 4, 4},
		{"double byte boundary", "あいう", 5, 4},
		{"double byte exact", "あいう", 6, 6},
		{"half width kana", "ｱｲｳｴｵ", 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateShiftJIS(tt.in, tt.limit)
			require.Len(t, got, tt.want)
			assert.LessOrEqual(t, len(got), tt.limit)
		})
	}
}

func TestCString(t *testing.T) {
	assert.Equal(t, []byte("name"), CString([]byte("name\x00\x00junk")))
	assert.Equal(t, []byte("name"), CString([]byte("name")))
	assert.Empty(t, CString([]byte{0, 'a'}))
}

func TestStripNullBytes(t *testing.T) {
	assert.Equal(t, []byte("XMTN"), StripNullBytes([]byte("XMTN\x00\x00\x00\x00")))
	assert.Equal(t, []byte("XMTN"), StripNullBytes([]byte("XM\x00TN")))
}

func TestNameToUTF8(t *testing.T) {
	assert.Equal(t, "run", NameToUTF8([]byte("run")))
	assert.Equal(t, "走る", NameToUTF8(UTF8ToShiftJIS("走る")))
}
