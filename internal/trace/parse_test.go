package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		name string
		line string
		want uint64
	}{
		{
			name: "bare hex",
			line: "fffff8053d9189a2",
			want: 0xfffff8053d9189a2,
		},
		{
			name: "0x prefix",
			line: "0x1000",
			want: 0x1000,
		},
		{
			name: "0X prefix",
			line: "0X1000",
			want: 0x1000,
		},
		{
			name: "leading whitespace",
			line: "  \t0xdeadbeef",
			want: 0xdeadbeef,
		},
		{
			name: "trailing text ignored",
			line: "1000 some trailer",
			want: 0x1000,
		},
		{
			name: "uppercase digits",
			line: "DEADC0DE",
			want: 0xdeadc0de,
		},
		{
			name: "garbage yields zero",
			line: "garbage",
			want: 0,
		},
		{
			name: "empty line yields zero",
			line: "",
			want: 0,
		},
		{
			name: "literal zero",
			line: "0",
			want: 0,
		},
		{
			name: "bare 0x yields zero",
			line: "0x",
			want: 0,
		},
		{
			name: "oversized literal saturates",
			line: "ffffffffffffffff0",
			want: ^uint64(0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseAddress(tt.line))
		})
	}
}
