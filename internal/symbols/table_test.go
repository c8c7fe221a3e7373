package symbols

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTable(t *testing.T) *Table {
	t.Helper()
	table, err := NewTable([]Symbol{
		{Addr: 0xffffffff81000000, Name: "start_kernel", Module: "vmlinux"},
		{Addr: 0xffffffff81001000, Name: "secondary_startup_64", Module: "vmlinux"},
		{Addr: 0xffffffffb0000000, Name: "nf_hook_slow", Module: "nf_tables"},
	}, zerolog.Nop())
	require.NoError(t, err)
	return table
}

func TestTableResolveFullSymbol(t *testing.T) {
	table := testTable(t)

	tests := []struct {
		name    string
		addr    uint64
		want    string
		wantErr bool
	}{
		{
			name: "exact match",
			addr: 0xffffffff81000000,
			want: "start_kernel+0x0",
		},
		{
			name: "inside a symbol",
			addr: 0xffffffff81000042,
			want: "start_kernel+0x42",
		},
		{
			name: "nearest symbol below",
			addr: 0xffffffff81001010,
			want: "secondary_startup_64+0x10",
		},
		{
			name: "module symbol",
			addr: 0xffffffffb0000100,
			want: "nf_hook_slow+0x100",
		},
		{
			name:    "below the first symbol",
			addr:    0x1000,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := table.Resolve(tt.addr, StyleFullSymbol)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTableResolveModOffset(t *testing.T) {
	table := testTable(t)

	tests := []struct {
		name    string
		addr    uint64
		want    string
		wantErr bool
	}{
		{
			name: "module base",
			addr: 0xffffffff81000000,
			want: "vmlinux+0x0",
		},
		{
			name: "offset within first module",
			addr: 0xffffffff81002034,
			want: "vmlinux+0x2034",
		},
		{
			name: "second module",
			addr: 0xffffffffb0000040,
			want: "nf_tables+0x40",
		},
		{
			name:    "below every module",
			addr:    0x400000,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := table.Resolve(tt.addr, StyleModOffset)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTableDemanglesFullSymbol(t *testing.T) {
	table, err := NewTable([]Symbol{
		{Addr: 0x1000, Name: "_Z3foov", Module: "app"},
	}, zerolog.Nop())
	require.NoError(t, err)

	got, err := table.Resolve(0x1008, StyleFullSymbol)
	require.NoError(t, err)
	assert.Equal(t, "foo()+0x8", got)
}

func TestNewTableRejectsEmptySnapshot(t *testing.T) {
	_, err := NewTable(nil, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no symbols")
}

func TestParseStyle(t *testing.T) {
	tests := []struct {
		in      string
		want    Style
		wantErr bool
	}{
		{in: "modoff", want: StyleModOffset},
		{in: "fullsym", want: StyleFullSymbol},
		{in: "FullSym", want: StyleFullSymbol},
		{in: "MODOFF", want: StyleModOffset},
		{in: "dwarf", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStyle(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
