package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractField(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		text    string
		want    string
		wantOK  bool
	}{
		{
			name:    "first capture group wins",
			pattern: `Ref:\s*(\d+)`,
			text:    "UPI Ref: 123456789012",
			want:    "123456789012",
			wantOK:  true,
		},
		{
			name:    "first non-empty group preferred over empty earlier alternative",
			pattern: `(?:Ref:\s*(\d+)|ID:\s*(\w+))`,
			text:    "ID: ABC123",
			want:    "ABC123",
			wantOK:  true,
		},
		{
			name:    "full match when no groups captured",
			pattern: `\d{12}`,
			text:    "ref 123456789012 end",
			want:    "123456789012",
			wantOK:  true,
		},
		{
			name:    "case insensitive",
			pattern: `upi ref:\s*(\d+)`,
			text:    "UPI REF: 42",
			want:    "42",
			wantOK:  true,
		},
		{
			name:    "empty pattern",
			pattern: "",
			text:    "anything",
			wantOK:  false,
		},
		{
			name:    "no match",
			pattern: `Ref:\s*(\d+)`,
			text:    "nothing here",
			wantOK:  false,
		},
		{
			name:    "malformed pattern is a silent no-match",
			pattern: `([`,
			text:    "anything",
			wantOK:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractField(tt.pattern, tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   float64
		wantOK bool
	}{
		{name: "plain", raw: "1234.56", want: 1234.56, wantOK: true},
		{name: "rupee symbol and commas", raw: "₹1,234.56", want: 1234.56, wantOK: true},
		{name: "Rs prefix", raw: "Rs. 500", want: 500, wantOK: true},
		{name: "INR prefix with spaces", raw: "INR 2 000", want: 2000, wantOK: true},
		{name: "zero rejected", raw: "0", wantOK: false},
		{name: "negative rejected", raw: "-50", wantOK: false},
		{name: "garbage rejected", raw: "12x4", wantOK: false},
		{name: "empty rejected", raw: "₹", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseAmount(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.want, got, 0.0001)
			}
		})
	}
}
