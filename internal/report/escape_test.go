package report

import (
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeMarkup(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Alpha", "Alpha"},
		{"", ""},
		{"a & b", "a &amp; b"},
		{"<script>", "&lt;script&gt;"},
		{`say "hi"`, "say &quot;hi&quot;"},
		{"it's", "it&#39;s"},
		{"&lt;", "&amp;lt;"},
		{`<a href='x'>&</a>`, "&lt;a href=&#39;x&#39;&gt;&amp;&lt;/a&gt;"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EscapeMarkup(tt.in), tt.in)
	}
}

func TestEscapeDelimited(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Alpha", "Alpha"},
		{"", ""},
		{" padded ", " padded "},
		{"a,b", `"a,b"`},
		{`say "hi"`, `"say ""hi"""`},
		{"two\nlines", "\"two\nlines\""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EscapeDelimited(tt.in), tt.in)
	}
}

func TestEscapeDelimitedRoundTrip(t *testing.T) {
	names := []string{`Acme, Inc.`, `The "Best" Co`, `"quoted", twice ""`, "multi\nline", "plain"}
	for _, name := range names {
		record := "7," + EscapeDelimited(name) + ",10,Admin"
		fields, err := csv.NewReader(strings.NewReader(record)).Read()
		require.NoError(t, err, name)
		require.Len(t, fields, 4, name)
		assert.Equal(t, name, fields[1])
	}
}
