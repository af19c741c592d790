package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "line breaks and inline tags", in: "Hello<br>World<b>!</b>", want: "Hello\nWorld!"},
		{name: "self closing breaks", in: "a<br/>b<br />c", want: "a\nb\nc"},
		{name: "paragraphs", in: "<p>  Sync failed  </p>", want: "Sync failed"},
		{name: "only a break", in: "<br>", want: ""},
		{name: "plain text", in: "nothing to strip", want: "nothing to strip"},
		{name: "empty", in: "", want: ""},
		{name: "attributes", in: `<a href="https://x.io">link</a>`, want: "link"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripHTML(tt.in))
		})
	}
}
