package markdown

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "plain paragraph",
			source: "hello world",
			want:   "hello world",
		},
		{
			name:   "strips emphasis",
			source: "a **bold** and *italic* day",
			want:   "a bold and italic day",
		},
		{
			name:   "heading and paragraph",
			source: "# Morning\n\nSlept well.",
			want:   "Morning\nSlept well.",
		},
		{
			name:   "link keeps label",
			source: "read [this article](https://example.com) later",
			want:   "read this article later",
		},
		{
			name:   "empty",
			source: "",
			want:   "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, PlainText(tt.source))
		})
	}
}

func TestWordCount(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   int
	}{
		{name: "empty", source: "", want: 0},
		{name: "whitespace only", source: "  \n\t ", want: 0},
		{name: "simple", source: "one two three", want: 3},
		{name: "markdown markers not counted", source: "# Title\n\n- item one\n- item two", want: 5},
		{name: "collapsed whitespace", source: "a  b\n\nc", want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, WordCount(tt.source))
		})
	}
}
