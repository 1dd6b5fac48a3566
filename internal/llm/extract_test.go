package llm

import (
	"testing"
)

func TestExtractJSONPayload(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		reply string
		want  string
	}{
		{
			name:  "BareJSON",
			reply: `{"topic": "pgx pooling"}`,
			want:  `{"topic": "pgx pooling"}`,
		},
		{
			name:  "JSONFence",
			reply: "Here is my choice:\n```json\n{\"topic\": \"pgx pooling\"}\n```\nHope that helps.",
			want:  `{"topic": "pgx pooling"}`,
		},
		{
			name:  "PlainFence",
			reply: "```\n{\"topic\": \"pgx pooling\"}\n```",
			want:  `{"topic": "pgx pooling"}`,
		},
		{
			name:  "SurroundingWhitespace",
			reply: "\n\n  {\"a\": 1}  \n",
			want:  `{"a": 1}`,
		},
		{
			name:  "UnclosedFenceFallsThrough",
			reply: "```json\n{\"a\": 1}",
			want:  "```json\n{\"a\": 1}",
		},
		{
			name:  "NotJSONAtAll",
			reply: "I'd rather talk about something else.",
			want:  "I'd rather talk about something else.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSONPayload(tt.reply); got != tt.want {
				t.Errorf("ExtractJSONPayload() = %q, want %q", got, tt.want)
			}
		})
	}
}
