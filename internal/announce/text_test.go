package announce_test

import (
	"testing"

	"github.com/alnah/podcut/internal/announce"
)

// ---------------------------------------------------------------------------
// Text - File name to spoken words
// ---------------------------------------------------------------------------

func TestText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "underscores and extension", input: "a_b_c.mp3", want: "a b c"},
		{name: "no extension", input: "noext", want: "noext"},
		{name: "dot inside name kept", input: "a.b_c.mp3", want: "a.b c"},
		{name: "chunk name", input: "show_part03.mp3", want: "show part03"},
		{name: "directories ignored", input: "/pods/my_show/ep_1.mp3", want: "ep 1"},
		{name: "only trailing mp3 stripped", input: "mp3_talk.mp3", want: "mp3 talk"},
		{name: "upper-case extension kept", input: "loud_EP.MP3", want: "loud EP.MP3"},
		{name: "other extension kept", input: "interview_1.wav", want: "interview 1.wav"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := announce.Text(tt.input); got != tt.want {
				t.Errorf("Text(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestText_Idempotent(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"a_b_c.mp3", "noext", "a.b_c.mp3", "episode 12"} {
		once := announce.Text(name)
		if twice := announce.Text(once); twice != once {
			t.Errorf("Text(Text(%q)) = %q, want %q", name, twice, once)
		}
	}
}
