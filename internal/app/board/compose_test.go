package board

import (
	"strings"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		raw  string
		want Parsed
	}{
		{"Hello world", Parsed{Body: "Hello world"}},
		{"@Alice nice!", Parsed{RepliedTo: "alice", Body: "nice!"}},
		{"#Funny knock knock", Parsed{Tag: "funny", Body: "knock knock"}},
		{"*private just for you", Parsed{Private: true, Body: "just for you"}},
		{"@bob #go *PRIVATE  see   you", Parsed{RepliedTo: "bob", Tag: "go", Private: true, Body: "see   you"}},
		// Out of order markers stay in the body.
		{"#go @bob hi", Parsed{Tag: "go", Body: "@bob hi"}},
		{"*private #go hi", Parsed{Private: true, Body: "#go hi"}},
		{"@ lonely at", Parsed{Body: "@ lonely at"}},
		{"# not a tag", Parsed{Body: "# not a tag"}},
		{"*privately speaking", Parsed{Body: "*privately speaking"}},
		{"  @bob  ", Parsed{RepliedTo: "bob"}},
		{"", Parsed{}},
	}

	for _, tt := range tests {
		if got := Parse(tt.raw); got != tt.want {
			t.Errorf("Parse(%q) = %+v, want %+v", tt.raw, got, tt.want)
		}
	}
}

func TestNormalizeTag(t *testing.T) {
	for in, want := range map[string]string{"#Funny": "funny", "funny": "funny", " #a ": "a", "#": ""} {
		if got := NormalizeTag(in); got != want {
			t.Errorf("NormalizeTag(%q) = %q, want %q", in, got, want)
		}
	}
}

func pad(s string, width int) string {
	return s + strings.Repeat(" ", width-len(s))
}

func TestFormatLine(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 45, 120_000_000, time.UTC)

	plain := Message{ID: "alice_1", Author: "alice", Contents: "Hello world", CreatedAt: ts}
	want := pad("<alice @nobody> ", 30) + pad(`"Hello world" `, 70) + pad("[no tag] ", 10) +
		"(alice_1) @2024-03-01 12:30:45.120\n"
	if got := FormatLine(plain); got != want {
		t.Errorf("FormatLine =\n%q\nwant\n%q", got, want)
	}

	reply := Message{ID: "alice_1", Author: "bob", RepliedTo: "alice", IsReply: true, Tag: "go", Contents: "nice!", CreatedAt: ts}
	want = pad("<bob @alice> ", 30) + pad(`"nice!" `, 70) + pad("[#go] ", 10) +
		"(alice_1) @2024-03-01 12:30:45.120\n"
	if got := FormatLine(reply); got != want {
		t.Errorf("FormatLine =\n%q\nwant\n%q", got, want)
	}
}

func TestFormatTags(t *testing.T) {
	got := FormatTags([]TagCount{{Tag: "a", Count: 2}, {Tag: "b", Count: 1}})
	want := "Format: #tag (number of times used)\n#a (2)\n#b (1)\n"
	if got != want {
		t.Errorf("FormatTags = %q, want %q", got, want)
	}
}

func TestDisplayOrderReverses(t *testing.T) {
	msgs := displayOrder([]Message{{ID: "3"}, {ID: "2"}, {ID: "1"}})
	if msgs[0].ID != "1" || msgs[2].ID != "3" {
		t.Errorf("displayOrder = %+v", msgs)
	}
	if len(displayOrder(nil)) != 0 {
		t.Error("nil input")
	}
}
