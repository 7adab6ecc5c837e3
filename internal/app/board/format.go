package board

import (
	"fmt"
	"strings"
)

// TimestampLayout is the layout of the trailing "@timestamp" column.
const TimestampLayout = "2006-01-02 15:04:05.000"

// TagListingHeader is the first line of the tag listing.
const TagListingHeader = "Format: #tag (number of times used)"

// FormatLine renders one message as a fixed-width, newline-terminated line.
func FormatLine(m Message) string {
	target := "nobody"
	if m.RepliedTo != "" {
		target = m.RepliedTo
	}

	tag := "[no tag] "
	if m.Tag != "" {
		tag = "[#" + m.Tag + "] "
	}

	return fmt.Sprintf("%-30s%-70s%-10s(%s) @%s\n",
		"<"+m.Author+" @"+target+"> ",
		"\""+m.Contents+"\" ",
		tag,
		m.ID,
		m.CreatedAt.Format(TimestampLayout),
	)
}

// FormatFeed renders messages, already in display order, one line each.
func FormatFeed(msgs []Message) string {
	var b strings.Builder
	for _, m := range msgs {
		b.WriteString(FormatLine(m))
	}
	return b.String()
}

// FormatTags renders the tag listing.
func FormatTags(tags []TagCount) string {
	var b strings.Builder
	b.WriteString(TagListingHeader)
	b.WriteByte('\n')
	for _, t := range tags {
		fmt.Fprintf(&b, "#%s (%d)\n", t.Tag, t.Count)
	}
	return b.String()
}

// displayOrder reverses query results in place. Each result is placed before
// the ones accumulated so far, so newest-first queries display oldest-first.
func displayOrder(msgs []Message) []Message {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs
}
