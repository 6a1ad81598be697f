package credo

import (
	"fmt"
	"strings"

	"github.com/nugget/credo-bot/internal/textpolicy"
)

// Header is the first line of every report.
const Header = "【クレド報告】"

// Message is the assembled daily report.
type Message struct {
	Header string
	Author string
	Key    int
	Title  string
	// Body is the insight sentence without its label.
	Body string
}

// Assemble builds the report for entry with the given insight body.
func Assemble(author string, entry Entry, body string) Message {
	return Message{
		Header: Header,
		Author: author,
		Key:    entry.Key,
		Title:  entry.Title,
		Body:   body,
	}
}

// String renders the message exactly as it is posted.
func (m Message) String() string {
	var b strings.Builder
	b.WriteString(m.Header + "\n")
	b.WriteString(m.Author + "\n")
	b.WriteString("＜クレドバリュー＞\n")
	fmt.Fprintf(&b, "%d. %s\n", m.Key, m.Title)
	b.WriteString("＜気づき＞\n")
	b.WriteString(textpolicy.Label + m.Body)
	return b.String()
}
