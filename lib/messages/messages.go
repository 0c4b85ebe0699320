package messages

import (
	_ "embed"
	"strings"
	"text/template"
)

var (
	//go:embed notification_footer.txt
	notificationFooterText string
	notificationFooterTmpl = template.Must(template.New("notification_footer.txt").Parse(notificationFooterText))

	//go:embed test_header.txt
	testHeaderText string
)

func mustFillTemplate(tmpl *template.Template, values any) string {
	buf := new(strings.Builder)
	err := tmpl.Execute(buf, values)
	if err != nil {
		return ""
	}
	return buf.String()
}

// NotificationFooter renders the static footer appended to every
// notification. The keyword must already be MarkdownV2-escaped.
func NotificationFooter(keyword string) string {
	return mustFillTemplate(notificationFooterTmpl, struct{ Keyword string }{keyword})
}

// TestHeader is the banner prepended to test notifications.
func TestHeader() string {
	return strings.TrimRight(testHeaderText, "\n")
}
