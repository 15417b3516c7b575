package mailer

import (
	"bytes"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/pkg/errors"
)

// InvitationData 邀请邮件模板数据
type InvitationData struct {
	CandidateName string
	Position      string
	Company       string
	Score         int
	InterviewDate time.Time
	Duration      int
	Link          string
	ExpiresAt     time.Time
}

// ReminderData 提醒邮件模板数据
type ReminderData struct {
	CandidateName string
	Position      string
	Company       string
	InterviewDate time.Time
	MinutesLeft   int
	Link          string
}

const dateLayout = "Mon, 02 Jan 2006 15:04 MST"

var funcs = map[string]any{
	"date": func(t time.Time) string { return t.Format(dateLayout) },
}

const invitationText = `Hello {{.CandidateName}},

We reviewed your application and would like to invite you to an interview for the position
{{.Position}} at {{.Company}}.
{{- if gt .Score 0}}
Your match score: {{.Score}}%
{{- end}}

When:     {{date .InterviewDate}}
Duration: {{.Duration}} minutes
Format:   audio interview with our AI interviewer

Join here: {{.Link}}

The room opens 15 minutes before the scheduled time.
This link is personal and valid until {{date .ExpiresAt}}.

Good luck!
{{.Company}} HR team
`

const invitationHTML = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>Interview invitation</title></head>
<body style="font-family:sans-serif;line-height:1.6;color:#333;max-width:600px;margin:0 auto;padding:20px">
<h2>Hello, {{.CandidateName}}!</h2>
<p>We reviewed your application and would like to invite you to an interview for the position:</p>
<div style="background:#f0f9ff;border-left:4px solid #1B4F8C;padding:16px">
<h3>{{.Position}}</h3>
<p><strong>Company:</strong> {{.Company}}</p>
{{- if gt .Score 0}}
<p><strong>Match score:</strong> {{.Score}}%</p>
{{- end}}
</div>
<ul>
<li>When: {{date .InterviewDate}}</li>
<li>Duration: {{.Duration}} minutes</li>
<li>Format: audio interview with our AI interviewer</li>
</ul>
<p style="text-align:center"><a href="{{.Link}}" style="background:#1B4F8C;color:#fff;padding:12px 24px;border-radius:8px;text-decoration:none">Join the interview</a></p>
<p>The room opens 15 minutes before the scheduled time. This link is personal and valid until {{date .ExpiresAt}}.</p>
<p>Good luck!<br><strong>{{.Company}} HR team</strong></p>
</body>
</html>
`

const reminderText = `Hello {{.CandidateName}},

Your interview for {{.Position}} at {{.Company}} starts in {{.MinutesLeft}} minutes ({{date .InterviewDate}}).

Join here: {{.Link}}

{{.Company}} HR team
`

var (
	invitationTextTpl = texttemplate.Must(texttemplate.New("invitation.txt").Funcs(funcs).Parse(invitationText))
	invitationHTMLTpl = htmltemplate.Must(htmltemplate.New("invitation.html").Funcs(funcs).Parse(invitationHTML))
	reminderTextTpl   = texttemplate.Must(texttemplate.New("reminder.txt").Funcs(funcs).Parse(reminderText))
)

func render(name string, exec func(*bytes.Buffer) error) (string, error) {
	var buf bytes.Buffer
	if err := exec(&buf); err != nil {
		return "", errors.Wrapf(err, "render %s", name)
	}
	return buf.String(), nil
}

// InvitationMessage 渲染邀请邮件
func InvitationMessage(to string, d InvitationData) (Message, error) {
	text, err := render("invitation.txt", func(b *bytes.Buffer) error { return invitationTextTpl.Execute(b, d) })
	if err != nil {
		return Message{}, err
	}
	html, err := render("invitation.html", func(b *bytes.Buffer) error { return invitationHTMLTpl.Execute(b, d) })
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		ToName:  d.CandidateName,
		Subject: "Interview invitation - " + strings.TrimSpace(d.Position),
		Text:    text,
		HTML:    html,
	}, nil
}

// ReminderMessage 渲染提醒邮件（仅纯文本）
func ReminderMessage(to string, d ReminderData) (Message, error) {
	text, err := render("reminder.txt", func(b *bytes.Buffer) error { return reminderTextTpl.Execute(b, d) })
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		ToName:  d.CandidateName,
		Subject: "Reminder: your interview starts soon - " + strings.TrimSpace(d.Position),
		Text:    text,
	}, nil
}
