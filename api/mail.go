package main

import (
	"bytes"
	"html/template"
	"log"

	"github.com/go-mail/mail/v2"
)

type mailer struct {
	dialer *mail.Dialer
	sender string
}

func newMailer(host string, port int, username string, password string, sender string) *mailer {
	dialer := mail.NewDialer(host, port, username, password)
	return &mailer{
		dialer: dialer,
		sender: sender,
	}
}

func (m *mailer) send(to string, tmpl *template.Template, data any) error {
	var subject bytes.Buffer
	err := tmpl.ExecuteTemplate(&subject, "subject", data)
	if err != nil {
		return err
	}
	var plainBody bytes.Buffer
	err = tmpl.ExecuteTemplate(&plainBody, "plainBody", data)
	if err != nil {
		return err
	}
	var htmlBody bytes.Buffer
	err = tmpl.ExecuteTemplate(&htmlBody, "htmlBody", data)
	if err != nil {
		return err
	}

	msg := mail.NewMessage()
	msg.SetHeader("To", to)
	msg.SetHeader("From", m.sender)
	msg.SetHeader("Subject", subject.String())
	msg.SetBody("text/plain", plainBody.String())
	msg.AddAlternative("text/html", htmlBody.String())

	for i := 0; i < 3; i++ {
		err = m.dialer.DialAndSend(msg)
		if err == nil {
			break
		}
	}
	return err
}

var welcomeTmpl = template.Must(template.New("welcome").Parse(`
{{define "subject"}}Welcome to your todo list{{end}}

{{define "plainBody"}}
Hi {{.Username}},

Your account has been created. You are signed in and ready to add tasks.
{{end}}

{{define "htmlBody"}}
<!doctype html>
<html>
<body>
<p>Hi {{.Username}},</p>
<p>Your account has been created. You are signed in and ready to add tasks.</p>
</body>
</html>
{{end}}
`))

// sendWelcomeMail is best effort. A signup never fails because of SMTP,
// and nothing happens when no mailer is configured.
func (app *application) sendWelcomeMail(u *user) {
	if app.mailer == nil {
		return
	}
	email := u.Email
	username := u.Username
	go func() {
		data := struct {
			Username string
		}{Username: username}
		err := app.mailer.send(email, welcomeTmpl, data)
		if err != nil {
			log.Printf("sending welcome mail to %s failed: %v", email, err)
		}
	}()
}
