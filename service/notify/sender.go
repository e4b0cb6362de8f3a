package notify

import "gopkg.in/gomail.v2"

// Sender is the fire-and-forget mail transport. Implementations must not
// block callers beyond a single send attempt; failures are the caller's to
// log, never to retry.
type Sender interface {
	Send(to, subject, body string) error
}

type smtpSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(host string, port int, username, password, from string) Sender {
	return &smtpSender{dialer: gomail.NewDialer(host, port, username, password), from: from}
}

func (s *smtpSender) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	return s.dialer.DialAndSend(m)
}
