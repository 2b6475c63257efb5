// Package email sends rendered notifications through a pluggable transport.
//
// Every transport implements EmailSender and validates SendEmailParams before
// doing any I/O. Three transports are available:
//   - SMTP (gopkg.in/mail.v2) with optional per-message SMTPOverride
//   - Postmark's transactional API
//   - DevSender, which writes messages to a local directory
//
// # Usage
//
//	sender, err := email.New(email.Config{
//	    Transport: email.TransportSMTP,
//	    SMTPHost:  "smtp.example.com",
//	    SMTPPort:  587,
//	})
//	if err != nil {
//	    return err
//	}
//
//	err = sender.SendEmail(ctx, email.SendEmailParams{
//	    From:     "noreply@example.com",
//	    FromName: "Example",
//	    To:       []string{"Jane <jane@example.com>"},
//	    Subject:  "Welcome",
//	    BodyText: "Hello Jane",
//	    BodyHTML: "<p>Hello Jane</p>",
//	    Priority: email.PriorityHigh,
//	})
//
// SMTPOverride is copied into the params of a single send, so one message can
// use a different server without touching the shared sender.
//
// # Error Handling
//
//   - ErrInvalidConfig: transport configuration is incomplete
//   - ErrInvalidParams: SendEmailParams failed validation
//   - ErrFailedToSendEmail: the transport rejected or failed the delivery
//   - ErrUnknownTransport: Config.Transport names no known transport
//
// The templates subpackage renders named HTML layouts around message bodies.
package email
