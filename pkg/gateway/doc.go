// Package gateway contains the delivery channels plugged into notification.Manager.
//
// Email renders the language variant of a message (header fields and text body
// with HTML stripped from token values, the HTML body wrapped in a layout and
// fully expanded), makes relative links absolute against the site base URL,
// compiles recipients and attachments, and hands the result to an
// email.EmailSender. A per-gateway SMTP override travels with the send
// parameters, so concurrent dispatches never share transport settings.
//
//	gw := gateway.NewEmail(cfg, store, sender,
//		gateway.WithAttachments(resolver),
//		gateway.WithEmailLogger(log),
//	)
//	manager := notification.NewManager(store, notification.WithGateway(notification.GatewayEmail, gw))
package gateway
