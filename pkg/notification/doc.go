// Package notification dispatches configured notifications through gateways.
//
// A Notification owns Messages; each Message is bound to a GatewayConfig and
// owns one Language variant per language, at most one of them marked as the
// fallback. Manager.Dispatch loads the published messages of a notification
// and hands each one, together with the caller's tokens, to the Gateway
// registered for the message's gateway type:
//
//	m := notification.NewManager(store,
//	    notification.WithGateway(notification.GatewayEmail, emailGateway),
//	    notification.WithDefaultLanguage("en"),
//	    notification.WithManagerLogger(log),
//	)
//	res := m.DispatchLanguage(ctx, "member_registration", toks, "de")
//	if !res.OK() {
//	    log.Warn("notification not sent", "status", res.Status, "reason", res.Message)
//	}
//
// Dispatch never returns an error. Each message yields a Delivery whose State
// follows requested → language_resolved → payload_assembled → sent | failed,
// with the short cuts skipped and language_missing. The overall Status is
// failed if any delivery failed, sent if any was sent, and language_missing
// otherwise. An empty id, an unknown notification or one without published
// messages is skipped. Panicking gateways are recovered and reported as failed.
//
// # Storage
//
// Storage is the read contract. MemoryStorage keeps everything in memory and
// can be seeded from YAML with LoadYAML; pkg/notification/pgstore persists to
// PostgreSQL. CachedStorage puts any cache.Cache (in-process LRU or Redis) in
// front of another Storage.
//
// # Languages
//
// ResolveLanguage picks the exact variant for a code, compared after BCP 47
// canonicalisation ("de_CH" equals "de-ch"), else the fallback variant, else
// ErrLanguageNotFound.
package notification
