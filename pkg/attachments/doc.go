// Package attachments resolves email attachments to files on disk.
//
// Two kinds are supported. Token attachments are comma separated token
// references ("##form_upload##, invoice") whose values name files. Static
// attachments are file ids looked up through a FileFinder. Every path is
// confined to the resolver's root directory; anything missing, outside the root
// or not a regular file is skipped and logged, never returned as an error.
//
//	r, err := attachments.NewResolver("/var/www", store, attachments.WithLogger(log))
//	paths := append(r.TokenAttachments(ctx, lang.AttachmentTokens, toks),
//		r.StaticAttachments(ctx, lang.Attachments)...)
package attachments
