// Package validator provides small composable validation rules.
//
// A Rule pairs a check with the error reported when the check fails. Apply runs
// a set of rules and returns ValidationErrors listing every failed field:
//
//	err := validator.Apply(
//		validator.Required("subject", p.Subject),
//		validator.ValidEmail("from", p.From),
//		validator.InRange("priority", p.Priority, 1, 5),
//	)
//
// Email checks follow net/mail parsing with a few stricter rules for typical
// web addresses (dotted domain, no empty labels). ParseAddress additionally
// accepts the friendly "Name <address>" form used in recipient lists.
package validator
