// Package expand renders notification template text against a token store.
//
// Two kinds of markup are understood:
//
//   - placeholders: ##token_name## is replaced with the token value; unknown tokens
//     render as an empty string.
//   - conditional blocks: {if COND}...{elseif COND}...{else}...{endif}, nestable.
//
// Expansion never fails. Malformed conditional markup is dropped instead of aborting
// the render, so an admin typo cannot block a delivery: stray {elseif}, {else} and
// {endif} tags disappear, and a block that is never closed keeps only its first branch.
//
// # Flags
//
// NoTags skips conditional blocks and strips HTML markup from substituted token values;
// it is meant for plain-text fields. NoBreaks folds line breaks in the final output into
// single spaces, which keeps header fields such as subject or sender on one line.
//
//	subject := expand.Expand(lang.Subject, toks, expand.NoTags|expand.NoBreaks)
//	text := expand.Expand(lang.Text, toks, expand.NoTags)
//	html := expand.Expand(lang.HTML, toks, 0)
//
// # Conditions
//
// Conditions reference tokens by bare name or as placeholders and support the
// comparison operators == != === !== < <= > >=, the logical operators && || ! (and the
// keywords and/or), parentheses and string, number, true/false/null literals:
//
//	{if member_gender=="female"}Dear Mrs.{elseif member_gender=="male"}Dear Mr.{else}Hello{endif}
//	{if order_total >= 100 && country != "CH"}Free shipping!{endif}
//
// Values are compared numerically when both sides are numbers and as strings otherwise.
// A condition that cannot be parsed is false. HTML entities in a condition are decoded
// before parsing.
//
// # Recursion
//
// When a token value itself contains markup, the result is expanded again, at most
// MaxDepth rounds in total, so cyclic token values still terminate. Placeholders left
// over after the last round are removed.
package expand
