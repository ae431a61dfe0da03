// Package moderation screens listing titles and descriptions before they are
// published. Three independent detectors (profanity, spam, suspicious
// content) run over each field and a Moderator folds their findings into a
// scored Verdict with approve / review / auto-reject semantics.
//
// All detectors are pure and hold only immutable state built from a
// Lexicon, so a single Moderator is safe for concurrent use.
package moderation
