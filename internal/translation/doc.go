// Package translation provides English to Simplified Chinese translations
// for vocabulary cards. A static table (optionally extended with theme
// wordbank files) serves bulk backfill; the OpenAI backend covers words the
// table does not know. Translations are cached in memory for batch runs.
package translation
