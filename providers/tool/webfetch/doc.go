// Package webfetch provides a tool that fetches web pages and converts their
// HTML content to Markdown for consumption by a language model.
package webfetch
