// Package prompt fills a meta box from the terminal. Fields are asked in
// declaration order, skipping those hidden by visibility rules given the
// answers so far, and the collected form goes through the same sanitizer a
// browser submission would.
package prompt
