// Package datelocalizer provides the net/http endpoint date fields call to
// turn a stored date list into localized display markup.
//
// The handler accepts POST requests carrying the comma separated dates and an
// anti-forgery token, and answers with an HTML fragment the client script
// drops into the field's display element.
package datelocalizer
