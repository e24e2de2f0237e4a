// Package source provides use cases for veille feed subscriptions: listing,
// creating and deleting a user's sources and discovering feeds on a page.
package source

import "errors"

// ErrNoFeedFound indicates that a page advertises no RSS, Atom or JSON feed.
var ErrNoFeedFound = errors.New("no feed found on page")
