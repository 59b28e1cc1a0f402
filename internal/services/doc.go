// Package services defines the [Tracker] and [Board] interfaces for the two
// remote task systems and implements them for Jira and Trello.
//
// # Tracker Interface
//
// [JiraService] talks to the Jira Cloud REST API (v3) using basic auth
// (email + API token). Issues are fetched with a JQL project query ordered
// by most recent update. Status changes go through workflow transitions
// rather than field edits, so [Tracker.Transitions] and
// [Tracker.TransitionIssue] are separate operations.
//
// # Board Interface
//
// [TrelloService] talks to the Trello API using key/token query parameters.
// Card writes carry their attributes as query parameters, matching Trello's
// endpoint conventions.
//
// # Rate Limiting
//
// Both clients accept a requests-per-second limit and wait on a
// [rate.Limiter] before each request. The limiter honors context
// cancellation, so an interrupted sync stops promptly.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrMissingCredentials] : incomplete connection settings
//   - [shared.ErrAPIRequest] : HTTP request failed or non-2xx status
//   - [shared.ErrIssueNotFound] / [shared.ErrCardNotFound] : 404 responses
package services
