// Package models defines domain entities and persistence interfaces for the task sync engine.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs representing external service data
//   - [Issue] : Jira issue with its raw field tree
//   - [Card] : Trello card metadata
//   - [BoardList] : Trello list (column) on a board
//   - [Member] : Trello board member
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [SyncProfile] : Per-user sync configuration with mapping overrides
//   - [SyncTask] : Ledger row linking a Jira issue to its Trello card
//   - [SyncRun] : Outcome record for a completed sync attempt
//
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
