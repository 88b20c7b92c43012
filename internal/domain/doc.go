// Package domain contains the core entities of the action deck: the action
// cards shown to the user, the ledger entries written when a card is
// completed, and the persisted progress counters. It has no knowledge of
// storage, transport, or presentation.
package domain
