// Package models defines the persisted domain models for settleup.
//
// # Models
//
//   - Member: a participant identity (also the login account)
//   - Group: a named set of members that share expenses
//   - Expense: an expense record with payers, beneficiaries and a split payload
//   - Settlement: a recorded real-world payment between two members
//
// # Design Principles
//
//  1. Relationships are ID strings, never pointers
//  2. Money is decimal.Decimal, never float64
//  3. Expense stores its split payload flattened (method + amounts + items);
//     the calculator package turns it back into a typed payload
package models
