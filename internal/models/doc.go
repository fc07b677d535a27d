// Package models defines the core domain models for Osusu.
//
// # Models
//
//   - Group: a rotating savings circle, persisted as one JSON document
//   - Member, JoinRequest: membership and admission
//   - Voting, VotingRound: governance of the payout order
//   - CollectorAssignment: delegated manual collection
//   - PaymentRecord: contribution ledger entries
//   - User: a registered account that can join groups
//
// # Design Principles
//
// 1. **Documents, not rows**: a Group carries all of its sub-collections so that a whole
// group can be read, transformed and written back as one unit.
// 2. **IDs, not pointers**: relationships use ID strings (member IDs in schedules, votes
// and assignments) so documents serialize without cycles.
// 3. **Derived fields are recomputed**: Status and the admin designation are rebuilt by the
// normalizer and never trusted from storage.
package models
