package model

import (
	"github.com/m-mizutani/goerr/v2"

	"github.com/inkwell-labs/mnemosyne/pkg/domain/types"
)

// Scope is the retrieval partition for memories: the owning user is
// required, the remaining IDs narrow the candidate set when set.
type Scope struct {
	UserID         types.UserID
	CompanionID    types.CompanionID
	DocumentID     types.DocumentID
	ConversationID types.ConversationID
}

// Validate checks that the scope carries a valid owner
func (s Scope) Validate() error {
	if err := s.UserID.Validate(); err != nil {
		return goerr.Wrap(err, "scope owner is invalid")
	}
	return nil
}

// Filter converts the scope's optional IDs into a memory query filter
func (s Scope) Filter() MemoryFilter {
	return MemoryFilter{
		CompanionID:    s.CompanionID,
		DocumentID:     s.DocumentID,
		ConversationID: s.ConversationID,
	}
}
