package chat

import (
	"github.com/commercekit/shopchat/models"
)

// State is one node of the conversation state machine. The set is closed:
// every turn walks Start → Classify → {Reject | Retrieve → Generate | Generate} → End.
type State string

const (
	StateStart    State = "start"
	StateClassify State = "classify"
	StateRetrieve State = "retrieve"
	StateGenerate State = "generate"
	StateReject   State = "reject"
	StateEnd      State = "end"
)

// route decides the state after classification. Deterministic, no ties:
// out-of-domain queries are rejected, follow-ups skip retrieval because the
// context they reference is already in history, everything else retrieves.
func route(c models.ClassificationResult) State {
	if !c.IsEcommerce {
		return StateReject
	}
	if c.IsFollowUp {
		return StateGenerate
	}
	return StateRetrieve
}

// KnowledgeContext maps a source name to its ranked snippets for one turn.
// A key is present only for sources that were queried and returned something;
// a queried-but-empty source contributes no key at all.
type KnowledgeContext map[string][]string

// TurnState is the orchestrator's working record for a single request. It is
// owned by exactly one request and never shared.
type TurnState struct {
	ID             string
	UserID         string
	Query          string
	RetrievalQuery string
	Classification models.ClassificationResult
	History        []models.Exchange
	Context        KnowledgeContext
	Answer         string

	// Notes collects non-fatal failures keyed by stage or source name.
	// Diagnostics only; never surfaced to the caller.
	Notes map[string]string
}
