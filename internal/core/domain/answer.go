package domain

import "time"

// Source is one structured citation backing an answer, derived directly
// from the vector store matches. This list is the authoritative source
// record; any free-text citation inside the answer is a convenience for
// humans.
type Source struct {
	// Path is the relative path of the cited file.
	Path string `json:"path"`

	// Index is the cited chunk's position within the file.
	Index int `json:"idx"`

	// Score is the similarity score of the match.
	Score float64 `json:"score"`
}

// Answer is the result of a grounded question-answering call.
type Answer struct {
	// Text is the synthesized natural-language answer.
	Text string `json:"answer"`

	// Sources lists the retrieved chunks the answer was grounded on,
	// in descending similarity order.
	Sources []Source `json:"sources"`
}

// InteractionRecord is one appended question/answer pair.
// Append-only and best-effort: history must never fail a query that
// otherwise succeeded.
type InteractionRecord struct {
	// ID is the unique record identifier.
	ID string `json:"id"`

	// Namespace is the partition the question was asked against.
	Namespace Namespace `json:"namespace"`

	// Question is the user's question verbatim.
	Question string `json:"question"`

	// Answer is the synthesized answer verbatim.
	Answer string `json:"answer"`

	// CreatedAt is when the interaction happened.
	CreatedAt time.Time `json:"createdAt"`
}
