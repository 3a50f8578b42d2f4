package models

import "time"

// State is a step of a pipeline run.
type State int32

const (
	StateIdle State = iota
	StateFetching
	StateParsing
	StateExtracting
	StateDone
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateParsing:
		return "parsing"
	case StateExtracting:
		return "extracting"
	case StateDone:
		return "done"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Result holds the outcome of a completed pipeline run. Empty is set when
// the page was reachable but no container matched.
type Result struct {
	SourceURL string          `json:"source_url"`
	FinalURL  string          `json:"final_url"`
	Strategy  string          `json:"strategy"`
	Fields    []string        `json:"fields"`
	Records   []ProductRecord `json:"records"`
	Skipped   int             `json:"skipped"`
	Empty     bool            `json:"empty"`
	FetchedAt time.Time       `json:"fetched_at"`
	Duration  time.Duration   `json:"duration"`
}
