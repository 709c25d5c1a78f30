package pipeline

import "git.home.luguber.info/inful/pagebuilder/internal/metrics"

// Outcome classifies what BuildPage did with one content file.
type Outcome int

const (
	// OutcomeBuilt means the page was rendered and cached.
	OutcomeBuilt Outcome = iota
	// OutcomeCached means a byte-identical file was already built.
	OutcomeCached
	// OutcomeInvalid means the frontmatter failed validation.
	OutcomeInvalid
	// OutcomeDraft means the page is a draft and drafts are excluded.
	OutcomeDraft
	// OutcomeFailed means an error stopped the page; see the returned error.
	OutcomeFailed
)

func (o Outcome) String() string {
	return string(o.metric())
}

// Page reports whether the outcome yields a page.
func (o Outcome) Page() bool {
	return o == OutcomeBuilt || o == OutcomeCached
}

func (o Outcome) metric() metrics.PageOutcome {
	switch o {
	case OutcomeBuilt:
		return metrics.PageBuilt
	case OutcomeCached:
		return metrics.PageCached
	case OutcomeInvalid:
		return metrics.PageInvalid
	case OutcomeDraft:
		return metrics.PageDraft
	default:
		return metrics.PageFailed
	}
}
