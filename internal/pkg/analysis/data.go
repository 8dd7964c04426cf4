package analysis

type (

	// Span is a character span in the transcript
	Span struct {
		StartChar int `json:"startChar"`
		EndChar   int `json:"endChar"`
	}

	// Meta keeps transcript level info
	Meta struct {
		Language             string
		WordCount            int
		EstimatedDurationSec *int
	}

	// Mood keeps overall sentiment info
	Mood struct {
		OverallSentiment  float64
		MoodLabel         string
		ToneLabels        []string
		EvidenceStartChar int
		EvidenceEndChar   int
	}

	// Theme - recurring topic with evidence spans
	Theme struct {
		Label      string
		Confidence float64
		Support    []Span
	}

	// Entity - person/project/place/topic mentioned in the transcript
	Entity struct {
		Text          string
		Kind          string
		Aliases       []string
		Mentions      int
		AvgSentiment  float64
		FirstSeenChar int
		LastSeenChar  int
	}

	// Relation - co-occurrence edge between two entities of the same payload,
	// endpoints are entity display texts
	Relation struct {
		A      string
		B      string
		Weight float64
	}

	// Highlight - short extracted quote scored for narrative salience
	Highlight struct {
		Kind             string
		Text             string
		StartChar        int
		EndChar          int
		StartMs          *int
		EndMs            *int
		Salience         float64
		Quotability      float64
		EmotionIntensity float64
	}

	// FollowUp - actionable item extracted from the reflection
	FollowUp struct {
		Title           string
		Why             *string
		DueSuggestion   *string
		SourceStartChar int
		SourceEndChar   int
		Confidence      float64
	}

	// Question the user asked themselves
	Question struct {
		Text      string
		StartChar int
		EndChar   int
	}

	// Digest - one-per-analysis daily snapshot
	Digest struct {
		TopMoments   []string
		Themes       []string
		QuoteOfDay   *string
		TomorrowCues []string
	}

	// QaChunk - verbatim excerpt prepared for retrieval
	QaChunk struct {
		Summary   string
		Text      string
		StartChar int
		EndChar   int
		Keywords  []string
	}

	// Redaction - detected span of likely sensitive text
	Redaction struct {
		Type      string
		Text      string
		StartChar int
		EndChar   int
	}

	// Nudge - suggestion for the next reflection
	Nudge struct {
		Kind string
		Text string
	}

	// Arc - coarse narrative stage classification
	Arc struct {
		Stage     *string
		Rationale *string
	}

	// Result is the canonical analyser payload, all alternate field
	// shapes resolved, safe to hand to persistence
	Result struct {
		Meta       Meta
		Mood       Mood
		Themes     []Theme
		Entities   []Entity
		Relations  []Relation
		Highlights []Highlight
		FollowUps  []FollowUp
		Questions  []Question
		Digest     *Digest
		QaChunks   []QaChunk
		Redactions []Redaction
		Nudges     []Nudge
		Arc        *Arc
	}
)
