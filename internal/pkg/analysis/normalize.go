package analysis

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/airenas/go-app/pkg/goapp"
)

const (
	maxThemes     = 3
	maxHighlights = 3
	maxFollowUps  = 3
	maxToneLabels = 3

	defaultSalience         = 0.8
	defaultQuotability      = 0.8
	defaultEmotionIntensity = 0.4
)

// raw* types accept both field naming conventions the provider may emit.
// Nothing of them leaves this file - Decode resolves everything to Result.
type (
	rawOutput struct {
		Meta       rawMeta        `json:"meta"`
		Mood       rawMood        `json:"mood"`
		Themes     []rawTheme     `json:"themes"`
		Entities   []rawEntity    `json:"entities"`
		Relations  []rawRelation  `json:"relations"`
		Highlights []rawHighlight `json:"highlights"`
		FollowUps  []rawFollowUp  `json:"followUps"`
		Questions  []rawQuestion  `json:"questionsUserAsked"`
		Digest     *rawDigest     `json:"digest"`
		QaChunks   []rawQaChunk   `json:"qaChunks"`
		Redactions []rawRedaction `json:"redactionCandidates"`
		Nudges     []rawNudge     `json:"nudgeSuggestions"`
		Arc        *rawArc        `json:"arcSignals"`
	}

	rawMeta struct {
		Language             string `json:"language"`
		WordCount            int    `json:"wordCount"`
		EstimatedDurationSec *int   `json:"estimatedDurationSec"`
	}

	rawMood struct {
		OverallSentiment  float64  `json:"overallSentiment"`
		MoodLabel         string   `json:"moodLabel"`
		ToneLabels        []string `json:"toneLabels"`
		Evidence          *Span    `json:"evidence"`
		EvidenceStartChar *int     `json:"evidenceStartChar"`
		EvidenceEndChar   *int     `json:"evidenceEndChar"`
	}

	rawTheme struct {
		Label      string  `json:"label"`
		Confidence float64 `json:"confidence"`
		Support    []Span  `json:"support"`
	}

	rawEntity struct {
		Text          string   `json:"text"`
		Kind          string   `json:"kind"`
		Aliases       []string `json:"aliases"`
		Mentions      int      `json:"mentions"`
		AvgSentiment  float64  `json:"avgSentiment"`
		FirstSeenChar int      `json:"firstSeenChar"`
		LastSeenChar  int      `json:"lastSeenChar"`
	}

	rawRelation struct {
		A         string  `json:"a"`
		B         string  `json:"b"`
		AEntityID string  `json:"aEntityId"`
		BEntityID string  `json:"bEntityId"`
		Weight    float64 `json:"weight"`
	}

	rawScores struct {
		Salience         *float64 `json:"salience"`
		Quotability      *float64 `json:"quotability"`
		EmotionIntensity *float64 `json:"emotionIntensity"`
	}

	rawHighlight struct {
		Kind             string     `json:"kind"`
		Text             string     `json:"text"`
		StartChar        int        `json:"startChar"`
		EndChar          int        `json:"endChar"`
		StartSec         *float64   `json:"startSec"`
		EndSec           *float64   `json:"endSec"`
		StartMs          *int       `json:"startMs"`
		EndMs            *int       `json:"endMs"`
		Scores           *rawScores `json:"scores"`
		Salience         *float64   `json:"salience"`
		Quotability      *float64   `json:"quotability"`
		EmotionIntensity *float64   `json:"emotionIntensity"`
	}

	rawFollowUp struct {
		Title           string  `json:"title"`
		Why             *string `json:"why"`
		DueSuggestion   *string `json:"dueSuggestion"`
		Source          *Span   `json:"source"`
		SourceStartChar *int    `json:"sourceStartChar"`
		SourceEndChar   *int    `json:"sourceEndChar"`
		Confidence      float64 `json:"confidence"`
	}

	rawQuestion struct {
		Text      string `json:"text"`
		StartChar int    `json:"startChar"`
		EndChar   int    `json:"endChar"`
	}

	rawDigest struct {
		TopMoments   []string `json:"topMoments"`
		Themes       []string `json:"themes"`
		QuoteOfDay   *string  `json:"quoteOfDay"`
		TomorrowCues []string `json:"tomorrowCues"`
	}

	rawQaChunk struct {
		Summary   string   `json:"summary"`
		Text      string   `json:"text"`
		StartChar int      `json:"startChar"`
		EndChar   int      `json:"endChar"`
		Keywords  []string `json:"keywords"`
	}

	rawRedaction struct {
		Type      string `json:"type"`
		Text      string `json:"text"`
		StartChar int    `json:"startChar"`
		EndChar   int    `json:"endChar"`
	}

	rawNudge struct {
		Kind string `json:"kind"`
		Text string `json:"text"`
	}

	rawArc struct {
		Stage     *string `json:"stage"`
		Rationale *string `json:"rationale"`
	}
)

// Decode parses analyser output and reconciles alternate field shapes
// into the canonical Result
func Decode(data []byte) (*Result, error) {
	var raw rawOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("can't parse analyser output: %w", err)
	}
	res := &Result{
		Meta: Meta{Language: raw.Meta.Language, WordCount: raw.Meta.WordCount,
			EstimatedDurationSec: raw.Meta.EstimatedDurationSec},
		Mood: Mood{
			OverallSentiment:  raw.Mood.OverallSentiment,
			MoodLabel:         raw.Mood.MoodLabel,
			ToneLabels:        capItems(raw.Mood.ToneLabels, maxToneLabels),
			EvidenceStartChar: takeChar(raw.Mood.EvidenceStartChar, raw.Mood.Evidence, spanStart),
			EvidenceEndChar:   takeChar(raw.Mood.EvidenceEndChar, raw.Mood.Evidence, spanEnd),
		},
	}
	for _, t := range capItems(raw.Themes, maxThemes) {
		res.Themes = append(res.Themes, Theme{Label: t.Label, Confidence: t.Confidence,
			Support: t.Support})
	}
	names := map[string]bool{}
	for _, e := range raw.Entities {
		res.Entities = append(res.Entities, Entity{Text: e.Text, Kind: e.Kind,
			Aliases: e.Aliases, Mentions: e.Mentions, AvgSentiment: e.AvgSentiment,
			FirstSeenChar: e.FirstSeenChar, LastSeenChar: e.LastSeenChar})
		names[e.Text] = true
	}
	seenEdges := map[[2]string]bool{}
	for _, r := range raw.Relations {
		a, b := takeStr(r.AEntityID, r.A), takeStr(r.BEntityID, r.B)
		if a == "" || b == "" {
			goapp.Log.Warn().Msg("skip relation with missing entity name")
			continue
		}
		if !names[a] || !names[b] {
			goapp.Log.Warn().Str("a", goapp.Sanitize(a)).Str("b", goapp.Sanitize(b)).
				Msg("skip relation - no such entity in payload")
			continue
		}
		// one edge per ordered pair, the persisted key is (analysis, a, b)
		if seenEdges[[2]string{a, b}] {
			goapp.Log.Warn().Str("a", goapp.Sanitize(a)).Str("b", goapp.Sanitize(b)).
				Msg("skip duplicate relation")
			continue
		}
		seenEdges[[2]string{a, b}] = true
		res.Relations = append(res.Relations, Relation{A: a, B: b, Weight: r.Weight})
	}
	for _, h := range capItems(raw.Highlights, maxHighlights) {
		res.Highlights = append(res.Highlights, Highlight{
			Kind: h.Kind, Text: h.Text, StartChar: h.StartChar, EndChar: h.EndChar,
			StartMs:          takeMs(h.StartMs, h.StartSec),
			EndMs:            takeMs(h.EndMs, h.EndSec),
			Salience:         takeScore(h.Salience, h.Scores, scoreSalience, defaultSalience),
			Quotability:      takeScore(h.Quotability, h.Scores, scoreQuotability, defaultQuotability),
			EmotionIntensity: takeScore(h.EmotionIntensity, h.Scores, scoreEmotion, defaultEmotionIntensity),
		})
	}
	for _, f := range capItems(raw.FollowUps, maxFollowUps) {
		res.FollowUps = append(res.FollowUps, FollowUp{
			Title: f.Title, Why: f.Why, DueSuggestion: f.DueSuggestion,
			SourceStartChar: takeChar(f.SourceStartChar, f.Source, spanStart),
			SourceEndChar:   takeChar(f.SourceEndChar, f.Source, spanEnd),
			Confidence:      f.Confidence,
		})
	}
	for _, q := range raw.Questions {
		res.Questions = append(res.Questions, Question{Text: q.Text, StartChar: q.StartChar,
			EndChar: q.EndChar})
	}
	if raw.Digest != nil {
		res.Digest = &Digest{TopMoments: raw.Digest.TopMoments, Themes: raw.Digest.Themes,
			QuoteOfDay: raw.Digest.QuoteOfDay, TomorrowCues: raw.Digest.TomorrowCues}
	}
	for _, c := range raw.QaChunks {
		res.QaChunks = append(res.QaChunks, QaChunk{Summary: c.Summary, Text: c.Text,
			StartChar: c.StartChar, EndChar: c.EndChar, Keywords: c.Keywords})
	}
	for _, r := range raw.Redactions {
		res.Redactions = append(res.Redactions, Redaction{Type: r.Type, Text: r.Text,
			StartChar: r.StartChar, EndChar: r.EndChar})
	}
	for _, n := range raw.Nudges {
		res.Nudges = append(res.Nudges, Nudge{Kind: n.Kind, Text: n.Text})
	}
	if raw.Arc != nil {
		res.Arc = &Arc{Stage: raw.Arc.Stage, Rationale: raw.Arc.Rationale}
	}
	return res, nil
}

type spanSide int

const (
	spanStart spanSide = iota
	spanEnd
)

func takeChar(flat *int, nested *Span, side spanSide) int {
	if flat != nil {
		return *flat
	}
	if nested != nil {
		if side == spanStart {
			return nested.StartChar
		}
		return nested.EndChar
	}
	return 0
}

// takeMs prefers millisecond fields, derives from seconds otherwise.
// Rounds - float products like 1.003*1000 land just below the integer.
func takeMs(ms *int, sec *float64) *int {
	if ms != nil {
		return ms
	}
	if sec != nil {
		v := int(math.Round(*sec * 1000))
		return &v
	}
	return nil
}

type scoreKind int

const (
	scoreSalience scoreKind = iota
	scoreQuotability
	scoreEmotion
)

func takeScore(flat *float64, nested *rawScores, kind scoreKind, def float64) float64 {
	if flat != nil {
		return *flat
	}
	if nested != nil {
		var v *float64
		switch kind {
		case scoreSalience:
			v = nested.Salience
		case scoreQuotability:
			v = nested.Quotability
		case scoreEmotion:
			v = nested.EmotionIntensity
		}
		if v != nil {
			return *v
		}
	}
	return def
}

func takeStr(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func capItems[K interface{}](a []K, max int) []K {
	if len(a) > max {
		return a[:max]
	}
	return a
}
