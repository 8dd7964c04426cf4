package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/memora/reflections/internal/pkg/analysis"
	"github.com/memora/reflections/internal/pkg/persistence"
	"github.com/memora/reflections/internal/pkg/utils"
)

type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// InsertAnalysis writes the analysis root row and every dependent
// collection in one transaction. Either the full structured result
// becomes visible or none of it.
func (db *DB) InsertAnalysis(ctx context.Context, entryID string, data *analysis.Result) (*persistence.EntryAnalysis, error) {
	var res *persistence.EntryAnalysis
	err := pgx.BeginFunc(ctx, db.pool, func(tx pgx.Tx) error {
		var err error
		res, err = insertAnalysisTx(ctx, tx, entryID, data)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("can't insert analysis: %w", err)
	}
	return res, nil
}

func insertAnalysisTx(ctx context.Context, tx querier, entryID string, data *analysis.Result) (*persistence.EntryAnalysis, error) {
	now := time.Now()
	root := &persistence.EntryAnalysis{ID: uuid.NewString(), EntryID: entryID,
		Created: now, Updated: now,
		Language: data.Meta.Language, WordCount: data.Meta.WordCount,
		EstimatedDurationSec:  utils.ToSQLInt32Ptr(data.Meta.EstimatedDurationSec),
		OverallSentiment:      data.Mood.OverallSentiment,
		MoodLabel:             data.Mood.MoodLabel,
		ToneLabels:            data.Mood.ToneLabels,
		MoodEvidenceStartChar: data.Mood.EvidenceStartChar,
		MoodEvidenceEndChar:   data.Mood.EvidenceEndChar,
	}
	_, err := tx.Exec(ctx, `INSERT INTO entry_analysis(id, entry_id, created_at, updated_at,
	language, word_count, estimated_duration_sec, overall_sentiment, mood_label,
	tone_labels, mood_evidence_start_char, mood_evidence_end_char)
	VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::tone_label[], $11, $12)`,
		root.ID, root.EntryID, root.Created, root.Updated, root.Language, root.WordCount,
		root.EstimatedDurationSec, root.OverallSentiment, root.MoodLabel, root.ToneLabels,
		root.MoodEvidenceStartChar, root.MoodEvidenceEndChar)
	if err != nil {
		return nil, fmt.Errorf("can't insert entry_analysis: %w", err)
	}
	if err := insertHighlights(ctx, tx, root.ID, data.Highlights); err != nil {
		return nil, err
	}
	if err := insertThemes(ctx, tx, root.ID, data.Themes); err != nil {
		return nil, err
	}
	// entities must be in place before relations - relation endpoints
	// resolve through the id map built here
	entityIDs, err := insertEntities(ctx, tx, root.ID, data.Entities)
	if err != nil {
		return nil, err
	}
	if err := insertRelations(ctx, tx, root.ID, data.Relations, entityIDs); err != nil {
		return nil, err
	}
	if err := insertFollowUps(ctx, tx, root.ID, data.FollowUps); err != nil {
		return nil, err
	}
	if err := insertQuestions(ctx, tx, root.ID, data.Questions); err != nil {
		return nil, err
	}
	if err := insertDigest(ctx, tx, root.ID, data.Digest); err != nil {
		return nil, err
	}
	if err := insertQaChunks(ctx, tx, root.ID, data.QaChunks); err != nil {
		return nil, err
	}
	if err := insertRedactions(ctx, tx, root.ID, data.Redactions); err != nil {
		return nil, err
	}
	if err := insertNudges(ctx, tx, root.ID, data.Nudges); err != nil {
		return nil, err
	}
	if err := insertArc(ctx, tx, root.ID, data.Arc); err != nil {
		return nil, err
	}
	return root, nil
}

func insertHighlights(ctx context.Context, tx querier, analysisID string, items []analysis.Highlight) error {
	for _, h := range items {
		_, err := tx.Exec(ctx, `INSERT INTO analysis_highlight(id, analysis_id, kind, text,
		start_char, end_char, start_ms, end_ms, salience, quotability, emotion_intensity)
		VALUES($1, $2, $3::highlight_kind, $4, $5, $6, $7, $8, $9, $10, $11)`,
			uuid.NewString(), analysisID, h.Kind, h.Text, h.StartChar, h.EndChar,
			utils.ToSQLInt32Ptr(h.StartMs), utils.ToSQLInt32Ptr(h.EndMs),
			h.Salience, h.Quotability, h.EmotionIntensity)
		if err != nil {
			return fmt.Errorf("can't insert analysis_highlight: %w", err)
		}
	}
	return nil
}

func insertThemes(ctx context.Context, tx querier, analysisID string, items []analysis.Theme) error {
	for _, t := range items {
		support, err := json.Marshal(spansOrEmpty(t.Support))
		if err != nil {
			return fmt.Errorf("can't marshal theme support: %w", err)
		}
		_, err = tx.Exec(ctx, `INSERT INTO analysis_theme(id, analysis_id, label, confidence, support)
		VALUES($1, $2, $3, $4, $5)`,
			uuid.NewString(), analysisID, t.Label, t.Confidence, support)
		if err != nil {
			return fmt.Errorf("can't insert analysis_theme: %w", err)
		}
	}
	return nil
}

// insertEntities writes entity rows and builds the display text to
// generated id map used for relation resolution. First seen text wins.
func insertEntities(ctx context.Context, tx querier, analysisID string, items []analysis.Entity) (map[string]string, error) {
	res := map[string]string{}
	for _, e := range items {
		id := uuid.NewString()
		_, err := tx.Exec(ctx, `INSERT INTO analysis_entity(id, analysis_id, text, kind,
		aliases, mentions, avg_sentiment, first_seen_char, last_seen_char)
		VALUES($1, $2, $3, $4::entity_kind, $5, $6, $7, $8, $9)`,
			id, analysisID, e.Text, e.Kind, strsOrEmpty(e.Aliases), e.Mentions,
			e.AvgSentiment, e.FirstSeenChar, e.LastSeenChar)
		if err != nil {
			return nil, fmt.Errorf("can't insert analysis_entity: %w", err)
		}
		if _, ok := res[e.Text]; !ok {
			res[e.Text] = id
		}
	}
	return res, nil
}

func insertRelations(ctx context.Context, tx querier, analysisID string, items []analysis.Relation, entityIDs map[string]string) error {
	for _, r := range items {
		aID, aOK := entityIDs[r.A]
		bID, bOK := entityIDs[r.B]
		if !aOK || !bOK {
			goapp.Log.Warn().Str("a", goapp.Sanitize(r.A)).Str("b", goapp.Sanitize(r.B)).
				Msg("skip relation - can't resolve entity ids")
			continue
		}
		_, err := tx.Exec(ctx, `INSERT INTO analysis_relation(analysis_id, a_entity_id, b_entity_id, weight)
		VALUES($1, $2, $3, $4)`, analysisID, aID, bID, r.Weight)
		if err != nil {
			return fmt.Errorf("can't insert analysis_relation: %w", err)
		}
	}
	return nil
}

func insertFollowUps(ctx context.Context, tx querier, analysisID string, items []analysis.FollowUp) error {
	for _, f := range items {
		_, err := tx.Exec(ctx, `INSERT INTO analysis_follow_up(id, analysis_id, title, why,
		due_suggestion, source_start_char, source_end_char, confidence)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8)`,
			uuid.NewString(), analysisID, f.Title, f.Why, f.DueSuggestion,
			f.SourceStartChar, f.SourceEndChar, f.Confidence)
		if err != nil {
			return fmt.Errorf("can't insert analysis_follow_up: %w", err)
		}
	}
	return nil
}

func insertQuestions(ctx context.Context, tx querier, analysisID string, items []analysis.Question) error {
	for _, q := range items {
		_, err := tx.Exec(ctx, `INSERT INTO analysis_question(id, analysis_id, text, start_char, end_char)
		VALUES($1, $2, $3, $4, $5)`, uuid.NewString(), analysisID, q.Text, q.StartChar, q.EndChar)
		if err != nil {
			return fmt.Errorf("can't insert analysis_question: %w", err)
		}
	}
	return nil
}

func insertDigest(ctx context.Context, tx querier, analysisID string, d *analysis.Digest) error {
	if d == nil {
		return nil
	}
	_, err := tx.Exec(ctx, `INSERT INTO analysis_digest(analysis_id, top_moments, themes,
	quote_of_day, tomorrow_cues) VALUES($1, $2, $3, $4, $5)`,
		analysisID, strsOrEmpty(d.TopMoments), strsOrEmpty(d.Themes), d.QuoteOfDay,
		strsOrEmpty(d.TomorrowCues))
	if err != nil {
		return fmt.Errorf("can't insert analysis_digest: %w", err)
	}
	return nil
}

func insertQaChunks(ctx context.Context, tx querier, analysisID string, items []analysis.QaChunk) error {
	for _, c := range items {
		_, err := tx.Exec(ctx, `INSERT INTO analysis_qa_chunk(id, analysis_id, summary, text,
		start_char, end_char, keywords) VALUES($1, $2, $3, $4, $5, $6, $7)`,
			uuid.NewString(), analysisID, c.Summary, c.Text, c.StartChar, c.EndChar,
			strsOrEmpty(c.Keywords))
		if err != nil {
			return fmt.Errorf("can't insert analysis_qa_chunk: %w", err)
		}
	}
	return nil
}

func insertRedactions(ctx context.Context, tx querier, analysisID string, items []analysis.Redaction) error {
	for _, r := range items {
		_, err := tx.Exec(ctx, `INSERT INTO analysis_redaction(id, analysis_id, type, text,
		start_char, end_char) VALUES($1, $2, $3::redaction_type, $4, $5, $6)`,
			uuid.NewString(), analysisID, r.Type, r.Text, r.StartChar, r.EndChar)
		if err != nil {
			return fmt.Errorf("can't insert analysis_redaction: %w", err)
		}
	}
	return nil
}

func insertNudges(ctx context.Context, tx querier, analysisID string, items []analysis.Nudge) error {
	for _, n := range items {
		_, err := tx.Exec(ctx, `INSERT INTO analysis_nudge(id, analysis_id, kind, text)
		VALUES($1, $2, $3::nudge_kind, $4)`, uuid.NewString(), analysisID, n.Kind, n.Text)
		if err != nil {
			return fmt.Errorf("can't insert analysis_nudge: %w", err)
		}
	}
	return nil
}

func insertArc(ctx context.Context, tx querier, analysisID string, a *analysis.Arc) error {
	if a == nil {
		return nil
	}
	_, err := tx.Exec(ctx, `INSERT INTO analysis_arc(analysis_id, stage, rationale)
	VALUES($1, $2::arc_stage, $3)`, analysisID, a.Stage, a.Rationale)
	if err != nil {
		return fmt.Errorf("can't insert analysis_arc: %w", err)
	}
	return nil
}

func strsOrEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func spansOrEmpty(s []analysis.Span) []analysis.Span {
	if s == nil {
		return []analysis.Span{}
	}
	return s
}
