package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Fails(t *testing.T) {
	_, err := Decode([]byte("I had a good day {"))
	assert.NotNil(t, err)
	_, err = Decode([]byte(""))
	assert.NotNil(t, err)
}

func TestDecode_Meta(t *testing.T) {
	res, err := Decode([]byte(`{"meta":{"language":"en","wordCount":25,"estimatedDurationSec":12}}`))
	require.Nil(t, err)
	assert.Equal(t, "en", res.Meta.Language)
	assert.Equal(t, 25, res.Meta.WordCount)
	require.NotNil(t, res.Meta.EstimatedDurationSec)
	assert.Equal(t, 12, *res.Meta.EstimatedDurationSec)
	assert.Nil(t, res.Digest)
	assert.Nil(t, res.Arc)
}

func TestDecode_MoodEvidence_FlatAndNested(t *testing.T) {
	flat, err := Decode([]byte(`{"mood":{"overallSentiment":0.4,"moodLabel":"balanced",
		"toneLabels":["calm"],"evidenceStartChar":10,"evidenceEndChar":42}}`))
	require.Nil(t, err)
	nested, err := Decode([]byte(`{"mood":{"overallSentiment":0.4,"moodLabel":"balanced",
		"toneLabels":["calm"],"evidence":{"startChar":10,"endChar":42}}}`))
	require.Nil(t, err)
	assert.Equal(t, flat, nested)
	assert.Equal(t, 10, flat.Mood.EvidenceStartChar)
	assert.Equal(t, 42, flat.Mood.EvidenceEndChar)
}

func TestDecode_Highlight_MsFromSec(t *testing.T) {
	res, err := Decode([]byte(`{"highlights":[{"kind":"quote","text":"I ran 5k at lunch",
		"startChar":22,"endChar":39,"startSec":8.8,"endSec":22.2,
		"scores":{"salience":0.9,"quotability":0.7,"emotionIntensity":0.5}},
		{"kind":"quote","text":"t","startChar":0,"endChar":1,"startSec":1.003,"endSec":2.5}]}`))
	require.Nil(t, err)
	require.Equal(t, 2, len(res.Highlights))
	h := res.Highlights[0]
	require.NotNil(t, h.StartMs)
	require.NotNil(t, h.EndMs)
	assert.Equal(t, 8800, *h.StartMs)
	assert.Equal(t, 22200, *h.EndMs)
	assert.Equal(t, 0.9, h.Salience)
	assert.Equal(t, 0.7, h.Quotability)
	assert.Equal(t, 0.5, h.EmotionIntensity)
	assert.Equal(t, 1003, *res.Highlights[1].StartMs)
	assert.Equal(t, 2500, *res.Highlights[1].EndMs)
}

func TestDecode_Highlight_MsFromSec_Rounds(t *testing.T) {
	tests := []struct {
		name string
		sec  float64
		want int
	}{
		{name: "below integer", sec: 1.003, want: 1003},
		{name: "clean", sec: 2.3, want: 2300},
		{name: "half up", sec: 0.0015, want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := takeMs(nil, &tt.sec)
			require.NotNil(t, res)
			assert.Equal(t, tt.want, *res)
		})
	}
}

func TestDecode_Highlight_MsPriority(t *testing.T) {
	res, err := Decode([]byte(`{"highlights":[{"kind":"quote","text":"t","startChar":0,"endChar":1,
		"startSec":8.8,"endSec":22.2,"startMs":9000,"endMs":23000}]}`))
	require.Nil(t, err)
	assert.Equal(t, 9000, *res.Highlights[0].StartMs)
	assert.Equal(t, 23000, *res.Highlights[0].EndMs)
}

func TestDecode_Highlight_NoTimes(t *testing.T) {
	res, err := Decode([]byte(`{"highlights":[{"kind":"quote","text":"t","startChar":0,"endChar":1}]}`))
	require.Nil(t, err)
	assert.Nil(t, res.Highlights[0].StartMs)
	assert.Nil(t, res.Highlights[0].EndMs)
	assert.Equal(t, 0.8, res.Highlights[0].Salience)
	assert.Equal(t, 0.8, res.Highlights[0].Quotability)
	assert.Equal(t, 0.4, res.Highlights[0].EmotionIntensity)
}

func TestDecode_Highlight_FlatScoresEqualNested(t *testing.T) {
	flat, err := Decode([]byte(`{"highlights":[{"kind":"quote","text":"t","startChar":0,"endChar":1,
		"salience":0.9,"quotability":0.7,"emotionIntensity":0.5}]}`))
	require.Nil(t, err)
	nested, err := Decode([]byte(`{"highlights":[{"kind":"quote","text":"t","startChar":0,"endChar":1,
		"scores":{"salience":0.9,"quotability":0.7,"emotionIntensity":0.5}}]}`))
	require.Nil(t, err)
	assert.Equal(t, flat, nested)
}

func TestDecode_Relations(t *testing.T) {
	res, err := Decode([]byte(`{
		"entities":[
			{"text":"Elena","kind":"person","mentions":1,"avgSentiment":0.2,"firstSeenChar":60,"lastSeenChar":65},
			{"text":"Apollo","kind":"project","mentions":2,"avgSentiment":-0.1,"firstSeenChar":72,"lastSeenChar":110}],
		"relations":[
			{"a":"Elena","b":"Apollo","weight":0.8},
			{"a":"Elena","b":"Zeus","weight":0.3},
			{"b":"Apollo","weight":0.3}]}`))
	require.Nil(t, err)
	require.Equal(t, 1, len(res.Relations))
	assert.Equal(t, Relation{A: "Elena", B: "Apollo", Weight: 0.8}, res.Relations[0])
}

func TestDecode_Relations_DropsDuplicateEdges(t *testing.T) {
	res, err := Decode([]byte(`{
		"entities":[{"text":"Elena","kind":"person"},{"text":"Apollo","kind":"project"}],
		"relations":[
			{"a":"Elena","b":"Apollo","weight":0.8},
			{"a":"Elena","b":"Apollo","weight":0.3},
			{"a":"Apollo","b":"Elena","weight":0.5}]}`))
	require.Nil(t, err)
	require.Equal(t, 2, len(res.Relations))
	assert.Equal(t, Relation{A: "Elena", B: "Apollo", Weight: 0.8}, res.Relations[0])
	assert.Equal(t, Relation{A: "Apollo", B: "Elena", Weight: 0.5}, res.Relations[1])
}

func TestDecode_Relations_EntityIDConvention(t *testing.T) {
	res, err := Decode([]byte(`{
		"entities":[{"text":"Elena","kind":"person"},{"text":"Apollo","kind":"project"}],
		"relations":[{"aEntityId":"Elena","bEntityId":"Apollo","weight":0.8}]}`))
	require.Nil(t, err)
	require.Equal(t, 1, len(res.Relations))
	assert.Equal(t, Relation{A: "Elena", B: "Apollo", Weight: 0.8}, res.Relations[0])
}

func TestDecode_FollowUp_SourceFlatAndNested(t *testing.T) {
	flat, err := Decode([]byte(`{"followUps":[{"title":"Check deadline","why":"worried",
		"dueSuggestion":"tomorrow morning","sourceStartChar":80,"sourceEndChar":120,"confidence":0.9}]}`))
	require.Nil(t, err)
	nested, err := Decode([]byte(`{"followUps":[{"title":"Check deadline","why":"worried",
		"dueSuggestion":"tomorrow morning","source":{"startChar":80,"endChar":120},"confidence":0.9}]}`))
	require.Nil(t, err)
	assert.Equal(t, flat, nested)
	assert.Equal(t, 80, flat.FollowUps[0].SourceStartChar)
	assert.Equal(t, 120, flat.FollowUps[0].SourceEndChar)
	require.NotNil(t, flat.FollowUps[0].Why)
	assert.Equal(t, "worried", *flat.FollowUps[0].Why)
}

func TestDecode_FollowUp_NullableFields(t *testing.T) {
	res, err := Decode([]byte(`{"followUps":[{"title":"Run again","why":null,"dueSuggestion":null,"confidence":0.5}]}`))
	require.Nil(t, err)
	assert.Nil(t, res.FollowUps[0].Why)
	assert.Nil(t, res.FollowUps[0].DueSuggestion)
	assert.Equal(t, 0, res.FollowUps[0].SourceStartChar)
}

func TestDecode_Caps(t *testing.T) {
	res, err := Decode([]byte(`{
		"mood":{"toneLabels":["calm","tired","curious","stressed"]},
		"themes":[{"label":"a"},{"label":"b"},{"label":"c"},{"label":"d"}],
		"highlights":[{"text":"1"},{"text":"2"},{"text":"3"},{"text":"4"}],
		"followUps":[{"title":"1"},{"title":"2"},{"title":"3"},{"title":"4"}]}`))
	require.Nil(t, err)
	assert.Equal(t, 3, len(res.Mood.ToneLabels))
	assert.Equal(t, 3, len(res.Themes))
	assert.Equal(t, 3, len(res.Highlights))
	assert.Equal(t, 3, len(res.FollowUps))
}

func TestDecode_DigestAndArc(t *testing.T) {
	res, err := Decode([]byte(`{
		"digest":{"topMoments":["ran 5k"],"themes":["running"],"quoteOfDay":"Today was pretty good","tomorrowCues":["check deadline"]},
		"arcSignals":{"stage":"tension","rationale":"worried about the deadline"}}`))
	require.Nil(t, err)
	require.NotNil(t, res.Digest)
	assert.Equal(t, []string{"ran 5k"}, res.Digest.TopMoments)
	require.NotNil(t, res.Digest.QuoteOfDay)
	require.NotNil(t, res.Arc)
	require.NotNil(t, res.Arc.Stage)
	assert.Equal(t, "tension", *res.Arc.Stage)
}

func TestDecode_ArcNullStage(t *testing.T) {
	res, err := Decode([]byte(`{"arcSignals":{"stage":null,"rationale":null}}`))
	require.Nil(t, err)
	require.NotNil(t, res.Arc)
	assert.Nil(t, res.Arc.Stage)
	assert.Nil(t, res.Arc.Rationale)
}
