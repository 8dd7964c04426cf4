package persistence

import (
	"database/sql"
	"time"
)

type (

	// Entry table - one ingested voice recording
	Entry struct {
		ID               string
		UserID           string
		Created          time.Time
		Updated          time.Time
		Deleted          sql.NullTime
		FilePath         string
		PublicURL        string
		Bucket           sql.NullString
		OriginalFileName string
		FileSize         sql.NullInt32
		FileDuration     sql.NullInt32
		Language         string
		IsPrivate        bool
		Status           string
	}

	// EntryTranscript table - raw transcript text for one entry
	EntryTranscript struct {
		ID         string
		EntryID    string
		Created    time.Time
		Updated    time.Time
		Transcript string
		Language   string
		Confidence float64
	}

	// EntryAnalysis table - root row of one structured analysis result
	EntryAnalysis struct {
		ID                    string
		EntryID               string
		Created               time.Time
		Updated               time.Time
		Language              string
		WordCount             int
		EstimatedDurationSec  sql.NullInt32
		OverallSentiment      float64
		MoodLabel             string
		ToneLabels            []string
		MoodEvidenceStartChar int
		MoodEvidenceEndChar   int
	}

	// Session table - better-auth session row used for identity resolution
	Session struct {
		Token   string
		UserID  string
		Expires time.Time
	}
)
