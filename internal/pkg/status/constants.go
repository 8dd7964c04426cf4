package status

// Status represents entry processing status
type Status int

const (
	// Processing - initial step, entry row created
	Processing Status = iota + 1
	// Transcribing - transcript saved, analysis pending
	Transcribing
	// Completed - final step
	Completed
	// Failed - pipeline failed after the entry was created
	Failed
)

var (
	statusName = map[Status]string{Processing: "processing", Transcribing: "transcribing",
		Completed: "completed", Failed: "failed"}
	nameStatus = map[string]Status{"processing": Processing, "transcribing": Transcribing,
		"completed": Completed, "failed": Failed}
)

func (st Status) String() string {
	return statusName[st]
}

// From returns status obj from string
func From(st string) Status {
	return nameStatus[st]
}
