package domain

// Ban marks a subject as blocked from opening tickets and submitting
// feedback.
type Ban struct {
	SubjectID int64
	Reason    string
}
