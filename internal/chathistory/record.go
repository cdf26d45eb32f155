package chathistory

// Record is one persisted analytics chat interaction. Fields missing from the
// stored item decode to their zero values.
type Record struct {
	Question  string  `dynamodbav:"question" json:"question"`
	SQL       string  `dynamodbav:"sql" json:"sql"`
	Insights  string  `dynamodbav:"insights" json:"insights"`
	Timestamp float64 `dynamodbav:"timestamp" json:"timestamp"`
	UserEmail string  `dynamodbav:"user_email" json:"user_email"`
	SessionID string  `dynamodbav:"session_id" json:"session_id"`
}

// Complete reports whether the record captured a full round trip. The table
// has no status column; a row holding question, generated SQL, and insights is
// the definition of a successful query.
func (r Record) Complete() bool {
	return r.SQL != "" && r.Question != "" && r.Insights != ""
}
