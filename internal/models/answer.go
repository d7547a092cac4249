package models

// Answer holds the latest graded submission for one (task, user) pair.
// The metadata store enforces uniqueness on that pair; every resubmission
// overwrites the previous attempt.
type Answer struct {
	ID     int64  `db:"id" json:"id"`
	TaskID int64  `db:"task_id" json:"task_id"`
	UserID int64  `db:"user_id" json:"user_id"`
	Query  string `db:"query" json:"query"`
	Result string `db:"result" json:"result"`
	Score  int    `db:"score" json:"score"`
	Time   int64  `db:"time" json:"time"`
}

// Standing is one aggregated leaderboard row. Place is assigned after
// ordering by (total score desc, last time asc) and is strictly increasing,
// ties share nothing.
type Standing struct {
	UserID     int64 `db:"user_id" json:"user_id"`
	TotalScore int   `db:"total_score" json:"total_score"`
	LastTime   int64 `db:"last_time" json:"last_time"`
	Place      int   `json:"place"`
}
