package domain

import "time"

// LeaderboardEntry - запись в таблице лидеров, после создания не меняется
type LeaderboardEntry struct {
	// порядковый номер отправки, определяет порядок при равных очках
	Seq         int64      `db:"id" json:"-"`
	Username    string     `db:"username" json:"username"`
	Score       int        `db:"score" json:"score"`
	Difficulty  Difficulty `db:"difficulty" json:"difficulty"`
	SubmittedAt time.Time  `db:"created_at" json:"submitted_at"`
}
