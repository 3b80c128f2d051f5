package models

// Segment - структурная зона сетки double elimination, соответствует ENUM в БД.
type Segment string

const (
	SegmentWinner Segment = "WINNER"
	SegmentLoser  Segment = "LOSER"
	SegmentFinals Segment = "FINALS"
)

// Round - стадия внутри одного сегмента сетки.
//
// Depth считается от финального раунда своего сегмента (0 = финал сегмента)
// и используется только для топологической математики. Sequence - сквозной
// индекс для отображения. Depth никогда не используется как ключ поиска
// между сегментами: связи между матчами всегда явные ссылки.
type Round struct {
	ID       int     `json:"id" db:"id"`
	StopID   int     `json:"stop_id" db:"stop_id"`
	Segment  Segment `json:"segment" db:"segment"`
	Depth    int     `json:"depth" db:"depth"`
	Sequence int     `json:"sequence" db:"sequence"`
}
