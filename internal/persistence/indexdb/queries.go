package indexdb

import "context"

type LeaderboardRow struct {
	Entity uint64  `json:"entity"`
	Name   string  `json:"name"`
	Hits   int     `json:"hits"`
	Damage float64 `json:"damage"`
}

// Leaderboard ranks shooters by hits landed, then damage dealt.
func (s *SQLiteIndex) Leaderboard(ctx context.Context, limit int) ([]LeaderboardRow, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.origin, COALESCE(j.name, ''), COUNT(*), SUM(a.damage)
		FROM attacks a
		LEFT JOIN joins j ON j.entity = a.origin
		GROUP BY a.origin
		ORDER BY COUNT(*) DESC, SUM(a.damage) DESC, a.origin ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LeaderboardRow
	for rows.Next() {
		var r LeaderboardRow
		var origin int64
		if err := rows.Scan(&origin, &r.Name, &r.Hits, &r.Damage); err != nil {
			return nil, err
		}
		r.Entity = uint64(origin)
		out = append(out, r)
	}
	return out, rows.Err()
}

// ArrowsFired counts ammo consumed by actor.
func (s *SQLiteIndex) ArrowsFired(ctx context.Context, actor uint64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM audits WHERE actor = ? AND action = 'CONSUME_ITEM' AND item = 'ARROW'`,
		int64(actor)).Scan(&n)
	return n, err
}
