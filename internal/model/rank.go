package model

// Rank is a gamification tier derived from cumulative points.
type Rank struct {
	Name      string `json:"name"`
	Badge     string `json:"badge"`
	Threshold int    `json:"threshold"`
}

// Ranks is ordered by ascending threshold. RankFor depends on that order.
var Ranks = []Rank{
	{Name: "Beginner", Badge: "🔰", Threshold: 0},
	{Name: "Committed", Badge: "🥉", Threshold: 50},
	{Name: "Dedicated", Badge: "🥈", Threshold: 200},
	{Name: "Champion", Badge: "🥇", Threshold: 800},
	{Name: "Legend", Badge: "💎", Threshold: 2000},
}

// RankFor returns the highest tier whose threshold does not exceed points.
func RankFor(points int) Rank {
	current := Ranks[0]
	for _, rank := range Ranks {
		if points < rank.Threshold {
			break
		}
		current = rank
	}
	return current
}

// NextRank returns the tier after the one points falls in, or nil at the top.
func NextRank(points int) *Rank {
	for i := range Ranks {
		if points < Ranks[i].Threshold {
			return &Ranks[i]
		}
	}
	return nil
}
