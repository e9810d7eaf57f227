package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankFor(t *testing.T) {
	tests := []struct {
		points int
		want   string
	}{
		{0, "Beginner"},
		{49, "Beginner"},
		{50, "Committed"},
		{199, "Committed"},
		{200, "Dedicated"},
		{799, "Dedicated"},
		{800, "Champion"},
		{1999, "Champion"},
		{2000, "Legend"},
		{999999, "Legend"},
	}

	for _, tt := range tests {
		rank := RankFor(tt.points)
		assert.Equal(t, tt.want, rank.Name, "points=%d", tt.points)
	}
}

func TestNextRank(t *testing.T) {
	next := NextRank(0)
	require.NotNil(t, next)
	assert.Equal(t, "Committed", next.Name)
	assert.Equal(t, 50, next.Threshold)

	next = NextRank(1999)
	require.NotNil(t, next)
	assert.Equal(t, "Legend", next.Name)

	assert.Nil(t, NextRank(2000))
	assert.Nil(t, NextRank(5000))
}

func TestRanksOrdered(t *testing.T) {
	for i := 1; i < len(Ranks); i++ {
		assert.Greater(t, Ranks[i].Threshold, Ranks[i-1].Threshold)
	}
}
