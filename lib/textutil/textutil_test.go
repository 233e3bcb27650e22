package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	require.Equal(t, "김치찌개", NormalizeName("  김치 \t찌개\n"))
	require.Equal(t, "tomatosoup", NormalizeName("Tomato Soup"))
}

func TestMatchName(t *testing.T) {
	require.True(t, MatchName("돼지고기 김치찌개", []string{"김치 찌개"}))
	require.False(t, MatchName("된장찌개", []string{"김치"}))
}

func TestSuggest(t *testing.T) {
	names := []string{
		"된장찌개",
		"김치찌개",
		"김치 찌개",
		"김치볶음밥",
		"새우 두부 계란찜",
		"김치찌개",
	}

	got := Suggest("김치찌개", names, 3, 0.5)
	require.Len(t, got, 3)
	require.Equal(t, "김치찌개", got[0].Name)
	require.Equal(t, 1.0, got[0].Score)
	require.Equal(t, "김치 찌개", got[1].Name)
	require.Equal(t, 1.0, got[1].Score)
	for i := 1; i < len(got); i++ {
		require.LessOrEqual(t, got[i].Score, got[i-1].Score)
	}

	substring := Suggest("계란", names, 5, substringScore)
	require.Len(t, substring, 1)
	require.Equal(t, "새우 두부 계란찜", substring[0].Name)

	require.Empty(t, Suggest("  ", names, 5, 0))
	require.Empty(t, Suggest("김치", names, 0, 0))
	require.Empty(t, Suggest("zzzz", names, 5, 0.9))
}
