package judge

import (
	"fmt"
	"testing"

	"github.com/neo/rapbattle_backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	proName = "MC Nova"
	conName = "Big Byte"
)

func judgeResponse(pro, con [4]int) string {
	return fmt.Sprintf(`Reasoning: Pro brought sharper rebuttals.
Rapper1_Logic: %d
Rapper2_Logic: %d
Rapper1_Sentiment: %d
Rapper2_Sentiment: %d
Rapper1_Adherence: %d
Rapper2_Adherence: %d
Rapper1_Rebuttal: %d
Rapper2_Rebuttal: %d`,
		pro[0], con[0], pro[1], con[1], pro[2], con[2], pro[3], con[3])
}

func TestParseProWins(t *testing.T) {
	raw := judgeResponse([4]int{5, 4, 5, 4}, [4]int{3, 3, 3, 3})

	v := Parse(raw, proName, conName)

	assert.Equal(t, proName, v.Winner)
	assert.Equal(t, "Pro brought sharper rebuttals.", v.Reasoning)
	require.NotNil(t, v.Rubric)
	assert.Equal(t, 18, v.Rubric.Pro.Total())
	assert.Equal(t, 12, v.Rubric.Con.Total())
}

func TestParseDraw(t *testing.T) {
	raw := judgeResponse([4]int{3, 3, 3, 3}, [4]int{3, 3, 3, 3})

	v := Parse(raw, proName, conName)

	assert.Equal(t, types.WinnerDraw, v.Winner)
	require.NotNil(t, v.Rubric)
	assert.Equal(t, v.Rubric.Pro.Total(), v.Rubric.Con.Total())
}

func TestParseNonsense(t *testing.T) {
	v := Parse("nonsense", proName, conName)

	assert.Equal(t, types.WinnerStatsError, v.Winner)
	assert.Nil(t, v.Rubric)
	assert.NotEmpty(t, v.Reasoning)
}

func TestParseEmptyInput(t *testing.T) {
	v := Parse("   \n  ", proName, conName)

	assert.Equal(t, types.WinnerErrorParsing, v.Winner)
	assert.Nil(t, v.Rubric)
}

func TestParseMissingScoreKeepsReasoning(t *testing.T) {
	raw := `Reasoning: Close call.
Rapper1_Logic: 4
Rapper2_Logic: 4
Rapper1_Sentiment: 4
Rapper2_Sentiment: 4
Rapper1_Adherence: 4
Rapper2_Adherence: 4
Rapper1_Rebuttal: 4`

	v := Parse(raw, proName, conName)

	assert.Equal(t, types.WinnerStatsError, v.Winner)
	assert.Equal(t, "Close call.", v.Reasoning)
	assert.Nil(t, v.Rubric)
}

func TestParseInvalidScoreValue(t *testing.T) {
	raw := judgeResponse([4]int{5, 5, 5, 5}, [4]int{3, 3, 3, 3})
	raw = raw[:len(raw)-1] + "x" // corrupt the last score

	v := Parse(raw, proName, conName)

	assert.Equal(t, types.WinnerStatsError, v.Winner)
}

func TestParseClampsOutOfRangeScores(t *testing.T) {
	raw := judgeResponse([4]int{9, 9, 9, 9}, [4]int{0, -2, 0, 0})

	v := Parse(raw, proName, conName)

	require.NotNil(t, v.Rubric)
	assert.Equal(t, 20, v.Rubric.Pro.Total())
	assert.Equal(t, 4, v.Rubric.Con.Total())
	assert.Equal(t, proName, v.Winner)
}

func TestParseCaseInsensitiveKeys(t *testing.T) {
	raw := `reasoning: lowercase keys still count.
rapper1_logic: 5
RAPPER2_LOGIC: 2
Rapper1_Sentiment: 5
rapper2_sentiment: 2
rapper1_adherence: 5
Rapper2_Adherence: 2
rapper1_rebuttal: 5
rapper2_rebuttal: 2`

	v := Parse(raw, proName, conName)

	assert.Equal(t, proName, v.Winner)
	require.NotNil(t, v.Rubric)
	assert.Equal(t, 20, v.Rubric.Pro.Total())
}

func TestParseConWins(t *testing.T) {
	raw := judgeResponse([4]int{2, 2, 2, 2}, [4]int{4, 4, 4, 4})

	v := Parse(raw, proName, conName)

	assert.Equal(t, conName, v.Winner)
}

func TestFormatParseRoundTrip(t *testing.T) {
	raw := judgeResponse([4]int{5, 2, 4, 3}, [4]int{3, 3, 4, 1})

	first := Parse(raw, proName, conName)
	require.NotNil(t, first.Rubric)

	second := Parse(Format(first), proName, conName)

	assert.Equal(t, first.Winner, second.Winner)
	assert.Equal(t, first.Reasoning, second.Reasoning)
	require.NotNil(t, second.Rubric)
	assert.Equal(t, *first.Rubric, *second.Rubric)
}

// Every complete response classifies as pro, con or draw, and the two
// totals always account for all eight scores.
func TestParseTotalsAccountForAllScores(t *testing.T) {
	for proScore := 1; proScore <= 5; proScore++ {
		for conScore := 1; conScore <= 5; conScore++ {
			raw := judgeResponse(
				[4]int{proScore, proScore, proScore, proScore},
				[4]int{conScore, conScore, conScore, conScore})

			v := Parse(raw, proName, conName)

			require.NotNil(t, v.Rubric)
			assert.Contains(t, []string{proName, conName, types.WinnerDraw}, v.Winner)
			assert.Equal(t, 4*proScore+4*conScore, v.Rubric.Pro.Total()+v.Rubric.Con.Total())
		}
	}
}
