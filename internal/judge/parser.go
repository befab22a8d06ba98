// Package judge turns the judging model's free-form response into a
// typed verdict. It is pure: no I/O, no LLM calls.
package judge

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/neo/rapbattle_backend/internal/prompt"
	"github.com/neo/rapbattle_backend/internal/types"
)

// Scores holds the four rubric dimensions for one persona, each in [1,5].
type Scores struct {
	Logic     int `json:"logic"`
	Sentiment int `json:"sentiment"`
	Adherence int `json:"adherence"`
	Rebuttal  int `json:"rebuttal"`
}

// Total sums the four dimensions.
func (s Scores) Total() int {
	return s.Logic + s.Sentiment + s.Adherence + s.Rebuttal
}

// Rubric is the full two-persona score grid.
type Rubric struct {
	Pro Scores `json:"pro"`
	Con Scores `json:"con"`
}

// Verdict is the parsed judging outcome. Winner is a persona name,
// types.WinnerDraw, or one of the error sentinels; Rubric is nil unless
// all eight scores were present and valid.
type Verdict struct {
	Winner    string  `json:"winner"`
	Reasoning string  `json:"reasoning"`
	Rubric    *Rubric `json:"rubric,omitempty"`
}

const defaultReasoning = "The judge did not provide reasoning."

// dimension order must match prompt.JudgeScoreKeys pairs.
var dimensions = []string{"Logic", "Sentiment", "Adherence", "Rebuttal"}

// Parse extracts the verdict from a raw judge response. Lines are
// trimmed and collected as case-insensitive "Key: Value" pairs. All
// eight scores present and parseable yields a real winner or a draw;
// anything missing yields StatsError; input that cannot be scanned at
// all yields ErrorParsing.
func Parse(raw, proName, conName string) Verdict {
	if strings.TrimSpace(raw) == "" {
		return Verdict{Winner: types.WinnerErrorParsing, Reasoning: defaultReasoning}
	}

	pairs := make(map[string]string)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		pairs[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}

	reasoning := pairs["reasoning"]
	if reasoning == "" {
		reasoning = defaultReasoning
	}

	var pro, con Scores
	complete := true
	for i, dim := range dimensions {
		proVal, proOK := parseScore(pairs[strings.ToLower("Rapper1_"+dim)])
		conVal, conOK := parseScore(pairs[strings.ToLower("Rapper2_"+dim)])
		if !proOK || !conOK {
			complete = false
			break
		}
		switch i {
		case 0:
			pro.Logic, con.Logic = proVal, conVal
		case 1:
			pro.Sentiment, con.Sentiment = proVal, conVal
		case 2:
			pro.Adherence, con.Adherence = proVal, conVal
		case 3:
			pro.Rebuttal, con.Rebuttal = proVal, conVal
		}
	}

	if !complete {
		return Verdict{Winner: types.WinnerStatsError, Reasoning: reasoning}
	}

	verdict := Verdict{
		Reasoning: reasoning,
		Rubric:    &Rubric{Pro: pro, Con: con},
	}
	switch {
	case pro.Total() > con.Total():
		verdict.Winner = proName
	case con.Total() > pro.Total():
		verdict.Winner = conName
	default:
		verdict.Winner = types.WinnerDraw
	}
	return verdict
}

// parseScore parses one score value and clamps it to [1,5].
func parseScore(value string) (int, bool) {
	if value == "" {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, false
	}
	if n < 1 {
		n = 1
	}
	if n > 5 {
		n = 5
	}
	return n, true
}

// Format renders a verdict back into the canonical judge template.
// Parsing the result of Format yields an identical rubric.
func Format(v Verdict) string {
	var b strings.Builder
	b.WriteString("Reasoning: " + v.Reasoning + "\n")
	if v.Rubric == nil {
		return b.String()
	}
	values := map[string]int{
		"Rapper1_Logic":     v.Rubric.Pro.Logic,
		"Rapper2_Logic":     v.Rubric.Con.Logic,
		"Rapper1_Sentiment": v.Rubric.Pro.Sentiment,
		"Rapper2_Sentiment": v.Rubric.Con.Sentiment,
		"Rapper1_Adherence": v.Rubric.Pro.Adherence,
		"Rapper2_Adherence": v.Rubric.Con.Adherence,
		"Rapper1_Rebuttal":  v.Rubric.Pro.Rebuttal,
		"Rapper2_Rebuttal":  v.Rubric.Con.Rebuttal,
	}
	for _, key := range prompt.JudgeScoreKeys {
		b.WriteString(fmt.Sprintf("%s: %d\n", key, values[key]))
	}
	return b.String()
}
