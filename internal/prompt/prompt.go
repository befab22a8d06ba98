// Package prompt builds the system and chat messages sent to the LLM.
// Everything here is pure and deterministic; no I/O.
package prompt

import (
	"fmt"
	"strings"

	"github.com/neo/rapbattle_backend/internal/llm"
	"github.com/neo/rapbattle_backend/internal/types"
)

// TotalTurns is the fixed debate length: three rounds of two turns.
const TotalTurns = 6

// Round maps a 1-based turn number onto its round (1..3).
func Round(currentTurn int) int {
	return (currentTurn + 1) / 2
}

// toneDirective returns the escalation directive for a round.
func toneDirective(round int) string {
	switch round {
	case 1:
		return "Round 1 tone: stay focused and competitive but respectful. Sharp bars, no cheap shots."
	case 2:
		return "Round 2 tone: escalate. Be aggressive and dismissive of your opponent's weak arguments."
	default:
		return "Round 3 tone: go fully off the rails. Be irrational, insulting and absurd. Profanity is permitted."
	}
}

// ForTurn builds the system prompt and chat history for one rap turn.
// history holds all utterances so far in order; the entry at even index i
// is the pro persona's turn i/2+1, odd index the con persona's.
func ForTurn(active, opponent string, topic types.Topic, isPro bool, currentTurn, maxChars int, history []string) (string, []llm.Message) {
	stance := "FOR"
	if !isPro {
		stance = "AGAINST"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("You are %s, a battle rapper in a rap debate against %s.\n", active, opponent))
	b.WriteString(fmt.Sprintf("Topic: %s\n", topic.Title))
	if topic.Description != "" {
		b.WriteString(fmt.Sprintf("Topic details: %s\n", topic.Description))
	}
	b.WriteString(fmt.Sprintf("You argue %s the topic. Never switch sides.\n", stance))
	if currentTurn > 1 {
		b.WriteString("Your verse must directly counter the last sentence of your opponent's previous turn.\n")
	}
	b.WriteString(fmt.Sprintf("Keep your verse under %d characters.\n", maxChars))
	b.WriteString(toneDirective(Round(currentTurn)))
	b.WriteString("\nRespond with the verse only, no speaker labels, no quotes.")

	return b.String(), HistoryMessages(history, isPro)
}

// HistoryMessages maps the debate history into chat roles from the
// active persona's point of view: its own past turns become assistant
// messages, the opponent's become user messages. The sequence always
// ends with a user message except before turn 1 where history is empty.
func HistoryMessages(history []string, activeIsPro bool) []llm.Message {
	msgs := make([]llm.Message, 0, len(history))
	for i, utterance := range history {
		byPro := i%2 == 0
		role := llm.RoleUser
		if byPro == activeIsPro {
			role = llm.RoleAssistant
		}
		msgs = append(msgs, llm.Message{Role: role, Text: utterance})
	}
	return msgs
}

// Judge score line keys, in canonical output order. Rapper1 is always
// the pro persona, Rapper2 the con.
var JudgeScoreKeys = []string{
	"Rapper1_Logic",
	"Rapper2_Logic",
	"Rapper1_Sentiment",
	"Rapper2_Sentiment",
	"Rapper1_Adherence",
	"Rapper2_Adherence",
	"Rapper1_Rebuttal",
	"Rapper2_Rebuttal",
}

// ForJudge builds the judging prompt over the full transcript.
func ForJudge(proName, conName string, topic types.Topic, history []string) (string, []llm.Message) {
	var b strings.Builder
	b.WriteString("You are the judge of a finished rap debate.\n")
	b.WriteString(fmt.Sprintf("Topic: %s\n", topic.Title))
	if topic.Description != "" {
		b.WriteString(fmt.Sprintf("Topic details: %s\n", topic.Description))
	}
	b.WriteString(fmt.Sprintf("Rapper1 is %s and argued FOR the topic.\n", proName))
	b.WriteString(fmt.Sprintf("Rapper2 is %s and argued AGAINST the topic.\n", conName))
	b.WriteString("Score each rapper on logic, sentiment, topic adherence and rebuttal quality.\n")
	b.WriteString("Respond with exactly these lines and nothing else:\n")
	b.WriteString("Reasoning: <one short paragraph explaining your verdict>\n")
	for _, key := range JudgeScoreKeys {
		b.WriteString(fmt.Sprintf("%s: <integer 1-5>\n", key))
	}

	return b.String(), []llm.Message{{Role: llm.RoleUser, Text: Transcript(proName, conName, history)}}
}

// Transcript renders the debate history with each turn labeled
// "Turn N (personaName): ...".
func Transcript(proName, conName string, history []string) string {
	var b strings.Builder
	for i, utterance := range history {
		speaker := proName
		if i%2 == 1 {
			speaker = conName
		}
		b.WriteString(fmt.Sprintf("Turn %d (%s): %s\n", i+1, speaker, utterance))
	}
	return b.String()
}
