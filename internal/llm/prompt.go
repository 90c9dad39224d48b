package llm

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Mode string

const (
	ModeCoach     Mode = "Coach"
	ModeCompanion Mode = "Companion"
	ModeRealTalk  Mode = "Real Talk"
)

func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModeCompanion, ModeRealTalk:
		return Mode(s)
	}
	return ModeCoach
}

// State is what the assistant knows about the user when a chat turn starts.
type State struct {
	Mood           string
	LastJournal    *time.Time
	OutdoorToday   int
	NearTrigger    bool
	ProgressDigest string
}

func SystemPrompt(mode Mode) string {
	return fmt.Sprintf(`You are BounceBot, an AI assistant for the app "Bounce Back."
You are in %s mode.

Your tone and behavior should match this mode:
- Coach: Motivational and structured
- Companion: Empathetic and warm
- Real Talk: Honest but caring

Always return JSON:
{
  "message": "...",
  "actions": ["..."],
  "tags": ["..."]
}`, mode)
}

func FormatContext(s State) string {
	mood := s.Mood
	if mood == "" {
		mood = "unknown"
	}
	lastJournal := "never"
	if s.LastJournal != nil {
		lastJournal = s.LastJournal.Format("2006-01-02")
	}
	near := "no"
	if s.NearTrigger {
		near = "yes"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "User mood: %s.\n", mood)
	fmt.Fprintf(&b, "Last journal entry: %s.\n", lastJournal)
	fmt.Fprintf(&b, "Outdoor activities today: %d.\n", s.OutdoorToday)
	fmt.Fprintf(&b, "Near trigger zone: %s.", near)
	if s.ProgressDigest != "" {
		fmt.Fprintf(&b, "\nRecent progress: %s", s.ProgressDigest)
	}
	return b.String()
}

// Reply is the structured answer the system prompt asks for.
type Reply struct {
	Message string   `json:"message"`
	Actions []string `json:"actions"`
	Tags    []string `json:"tags"`
}

// ParseReply extracts the JSON object from the model's text. Models
// sometimes wrap it in prose or code fences; when nothing parses the raw
// text becomes the message.
func ParseReply(content string) Reply {
	raw := strings.TrimSpace(content)
	if start, end := strings.Index(raw, "{"), strings.LastIndex(raw, "}"); start != -1 && end > start {
		var r Reply
		if err := json.Unmarshal([]byte(raw[start:end+1]), &r); err == nil && r.Message != "" {
			if r.Actions == nil {
				r.Actions = []string{}
			}
			if r.Tags == nil {
				r.Tags = []string{}
			}
			return r
		}
	}
	return Reply{Message: raw, Actions: []string{}, Tags: []string{}}
}
