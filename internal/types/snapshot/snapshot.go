package snapshot

const (
	Version   = "1.3"
	RangeName = "14days"
)

// ProgressSnapshot is stored once per user per calendar day under
// progressSnapshots/{DateKey}.
type ProgressSnapshot struct {
	DateKey   string   `json:"dateKey"`
	Timestamp string   `json:"timestamp"`
	UserData  UserData `json:"userData"`
	Metadata  Metadata `json:"metadata"`
}

type Metadata struct {
	Version      string `json:"version"`
	CalculatedAt string `json:"calculatedAt"`
	UpdatedAt    string `json:"updatedAt"`
	TimeRange    string `json:"timeRange"`
}

type UserData struct {
	Journals    JournalSection  `json:"journals"`
	MoodEntries MoodSection     `json:"moodEntries"`
	Activities  ActivitySection `json:"activities"`
	Chores      ChoreSection    `json:"chores"`
	Contacts    ContactSection  `json:"contacts"`
	TimeRange   TimeRange       `json:"timeRange"`
}

type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type RiskLevels struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
}

type EmotionSummary struct {
	SignificantEmotions []string   `json:"significantEmotions"`
	RiskLevels          RiskLevels `json:"riskLevels"`
	AverageRisk         float64    `json:"averageRisk"`
	MoodStrength        float64    `json:"moodStrength"`
}

type JournalSection struct {
	MostRecent *RecentJournal   `json:"mostRecent"`
	Analytics  JournalAnalytics `json:"analytics"`
}

type RecentJournal struct {
	Timestamp string      `json:"timestamp"`
	Text      string      `json:"text"`
	Mood      JournalMood `json:"mood"`
	Risk      JournalRisk `json:"risk"`
}

type JournalMood struct {
	Strength     float64 `json:"strength"`
	MeanPolarity float64 `json:"meanPolarity"`
}

type JournalRisk struct {
	Mean float64 `json:"mean"`
	Max  float64 `json:"max"`
}

type JournalAnalytics struct {
	EntriesPerWeek float64 `json:"entriesPerWeek"`
	EmotionSummary
}

type MoodSection struct {
	MostRecent *RecentMood   `json:"mostRecent"`
	Analytics  MoodAnalytics `json:"analytics"`
}

type RecentMood struct {
	Timestamp string       `json:"timestamp"`
	MoodScale int          `json:"moodScale"`
	Note      string       `json:"note"`
	Analysis  MoodAnalysis `json:"analysis"`
}

type MoodAnalysis struct {
	MeanPolarity   float64 `json:"meanPolarity"`
	SignedStrength float64 `json:"signedStrength"`
	Risk           float64 `json:"risk"`
}

type MoodAnalytics struct {
	EntriesPerWeek float64 `json:"entriesPerWeek"`
	AverageMood    float64 `json:"averageMood"`
	EmotionSummary
}

type ActivitySection struct {
	MostRecent *RecentActivity  `json:"mostRecent"`
	Averages   ActivityAverages `json:"averages"`
}

type RecentActivity struct {
	Timestamp string  `json:"timestamp"`
	Type      string  `json:"type"`
	Duration  float64 `json:"duration"`
}

type ActivityAverages struct {
	ActivitiesPerWeek  float64          `json:"activitiesPerWeek"`
	AvgDurationMinutes int              `json:"avgDurationMinutes"`
	TypeDistribution   TypeDistribution `json:"typeDistribution"`
}

type TypeDistribution struct {
	Workout int `json:"workout"`
	Outdoor int `json:"outdoor"`
}

type ChoreSection struct {
	ActiveChores      int           `json:"activeChores"`
	CompletedLastWeek int           `json:"completedLastWeek"`
	ByImportance      ImportanceMix `json:"byImportance"`
}

type ImportanceMix struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

type ContactSection struct {
	TopContacts   []TopContact `json:"topContacts"`
	TotalActive   int          `json:"totalActive"`
	TotalContacts int          `json:"totalContacts"`
}

type TopContact struct {
	Name          string   `json:"name"`
	Relationship  string   `json:"relationship"`
	SupportTypes  []string `json:"supportTypes"`
	LastContacted *string  `json:"lastContacted"`
	Priority      string   `json:"priority"`
}

type GetRequest struct {
	DateKey string `json:"dateKey"`
}
