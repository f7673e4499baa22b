package domain

import "time"

// ActivityType tags an activity event. The set is open-ended on the
// wire (stored as a plain string) but the dashboard only knows how to
// present the constants below; anything else falls back to a generic
// rendering.
type ActivityType string

const (
	ActivityLogin                 ActivityType = "login"
	ActivityLogout                ActivityType = "logout"
	ActivityPageVisited           ActivityType = "page_visited"
	ActivityVideoGenerated        ActivityType = "video_generated"
	ActivityVideoGenerationStart  ActivityType = "video_generation_started"
	ActivityVideoGenerationFailed ActivityType = "video_generation_failed"
	ActivityVideoDownloaded       ActivityType = "video_downloaded"
	ActivityGraphVisualized       ActivityType = "graph_visualized"
	ActivityDocumentAnalyzed      ActivityType = "document_analyzed"
	ActivityCanvasUsed            ActivityType = "canvas_used"
	ActivityYouTubeTranscribed    ActivityType = "youtube_transcribed"
)

// ActivityEvent is an immutable record of a user action, used to
// populate the dashboard's recent-activity feed. Events are created by
// the activity recorder only, retained indefinitely, and read back in
// reverse-chronological order.
type ActivityEvent struct {
	ID        string         `bson:"_id,omitempty" json:"id"`
	OwnerID   string         `bson:"owner_id" json:"owner_id"`
	Type      ActivityType   `bson:"activity_type" json:"activity_type"`
	Details   map[string]any `bson:"details,omitempty" json:"details,omitempty"`
	Timestamp time.Time      `bson:"timestamp" json:"timestamp"`
}
