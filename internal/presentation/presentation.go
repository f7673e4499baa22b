// Package presentation derives the dashboard rendering of an activity
// event from its type and details. Everything here is a pure function;
// unknown activity types map to a safe generic rendering instead of
// failing, so new event types never blank the feed.
package presentation

import (
	"fmt"
	"strings"

	"github.com/sketchmentor/core/domain"
)

// Icon is the icon category an event renders with.
type Icon string

const (
	IconVideo    Icon = "video"
	IconChart    Icon = "chart"
	IconDocument Icon = "document"
	IconImage    Icon = "image"
	IconYouTube  Icon = "youtube"
	IconGlobe    Icon = "globe"
	IconClock    Icon = "clock"
)

// Color is the accent color category an event renders with.
type Color string

const (
	ColorGreen  Color = "green"
	ColorBlue   Color = "blue"
	ColorRed    Color = "red"
	ColorPurple Color = "purple"
	ColorOrange Color = "orange"
	ColorIndigo Color = "indigo"
	ColorGray   Color = "gray"
)

// Subtitle length bounds, with an ellipsis appended when truncated.
const (
	promptSubtitleLimit = 60
	errorSubtitleLimit  = 50
)

// View is the fully derived rendering of one event.
type View struct {
	Icon     Icon   `json:"icon"`
	Color    Color  `json:"color"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
}

// Describe derives the full rendering for an event.
func Describe(ev *domain.ActivityEvent) View {
	return View{
		Icon:     IconFor(ev.Type, ev.Details),
		Color:    ColorFor(ev.Type, ev.Details),
		Title:    TitleFor(ev.Type, ev.Details),
		Subtitle: SubtitleFor(ev.Type, ev.Details),
	}
}

// IconFor maps an activity type to its icon. page_visited events
// branch on the visited page so each feature keeps its own icon.
func IconFor(t domain.ActivityType, details map[string]any) Icon {
	switch t {
	case domain.ActivityVideoGenerated,
		domain.ActivityVideoGenerationStart,
		domain.ActivityVideoDownloaded,
		domain.ActivityVideoGenerationFailed:
		return IconVideo
	case domain.ActivityGraphVisualized:
		return IconChart
	case domain.ActivityDocumentAnalyzed:
		return IconDocument
	case domain.ActivityCanvasUsed:
		return IconImage
	case domain.ActivityYouTubeTranscribed:
		return IconYouTube
	case domain.ActivityPageVisited:
		return pageIcon(details)
	default:
		return IconClock
	}
}

func pageIcon(details map[string]any) Icon {
	switch strings.ToLower(detailString(details, "page")) {
	case "video generator":
		return IconVideo
	case "graph visualizer":
		return IconChart
	case "document analyzer":
		return IconDocument
	case "canvas ai":
		return IconImage
	case "youtube transcriber":
		return IconYouTube
	default:
		return IconGlobe
	}
}

// ColorFor maps an activity type to its accent color.
func ColorFor(t domain.ActivityType, details map[string]any) Color {
	switch t {
	case domain.ActivityVideoGenerated, domain.ActivityVideoDownloaded:
		return ColorGreen
	case domain.ActivityVideoGenerationStart:
		return ColorBlue
	case domain.ActivityVideoGenerationFailed:
		return ColorRed
	case domain.ActivityGraphVisualized:
		return ColorBlue
	case domain.ActivityDocumentAnalyzed:
		return ColorGreen
	case domain.ActivityCanvasUsed:
		return ColorPurple
	case domain.ActivityYouTubeTranscribed:
		return ColorOrange
	case domain.ActivityLogin:
		return ColorGreen
	case domain.ActivityPageVisited:
		return pageColor(details)
	default:
		return ColorGray
	}
}

func pageColor(details map[string]any) Color {
	switch strings.ToLower(detailString(details, "page")) {
	case "video generator":
		return ColorRed
	case "graph visualizer":
		return ColorBlue
	case "document analyzer":
		return ColorGreen
	case "canvas ai":
		return ColorPurple
	case "youtube transcriber":
		return ColorOrange
	default:
		return ColorIndigo
	}
}

// TitleFor derives the human-readable title.
func TitleFor(t domain.ActivityType, details map[string]any) string {
	switch t {
	case domain.ActivityVideoGenerated:
		if title := detailString(details, "title"); title != "" {
			return title
		}
		return "Video Generated"
	case domain.ActivityVideoGenerationStart:
		return "Started Video Generation"
	case domain.ActivityVideoGenerationFailed:
		return "Video Generation Failed"
	case domain.ActivityVideoDownloaded:
		return "Downloaded Video"
	case domain.ActivityGraphVisualized:
		return "Visualized Graph"
	case domain.ActivityDocumentAnalyzed:
		if filename := detailString(details, "filename"); filename != "" {
			return fmt.Sprintf("Analyzed %s", filename)
		}
		return "Document Analyzed"
	case domain.ActivityCanvasUsed:
		return "Used Canvas AI"
	case domain.ActivityYouTubeTranscribed:
		if title := detailString(details, "title"); title != "" {
			return title
		}
		return "YouTube Video Transcribed"
	case domain.ActivityPageVisited:
		if page := detailString(details, "page"); page != "" {
			return fmt.Sprintf("Opened %s", page)
		}
		return "Opened Feature"
	case domain.ActivityLogin:
		return "Signed In"
	case domain.ActivityLogout:
		return "Signed Out"
	default:
		return "Activity"
	}
}

// SubtitleFor derives the optional subtitle, bounded and ellipsized.
func SubtitleFor(t domain.ActivityType, details map[string]any) string {
	switch t {
	case domain.ActivityVideoGenerated, domain.ActivityVideoGenerationStart:
		if prompt := detailString(details, "prompt"); prompt != "" {
			return fmt.Sprintf("%q", truncate(prompt, promptSubtitleLimit))
		}
	case domain.ActivityVideoGenerationFailed:
		if msg := detailString(details, "error"); msg != "" {
			return fmt.Sprintf("Error: %s", truncate(msg, errorSubtitleLimit))
		}
	case domain.ActivityGraphVisualized:
		if fn := detailString(details, "function"); fn != "" {
			return fmt.Sprintf("Function: %s", fn)
		}
	case domain.ActivityDocumentAnalyzed:
		return "Generated quizzes and study materials"
	case domain.ActivityPageVisited:
		if page := detailString(details, "page"); page != "" {
			return fmt.Sprintf("Accessed %s", page)
		}
		return "Accessed feature"
	}
	return ""
}

func detailString(details map[string]any, key string) string {
	if details == nil {
		return ""
	}
	s, _ := details[key].(string)
	return s
}

// truncate bounds s to limit runes, appending an ellipsis when it cut
// anything off.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
