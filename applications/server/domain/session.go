package domain

type PlaybackKind string

const (
	PlaybackVideo PlaybackKind = "video"
	PlaybackAudio PlaybackKind = "audio"
)

// SessionState is the now-playing state shared by every view.
type SessionState struct {
	Kind     PlaybackKind `json:"kind,omitempty"`
	Path     string       `json:"path,omitempty"`
	URI      string       `json:"uri,omitempty"`
	Position float64      `json:"position"`
	Playing  bool         `json:"playing"`
	Volume   float64      `json:"volume"`
	Version  uint64       `json:"version"`
}
