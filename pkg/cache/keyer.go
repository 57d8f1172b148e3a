package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Keyer derives cache keys for pipeline stages.
type Keyer interface {
	// FramesKey keys the frames produced by replaying a scenario.
	FramesKey(scenarioHash string, opts FramesKeyOpts) string

	// ArtifactKey keys a rendered artifact of a frame sequence.
	ArtifactKey(framesHash string, opts ArtifactKeyOpts) string
}

// FramesKeyOpts holds the replay settings that change the frames.
type FramesKeyOpts struct {
	Width               float64 `json:"width"`
	Height              float64 `json:"height"`
	ActiveSpeakerLayout bool    `json:"active_speaker_layout"`
	Capacity            int     `json:"capacity"`
}

// ArtifactKeyOpts holds the render settings that change an artifact.
type ArtifactKeyOpts struct {
	Format      string  `json:"format"`
	Inset       float64 `json:"inset,omitempty"`
	Frame       int     `json:"frame"`
	Labels      bool    `json:"labels,omitempty"`
	SlotNumbers bool    `json:"slot_numbers,omitempty"`
}

// DefaultKeyer produces "frames:<sha256>" and "artifact:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// FramesKey hashes the scenario hash together with the replay settings.
func (k *DefaultKeyer) FramesKey(scenarioHash string, opts FramesKeyOpts) string {
	return hashKey("frames", scenarioHash, opts)
}

// ArtifactKey hashes the frames hash together with the render settings.
func (k *DefaultKeyer) ArtifactKey(framesHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", framesHash, opts)
}

// Hash returns the hex-encoded SHA-256 of data. Scenario and frame hashes
// use it so equal inputs share cache entries.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey joins prefix and the hash of the JSON-encoded parts.
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return prefix + ":" + Hash(data)
}
