package mutation

import (
	"context"

	"better-dreadroot/logging"
)

const (
	// EventProcessing is emitted when an entity enters the pipeline.
	EventProcessing logging.EventType = "mutation.processing"
	// EventSkipped is emitted when a precondition short-circuits the pipeline.
	EventSkipped logging.EventType = "mutation.skipped"
	// EventTagStripped is emitted when a tag is removed from a shared template.
	EventTagStripped logging.EventType = "mutation.tag_stripped"
	// EventRecreated is emitted when a fresh instance replaces the original.
	EventRecreated logging.EventType = "mutation.recreated"
	// EventSolid is emitted when an entity's physics is made solid.
	EventSolid logging.EventType = "mutation.solid"
	// EventHostile is emitted when an entity is turned against the player.
	EventHostile logging.EventType = "mutation.hostile"
	// EventReplaced is emitted when a listener swaps its parent entity.
	EventReplaced logging.EventType = "mutation.replaced"
)

// SkippedPayload records why an entity was left untouched.
type SkippedPayload struct {
	Stage  string `json:"stage"`
	Reason string `json:"reason"`
}

// TagStrippedPayload names the template and tag that were changed.
type TagStrippedPayload struct {
	Template string `json:"template"`
	Tag      string `json:"tag"`
}

// ReplacedPayload links the original entity to its replacement.
type ReplacedPayload struct {
	Trigger     string `json:"trigger"`
	Replacement string `json:"replacement"`
	Destroyed   bool   `json:"destroyed"`
}

// HostilePayload captures the resulting standing toward the player.
type HostilePayload struct {
	Faction    string `json:"faction"`
	Standing   int    `json:"standing"`
	Targetable bool   `json:"targetable"`
}

// Publish sends a diagnostic line of the given type. Every helper in this
// package funnels through it so the line format stays in one place.
func Publish(ctx context.Context, pub logging.Publisher, eventType logging.EventType, actor logging.EntityRef, message string, payload any) {
	if pub == nil {
		return
	}
	severity := logging.SeverityInfo
	if eventType == EventSkipped || eventType == EventProcessing {
		severity = logging.SeverityDebug
	}
	pub.Publish(ctx, logging.Event{
		Type:     eventType,
		Actor:    actor,
		Severity: severity,
		Category: logging.CategoryMutation,
		Message:  message,
		Payload:  payload,
	})
}
