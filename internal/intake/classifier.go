package intake

import (
	"strings"

	"github.com/shaharia-lab/fedintake/internal/mastodon"
)

// Reason explains why a notification is not a submission.
type Reason string

const (
	ReasonNotMention Reason = "not a mention"
	ReasonNoMentions Reason = "no mention payload"
	ReasonTagMissing Reason = "tag missing"
)

// Verdict is the classifier's decision for one notification.
type Verdict struct {
	Accepted bool
	Reason   Reason
	Target   Target
}

// Classifier accepts mentions carrying the event tag.
type Classifier struct {
	tag string
}

// NewClassifier returns a Classifier for tag, given without the leading '#'.
func NewClassifier(tag string) *Classifier {
	return &Classifier{tag: strings.TrimPrefix(tag, "#")}
}

// Classify applies the rules in order and stops at the first that fails.
func (c *Classifier) Classify(n *mastodon.Notification) Verdict {
	if n.Type != mastodon.NotificationMention {
		return Verdict{Reason: ReasonNotMention}
	}
	if !n.Status.HasMentions() {
		return Verdict{Reason: ReasonNoMentions}
	}
	if !c.hasTag(n.Status.Tags) {
		return Verdict{Reason: ReasonTagMissing}
	}
	return Verdict{
		Accepted: true,
		Target:   Target{Account: n.Account, Status: n.Status},
	}
}

func (c *Classifier) hasTag(tags []mastodon.Tag) bool {
	for _, t := range tags {
		if strings.EqualFold(t.Name, c.tag) {
			return true
		}
	}
	return false
}
