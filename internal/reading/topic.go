package reading

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownTopic = errors.New("unknown topic")

// Topic is the closed set of subjects a fortune reading can focus on.
type Topic string

const (
	TopicLove    Topic = "Love"
	TopicCareer  Topic = "Career"
	TopicWealth  Topic = "Wealth"
	TopicHealth  Topic = "Health"
	TopicFamily  Topic = "Family"
	TopicGeneral Topic = "General"
)

var topicOrder = []Topic{TopicLove, TopicCareer, TopicWealth, TopicHealth, TopicFamily, TopicGeneral}

var topicLabels = map[Topic]string{
	TopicLove:    "Tình yêu",
	TopicCareer:  "Sự nghiệp",
	TopicWealth:  "Tài lộc",
	TopicHealth:  "Sức khỏe",
	TopicFamily:  "Gia đình",
	TopicGeneral: "Vận may chung",
}

// Topics returns every topic in display order.
func Topics() []Topic {
	return append([]Topic(nil), topicOrder...)
}

// Label returns the Vietnamese display label.
func (t Topic) Label() string {
	return topicLabels[t]
}

func (t Topic) Valid() bool {
	_, ok := topicLabels[t]
	return ok
}

// ParseTopic accepts a topic code (case-insensitive) or its display label.
func ParseTopic(s string) (Topic, error) {
	s = strings.TrimSpace(s)
	for _, t := range topicOrder {
		if strings.EqualFold(string(t), s) || strings.EqualFold(t.Label(), s) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTopic, s)
}
