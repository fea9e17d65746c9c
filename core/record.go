package core

import (
	"encoding/json"

	"go.mongodb.org/mongo-driver/bson"
)

// answerRecord and itemRecord are the persisted shapes of Answer and
// ContentItem. Every field is always present; absent values are null.
type answerRecord struct {
	MessageID  string  `json:"message_id" bson:"message_id"`
	MessageURL string  `json:"message_url" bson:"message_url"`
	Author     *string `json:"author" bson:"author"`
	CreatedAt  *string `json:"created_at" bson:"created_at"`
	Text       *string `json:"text" bson:"text"`
	IsAccepted bool    `json:"is_accepted" bson:"is_accepted"`
	Upvotes    *int    `json:"upvotes" bson:"upvotes"`
}

type itemRecord struct {
	URL                string         `json:"url" bson:"url"`
	LastmodFromSitemap *string        `json:"lastmod_from_sitemap" bson:"lastmod_from_sitemap"`
	ContentType        ContentType    `json:"content_type" bson:"content_type"`
	Title              *string        `json:"title" bson:"title"`
	Author             *string        `json:"author" bson:"author"`
	PublishedAt        *string        `json:"published_at" bson:"published_at"`
	UpdatedAt          *string        `json:"updated_at" bson:"updated_at"`
	Board              *string        `json:"board" bson:"board"`
	Tags               []string       `json:"tags" bson:"tags"`
	QuestionText       *string        `json:"question_text" bson:"question_text"`
	QuestionUpvotes    *int           `json:"question_upvotes" bson:"question_upvotes"`
	Answers            []answerRecord `json:"answers" bson:"answers"`
	ReplyCount         int            `json:"reply_count" bson:"reply_count"`
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func (a Answer) record() answerRecord {
	return answerRecord{
		MessageID:  a.MessageID,
		MessageURL: a.MessageURL,
		Author:     nullable(a.Author),
		CreatedAt:  nullable(a.CreatedAt),
		Text:       nullable(a.Text),
		IsAccepted: a.IsAccepted,
		Upvotes:    a.Upvotes,
	}
}

func (r answerRecord) answer() Answer {
	return Answer{
		MessageID:  r.MessageID,
		MessageURL: r.MessageURL,
		Author:     deref(r.Author),
		CreatedAt:  deref(r.CreatedAt),
		Text:       deref(r.Text),
		IsAccepted: r.IsAccepted,
		Upvotes:    r.Upvotes,
	}
}

func (it ContentItem) record() itemRecord {
	tags := it.Tags
	if tags == nil {
		tags = []string{}
	}
	answers := make([]answerRecord, 0, len(it.Answers))
	for _, a := range it.Answers {
		answers = append(answers, a.record())
	}
	return itemRecord{
		URL:                it.URL,
		LastmodFromSitemap: nullable(it.LastmodFromSitemap),
		ContentType:        it.ContentType,
		Title:              nullable(it.Title),
		Author:             nullable(it.Author),
		PublishedAt:        nullable(it.PublishedAt),
		UpdatedAt:          nullable(it.UpdatedAt),
		Board:              nullable(it.Board),
		Tags:               tags,
		QuestionText:       nullable(it.QuestionText),
		QuestionUpvotes:    it.QuestionUpvotes,
		Answers:            answers,
		ReplyCount:         it.ReplyCount,
	}
}

func (r itemRecord) item() ContentItem {
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	answers := make([]Answer, 0, len(r.Answers))
	for _, a := range r.Answers {
		answers = append(answers, a.answer())
	}
	return ContentItem{
		URL:                r.URL,
		LastmodFromSitemap: deref(r.LastmodFromSitemap),
		ContentType:        r.ContentType,
		Title:              deref(r.Title),
		Author:             deref(r.Author),
		PublishedAt:        deref(r.PublishedAt),
		UpdatedAt:          deref(r.UpdatedAt),
		Board:              deref(r.Board),
		Tags:               tags,
		QuestionText:       deref(r.QuestionText),
		QuestionUpvotes:    r.QuestionUpvotes,
		Answers:            answers,
		ReplyCount:         r.ReplyCount,
	}
}

// MarshalJSON encodes the answer with every key present.
func (a Answer) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.record())
}

// UnmarshalJSON decodes an answer; null strings become empty.
func (a *Answer) UnmarshalJSON(data []byte) error {
	var r answerRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*a = r.answer()
	return nil
}

// MarshalBSON encodes the answer with every key present.
func (a Answer) MarshalBSON() ([]byte, error) {
	return bson.Marshal(a.record())
}

// MarshalJSON encodes the item with every key present.
func (it ContentItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(it.record())
}

// UnmarshalJSON decodes an item; null strings become empty.
func (it *ContentItem) UnmarshalJSON(data []byte) error {
	var r itemRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*it = r.item()
	return nil
}

// MarshalBSON encodes the item as the stored document.
func (it ContentItem) MarshalBSON() ([]byte, error) {
	return bson.Marshal(it.record())
}
