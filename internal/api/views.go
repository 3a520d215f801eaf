package api

import (
	"github.com/david/support-finder/internal/discovery"
	"github.com/david/support-finder/internal/filter"
	"github.com/david/support-finder/internal/models"
	"github.com/david/support-finder/internal/quiz"
)

type domainView struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	GermanLearning bool   `json:"germanLearning"`
	Entities       int    `json:"entities"`
	Questions      int    `json:"questions"`
}

// entityView is an entity with its texts resolved for one language.
type entityView struct {
	models.Entity
	TitleText    string             `json:"titleText"`
	SubtitleText string             `json:"subtitleText,omitempty"`
	Style        discovery.Category `json:"style"`
}

func renderEntity(d *discovery.Domain, e models.Entity, lang string) entityView {
	return entityView{
		Entity:       e,
		TitleText:    e.Title.Text(lang),
		SubtitleText: e.Subtitle.Text(lang),
		Style:        d.CategoryFor(e),
	}
}

type listResponse struct {
	Entities []entityView `json:"entities"`
	Total    int          `json:"total"`
	Filters  filter.State `json:"filters"`
	Lang     string       `json:"lang"`
}

type textResponse struct {
	Namespace string            `json:"namespace"`
	Lang      string            `json:"lang"`
	Texts     map[string]string `json:"texts"`
}

type answerView struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

type questionView struct {
	Index     int          `json:"index"`
	Dimension string       `json:"dimension"`
	Text      string       `json:"text"`
	Answers   []answerView `json:"answers"`
}

type progressView struct {
	Answered int `json:"answered"`
	Total    int `json:"total"`
}

type quizResponse struct {
	Token    string        `json:"token"`
	State    quiz.State    `json:"state"`
	Question *questionView `json:"question,omitempty"`
	Filters  filter.State  `json:"filters"`
	Total    int           `json:"total"`
	Progress progressView  `json:"progress"`
}

func renderQuestion(d *discovery.Domain, index int, q quiz.Question, lang string) *questionView {
	answers := make([]answerView, 0, len(q.Answers))
	for _, a := range q.Answers {
		answers = append(answers, answerView{Key: a.Key, Label: a.Text(d.Text, lang)})
	}
	return &questionView{
		Index:     index,
		Dimension: q.TargetDimension,
		Text:      q.Prompt(d.Text, lang),
		Answers:   answers,
	}
}
