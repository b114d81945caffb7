package reports

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/synthline/firmforge/internal/domain"
	"github.com/synthline/firmforge/internal/randsrc"
	"github.com/synthline/firmforge/internal/simclock"
	"github.com/synthline/firmforge/internal/store"
)

// FeedbackResponse is one answered survey question.
type FeedbackResponse struct {
	QuestionID    string `json:"questionID"`
	QuestionText  string `json:"questionText"`
	ResponseType  string `json:"responseType"`
	ResponseValue string `json:"responseValue"`
}

// Feedback is the survey record filed for one completed project.
type Feedback struct {
	ResponseID          string             `json:"responseID"`
	ProjectID           string             `json:"projectID"`
	ClientID            int                `json:"clientID"`
	SurveyDate          string             `json:"surveyDate"`
	Responses           []FeedbackResponse `json:"responses"`
	OverallSatisfaction string             `json:"overallSatisfaction"`
}

// scaleWeights skews the 1..5 answers towards the upper end.
var scaleWeights = []float64{0.05, 0.05, 0.2, 0.4, 0.3}

var praisePhrases = map[int][]string{
	0: {
		"Honestly, very little stood out on this engagement.",
		"The team was polite, but the delivery fell short of expectations.",
		"Individual consultants tried hard despite the overall outcome.",
	},
	1: {
		"The team was competent and the work got done.",
		"Steady delivery, nothing remarkable but no surprises either.",
		"The consultants were easy to work with day to day.",
	},
	2: {
		"The team understood our business quickly and delivered exactly what we needed.",
		"Excellent project management and a genuinely collaborative team.",
		"Deliverables were consistently on time and of high quality.",
		"The consultants felt like an extension of our own staff.",
	},
}

var improvePhrases = map[int][]string{
	0: {
		"Communication was poor; we were often the last to hear about slippage.",
		"Status updates were irregular and hard to act on.",
		"We needed far more proactive communication from the project lead.",
	},
	1: {
		"Status reporting could be more frequent and more concrete.",
		"Hand-offs between team members sometimes lost context.",
		"A tighter feedback loop on open issues would help.",
	},
	2: {
		"Very little; perhaps slightly earlier visibility into staffing changes.",
		"Nothing major, the cadence of updates worked well for us.",
		"Keep doing what you are doing, maybe shorter status meetings.",
	},
}

// scoreBucket maps a 1..5 score to a phrase-table bucket.
func scoreBucket(score int) int {
	switch {
	case score <= 2:
		return 0
	case score == 3:
		return 1
	default:
		return 2
	}
}

// ClientFeedback files one survey per completed project: two weighted
// 1..5 scale answers, two canned free-text answers keyed off the scores,
// and the overall satisfaction as their mean. The survey is dated on the
// project's actual end.
func ClientFeedback(pr *store.Projects, rng *randsrc.Source) []Feedback {
	var out []Feedback
	for _, proj := range pr.All() {
		if proj.Status != domain.ProjectCompleted || proj.ActualEnd == nil {
			continue
		}
		q1 := rng.WeightedIndex(scaleWeights) + 1
		q2 := rng.WeightedIndex(scaleWeights) + 1
		overall := float64(q1+q2) / 2

		praise := praisePhrases[scoreBucket(q1)]
		improve := improvePhrases[scoreBucket(q2)]

		out = append(out, Feedback{
			ResponseID: strconv.Itoa(rng.IntInRange(10000, 99999)),
			ProjectID:  proj.ID,
			ClientID:   proj.ClientID,
			SurveyDate: proj.ActualEnd.Format(simclock.DateLayout),
			Responses: []FeedbackResponse{
				{
					QuestionID:    "Q1",
					QuestionText:  "How satisfied are you with the project outcome?",
					ResponseType:  "scale",
					ResponseValue: strconv.Itoa(q1),
				},
				{
					QuestionID:    "Q2",
					QuestionText:  "Please rate the communication from our team.",
					ResponseType:  "scale",
					ResponseValue: strconv.Itoa(q2),
				},
				{
					QuestionID:    "Q3",
					QuestionText:  "What did you like best about working with us?",
					ResponseType:  "text",
					ResponseValue: praise[rng.IntInRange(0, len(praise)-1)],
				},
				{
					QuestionID:    "Q4",
					QuestionText:  "What could we improve on?",
					ResponseType:  "text",
					ResponseValue: improve[rng.IntInRange(0, len(improve)-1)],
				},
			},
			OverallSatisfaction: strconv.FormatFloat(overall, 'f', 1, 64),
		})
	}
	return out
}

// WriteClientFeedbackJSON writes the surveys as an indented JSON array.
func WriteClientFeedbackJSON(w io.Writer, feedback []Feedback) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if feedback == nil {
		feedback = []Feedback{}
	}
	if err := enc.Encode(feedback); err != nil {
		return fmt.Errorf("encoding feedback: %w", err)
	}
	return nil
}
