package models

import (
	"time"
)

// User model
type User struct {
	ID          int       `json:"id"`
	Email       string    `json:"email"`
	Password    string    `json:"-"`
	IsActive    bool      `json:"is_active"`
	IsSuperuser bool      `json:"is_superuser"`
	CreatedAt   time.Time `json:"created_at"`
}

// Question model. Category is the denormalized category name; CategoryID is
// the optional reference into question_categories, kept in sync on rename.
type Question struct {
	ID         int      `json:"id"`
	Text       string   `json:"text"`
	Difficulty string   `json:"difficulty"`
	Category   string   `json:"category"`
	CategoryID *int     `json:"category_id,omitempty"`
	ExamType   string   `json:"exam_type"`
	Answers    []Answer `json:"answers,omitempty"`
}

// Answer model
type Answer struct {
	ID         int    `json:"id"`
	Text       string `json:"text"`
	IsCorrect  bool   `json:"is_correct"`
	QuestionID int    `json:"question_id"`
}

// QuestionCategory model
type QuestionCategory struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	ExamType    string    `json:"exam_type"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// TestAttempt model. EndTime is nil while the attempt is still open; score
// and max_score are provisional until it is set.
type TestAttempt struct {
	ID        string     `json:"id"`
	UserID    int        `json:"user_id"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	Score     int        `json:"score"`
	MaxScore  int        `json:"max_score"`
}

// UserAnswer model. IsCorrect is a copy of the chosen answer's flag taken at
// submission time.
type UserAnswer struct {
	ID            int    `json:"id"`
	TestAttemptID string `json:"test_attempt_id"`
	QuestionID    int    `json:"question_id"`
	AnswerID      int    `json:"answer_id"`
	IsCorrect     bool   `json:"is_correct"`
}

// TheoryTopic model. ParentID nil means a root topic.
type TheoryTopic struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	ParentID    *int    `json:"parent_id"`
	ExamType    string  `json:"exam_type"`
	Order       int     `json:"order"`
}

// TheoryContent model. At most one row per topic; upserted, never appended.
type TheoryContent struct {
	ID        int       `json:"id"`
	TopicID   int       `json:"topic_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TheoryResource model
type TheoryResource struct {
	ID           int    `json:"id"`
	TopicID      int    `json:"topic_id"`
	Title        string `json:"title"`
	URL          string `json:"url"`
	ResourceType string `json:"resource_type"`
}

// TestResult is the response produced when an attempt is submitted.
type TestResult struct {
	Score          int                `json:"score"`
	MaxScore       int                `json:"max_score"`
	Percentage     float64            `json:"percentage"`
	CorrectAnswers int                `json:"correct_answers"`
	TotalQuestions int                `json:"total_questions"`
	Details        []TestResultDetail `json:"details"`
}

// TestResultDetail is one graded question inside a TestResult. CorrectAnswer
// carries the text of one answer marked correct, empty when the question has
// none.
type TestResultDetail struct {
	QuestionID    int    `json:"question_id"`
	QuestionText  string `json:"question_text"`
	UserAnswer    string `json:"user_answer"`
	IsCorrect     bool   `json:"is_correct"`
	CorrectAnswer string `json:"correct_answer"`
}
