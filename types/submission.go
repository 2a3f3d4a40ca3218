package types

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Submission represents a user's answers to a quiz.
// Submissions are created by quiz-taking activity in the learner-facing
// application and are read-only for the admin API.
type Submission struct {
	// ID is the unique identifier of the submission.
	ID primitive.ObjectID `json:"id" bson:"_id,omitempty" db:"id"`

	// UserID identifies the user who made the submission.
	UserID primitive.ObjectID `json:"user_id" bson:"user_id" db:"user_id"`

	// QuizID identifies the quiz this submission answers.
	QuizID primitive.ObjectID `json:"quiz_id" bson:"quiz_id" db:"quiz_id"`

	// ModuleID identifies the module the quiz belongs to.
	ModuleID primitive.ObjectID `json:"module_id" bson:"module_id" db:"module_id"`

	// Answers holds the user's answer to every question of the quiz.
	Answers []Answer `json:"answers" bson:"answers" db:"answers"`

	// Score is the number of correctly answered questions.
	Score int `json:"score" bson:"score" db:"score"`

	// CreatedAt is the timestamp when the submission was created.
	CreatedAt time.Time `json:"created_at" bson:"created_at" db:"created_at"`
}

// Answer is a single question/answer pair inside a submission.
type Answer struct {
	// QuestionID identifies the quiz question.
	QuestionID primitive.ObjectID `json:"question_id" bson:"question_id"`

	// Answer is the answer given by the user.
	Answer string `json:"answer" bson:"answer"`

	// Correct reports whether the answer matched the expected one.
	Correct bool `json:"correct" bson:"correct"`
}
