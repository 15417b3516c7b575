package service

import "github.com/haierkeys/interview-link-service/internal/domain"

// questionBank 静态问题库
var questionBank = []domain.InterviewQuestion{
	{ID: "q1", Question: "Tell me about yourself and your experience", Category: "introduction", Difficulty: "easy", ExpectedDuration: 120},
	{ID: "q2", Question: "What are your key technical skills?", Category: "technical", Difficulty: "medium", ExpectedDuration: 180},
	{ID: "q3", Question: "Describe a challenging project you worked on", Category: "behavioral", Difficulty: "medium", ExpectedDuration: 240},
	{ID: "q4", Question: "Where do you see yourself in 5 years?", Category: "cultural", Difficulty: "easy", ExpectedDuration: 120},
	{ID: "q5", Question: "How would you design a service that must survive the loss of one data center?", Category: "technical", Difficulty: "hard", ExpectedDuration: 300},
	{ID: "q6", Question: "Walk me through how you debug a production incident", Category: "technical", Difficulty: "medium", ExpectedDuration: 240},
	{ID: "q7", Question: "Tell me about a time you disagreed with a teammate and how it was resolved", Category: "behavioral", Difficulty: "medium", ExpectedDuration: 180},
	{ID: "q8", Question: "Describe a mistake you made and what you learned from it", Category: "behavioral", Difficulty: "easy", ExpectedDuration: 180},
	{ID: "q9", Question: "What kind of team culture helps you do your best work?", Category: "cultural", Difficulty: "easy", ExpectedDuration: 120},
	{ID: "q10", Question: "How do you keep your skills up to date?", Category: "cultural", Difficulty: "easy", ExpectedDuration: 120},
}

// questionsFor returns the introduction plus every question of the session's type; mixed gets all.
func questionsFor(t domain.InterviewType, d domain.Difficulty) []domain.InterviewQuestion {
	var out []domain.InterviewQuestion
	for _, q := range questionBank {
		if q.Category == "introduction" || t == domain.InterviewTypeMixed || t == "" || q.Category == string(t) {
			if d == domain.DifficultyJunior && q.Difficulty == "hard" {
				continue
			}
			out = append(out, q)
		}
	}
	return out
}
