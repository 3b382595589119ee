// Package api holds the wire types of the assay review API.
package api

// CandidateLevel is the seniority a submission is judged against.
type CandidateLevel string

const (
	LevelJunior CandidateLevel = "junior"
	LevelMiddle CandidateLevel = "middle"
	LevelSenior CandidateLevel = "senior"
)

// ReviewRequest is the body of POST /review.
type ReviewRequest struct {
	AssignmentDescription string `json:"assignment_description" binding:"required"`
	GithubRepoURL         string `json:"github_repo_url" binding:"required"`
	CandidateLevel        string `json:"candidate_level" binding:"required"`
}

// Verdict is the review produced by the language model. Its keys follow the
// prompt: found files, downsides/comments, rating and conclusion.
type Verdict map[string]any

// ReviewResult is the body of a successful POST /review.
type ReviewResult struct {
	GithubRepoURL  string         `json:"github_repo_url"`
	CandidateLevel CandidateLevel `json:"candidate_level"`
	Review         Verdict        `json:"review"`
	Cached         bool           `json:"cached"`
}

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error string `json:"error"`
}
