package model

import "time"

// RunStatus represents the lifecycle state of a release run.
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// StepName identifies one step of the release pipeline.
type StepName string

const (
	StepCheckout     StepName = "checkout"
	StepRestoreCache StepName = "restore-cache"
	StepInstallTool  StepName = "install-tool"
	StepRelease      StepName = "release"
	StepExtract      StepName = "extract-version"
	StepIdentity     StepName = "configure-identity"
	StepTagPush      StepName = "tag-and-push"
	StepSaveCache    StepName = "save-cache"
)

// StepResult records the outcome of a single pipeline step.
type StepResult struct {
	Name      StepName      `firestore:"name" json:"name"`
	OK        bool          `firestore:"ok" json:"ok"`
	Detail    string        `firestore:"detail,omitempty" json:"detail,omitempty"`
	Error     string        `firestore:"error,omitempty" json:"error,omitempty"`
	StartedAt time.Time     `firestore:"started_at" json:"started_at"`
	Duration  time.Duration `firestore:"duration" json:"duration"`
}

// ReleaseRun is the audit record of one pipeline execution. It is written as
// the run progresses and read only by the inspection surfaces (HTTP, CLI);
// the pipeline itself never consults past runs, so concurrent runs stay
// uncoordinated.
type ReleaseRun struct {
	ID         string       `firestore:"id" json:"id"`
	Repository string       `firestore:"repository" json:"repository"`
	PRNumber   int          `firestore:"pr_number" json:"pr_number"`
	Title      string       `firestore:"title" json:"title"`
	HeadRef    string       `firestore:"head_ref" json:"head_ref"`
	BaseRef    string       `firestore:"base_ref" json:"base_ref"`
	Version    string       `firestore:"version,omitempty" json:"version,omitempty"`
	TagName    string       `firestore:"tag_name,omitempty" json:"tag_name,omitempty"`
	Status     RunStatus    `firestore:"status" json:"status"`
	Steps      []StepResult `firestore:"steps" json:"steps"`
	Error      string       `firestore:"error,omitempty" json:"error,omitempty"`
	StartedAt  time.Time    `firestore:"started_at" json:"started_at"`
	FinishedAt time.Time    `firestore:"finished_at,omitempty" json:"finished_at,omitempty"`
}

// NewReleaseRun creates a pending run record for an accepted event.
func NewReleaseRun(id string, event *PullRequestEvent) *ReleaseRun {
	return &ReleaseRun{
		ID:         id,
		Repository: event.Repository,
		PRNumber:   event.Number,
		Title:      event.Title,
		HeadRef:    event.HeadRef,
		BaseRef:    event.BaseRef,
		Status:     RunStatusPending,
		StartedAt:  time.Now(),
	}
}

// AddStep appends a step result to the run.
func (r *ReleaseRun) AddStep(s StepResult) {
	r.Steps = append(r.Steps, s)
}

// Finish marks the run completed. A non-nil err marks it failed.
func (r *ReleaseRun) Finish(err error) {
	r.FinishedAt = time.Now()
	if err != nil {
		r.Status = RunStatusFailed
		r.Error = err.Error()
		return
	}
	r.Status = RunStatusSucceeded
}

// Elapsed returns the wall-clock duration of the run.
func (r *ReleaseRun) Elapsed() time.Duration {
	if r.FinishedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
