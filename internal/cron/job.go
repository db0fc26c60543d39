package cron

import (
	"crypto/rand"
	"encoding/hex"
)

// Job is a persisted scheduled send. The payload is delivered through the
// OnJob handler when the schedule fires.
type Job struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Enabled        bool     `json:"enabled"`
	Schedule       Schedule `json:"schedule"`
	Payload        Payload  `json:"payload"`
	State          JobState `json:"state"`
	DeleteAfterRun bool     `json:"deleteAfterRun,omitempty"`
}

// Schedule describes when a job fires. Kind selects the interpretation:
// "cron" uses Expr (six-field, with seconds), "every" repeats each EveryMs,
// "at" fires once at AtMs.
type Schedule struct {
	Kind    string `json:"kind"`
	Expr    string `json:"expr,omitempty"`
	EveryMs int64  `json:"everyMs,omitempty"`
	AtMs    int64  `json:"atMs,omitempty"`
}

// Payload is what gets sent when the job fires.
type Payload struct {
	Message string `json:"message"`
}

type JobState struct {
	LastRunAtMs int64  `json:"lastRunAtMs,omitempty"`
	LastStatus  string `json:"lastStatus,omitempty"`
	LastError   string `json:"lastError,omitempty"`
}

func NewJob(name string, schedule Schedule, payload Payload) Job {
	return Job{
		ID:       newJobID(),
		Name:     name,
		Enabled:  true,
		Schedule: schedule,
		Payload:  payload,
	}
}

func newJobID() string {
	buf := make([]byte, 8)
	rand.Read(buf)
	return hex.EncodeToString(buf)
}
