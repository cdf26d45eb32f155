package phoenix

import (
	"context"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"songbird_evals/internal/chathistory"
)

// Status is the terminal state of a publish attempt.
type Status int

const (
	// StatusUploaded means the create call returned cleanly.
	StatusUploaded Status = iota
	// StatusVerified means the create call errored but the dataset exists
	// server-side, so the upload actually landed.
	StatusVerified
	// StatusFailed means the create call errored and verification found
	// nothing.
	StatusFailed
)

// Result reports how a publish ended. ExampleCount is the server's count on
// the verified path (server state is authoritative) and the local count
// otherwise. UploadErr carries the original create error on the failed path.
type Result struct {
	Status       Status
	ExampleCount int
	UploadErr    error
}

// Publisher pushes golden examples to Phoenix under a fixed dataset name.
type Publisher struct {
	Client        *Client
	Name          string
	Description   string
	VerifyTimeout time.Duration
}

const metadataSource = "dynamodb_chat_history"

// BuildUpload converts golden examples into the three aligned sequences the
// create endpoint expects: inputs carry the question, outputs the SQL and
// insight, metadata the provenance fields.
func BuildUpload(name, description string, examples []chathistory.Record) DatasetUpload {
	upload := DatasetUpload{
		Action:      "create",
		Name:        name,
		Description: description,
		Inputs:      make([]map[string]string, 0, len(examples)),
		Outputs:     make([]map[string]string, 0, len(examples)),
		Metadata:    make([]map[string]string, 0, len(examples)),
	}
	for _, ex := range examples {
		upload.Inputs = append(upload.Inputs, map[string]string{"question": ex.Question})
		upload.Outputs = append(upload.Outputs, map[string]string{"sql": ex.SQL, "insights": ex.Insights})
		upload.Metadata = append(upload.Metadata, map[string]string{
			"source":     metadataSource,
			"user_email": ex.UserEmail,
			"session_id": ex.SessionID,
			"timestamp":  strconv.FormatFloat(ex.Timestamp, 'f', -1, 64),
		})
	}
	return upload
}

// Publish uploads the examples. A clean return ends Uploaded. On any upload
// error the dataset listing is consulted directly; Phoenix's success signal is
// unreliable for this endpoint, and the read path is the only way to tell a
// failed upload from one that landed behind a malformed response. If the named
// dataset exists the run ends Verified with the server-side count, otherwise
// Failed with the original error.
func (p *Publisher) Publish(ctx context.Context, examples []chathistory.Record) Result {
	upload := BuildUpload(p.Name, p.Description, examples)
	err := p.Client.CreateDataset(ctx, upload)
	if err == nil {
		return Result{Status: StatusUploaded, ExampleCount: len(examples)}
	}

	logrus.WithError(err).Warn("create dataset errored, verifying via graphql")
	timeout := p.VerifyTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	count, found, verr := p.Client.VerifyDataset(ctx, p.Name, timeout)
	if verr != nil {
		logrus.WithError(verr).Debug("verification query failed")
	}
	if verr == nil && found {
		return Result{Status: StatusVerified, ExampleCount: count}
	}
	return Result{Status: StatusFailed, UploadErr: err}
}
