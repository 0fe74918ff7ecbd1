package cluster

import (
	"errors"
	"fmt"

	emrtypes "github.com/aws/aws-sdk-go-v2/service/emr/types"
	"github.com/aws/smithy-go"
)

// SubmissionError is returned when the control plane rejects a call or cannot
// be reached. Its message is the control plane's own error text.
type SubmissionError struct {
	Op  string
	Err error
}

func (e *SubmissionError) Error() string {
	var apiErr smithy.APIError
	if errors.As(e.Err, &apiErr) {
		return fmt.Sprintf("%s failed: %s: %s", e.Op, apiErr.ErrorCode(), apiErr.ErrorMessage())
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// StateError is returned by Wait when a cluster enters one of the error
// states.
type StateError struct {
	ClusterID string
	State     emrtypes.ClusterState
	Reason    string
}

func (e *StateError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("cluster %s entered state %s", e.ClusterID, e.State)
	}
	return fmt.Sprintf("cluster %s entered state %s: %s", e.ClusterID, e.State, e.Reason)
}
